// Package tracedb persists per-frame timing samples to a local SQLite
// database for offline diagnosis of pacing behavior. The store is
// observability-only: the pacing core never reads it and no scheduling
// state survives a restart through it.
package tracedb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Sample is one released frame's timing record.
type Sample struct {
	// Surface identifies the paced surface the frame belongs to.
	Surface string `json:"surface"`
	// SubmitTime, CompleteTime and ReleaseTime are the buffer's
	// timestamps in monotonic nanoseconds.
	SubmitTime   uint64 `json:"submitTime"`
	CompleteTime uint64 `json:"completeTime"`
	ReleaseTime  uint64 `json:"releaseTime"`
	// TargetLatch and ScheduledWakeup describe the schedule the release
	// was paced against.
	TargetLatch     uint64 `json:"targetLatch"`
	ScheduledWakeup uint64 `json:"scheduledWakeup"`
	// Fallback is set when the wakeup computation engaged its
	// clamp-to-now fallback for this frame.
	Fallback bool `json:"fallback"`
}

const schema = `
CREATE TABLE IF NOT EXISTS frame_trace (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    surface     TEXT    NOT NULL,
    submit_ns   INTEGER NOT NULL,
    complete_ns INTEGER NOT NULL,
    release_ns  INTEGER NOT NULL,
    latch_ns    INTEGER NOT NULL,
    wakeup_ns   INTEGER NOT NULL,
    fallback    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_frame_trace_surface ON frame_trace(surface, id);
`

// TraceDB wraps the SQLite handle. Safe for concurrent use; database/sql
// serializes access to the single connection the driver provides.
type TraceDB struct {
	db *sql.DB
}

// Open creates or opens the trace database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*TraceDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open trace database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot create trace schema: %w", err)
	}
	return &TraceDB{db: db}, nil
}

// Record appends one frame sample.
func (t *TraceDB) Record(s Sample) error {
	_, err := t.db.Exec(`
        INSERT INTO frame_trace
            (surface, submit_ns, complete_ns, release_ns, latch_ns, wakeup_ns, fallback)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, s.Surface, int64(s.SubmitTime), int64(s.CompleteTime), int64(s.ReleaseTime),
		int64(s.TargetLatch), int64(s.ScheduledWakeup), boolToInt(s.Fallback))
	if err != nil {
		return fmt.Errorf("error: failed to record frame sample: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest samples for the surface, oldest
// first. An empty surface matches all surfaces.
func (t *TraceDB) Recent(surface string, n int) ([]Sample, error) {
	if n <= 0 {
		n = 100
	}
	rows, err := t.db.Query(`
        SELECT surface, submit_ns, complete_ns, release_ns, latch_ns, wakeup_ns, fallback
        FROM frame_trace
        WHERE (? = '' OR surface = ?)
        ORDER BY id DESC
        LIMIT ?
    `, surface, surface, n)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query frame samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var submit, complete, release, latch, wakeup int64
		var fallback int
		if err := rows.Scan(&s.Surface, &submit, &complete, &release, &latch, &wakeup, &fallback); err != nil {
			return nil, fmt.Errorf("error: failed to scan frame sample: %w", err)
		}
		s.SubmitTime = uint64(submit)
		s.CompleteTime = uint64(complete)
		s.ReleaseTime = uint64(release)
		s.TargetLatch = uint64(latch)
		s.ScheduledWakeup = uint64(wakeup)
		s.Fallback = fallback != 0
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to read frame samples: %w", err)
	}
	// Reverse to oldest-first for natural reading.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Count returns the total number of stored samples.
func (t *TraceDB) Count() (int64, error) {
	var n int64
	if err := t.db.QueryRow(`SELECT COUNT(*) FROM frame_trace`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error: failed to count frame samples: %w", err)
	}
	return n, nil
}

// PruneTo keeps only the newest keep samples, deleting the rest. Returns
// the number of rows removed.
func (t *TraceDB) PruneTo(keep int64) (int64, error) {
	res, err := t.db.Exec(`
        DELETE FROM frame_trace
        WHERE id NOT IN (SELECT id FROM frame_trace ORDER BY id DESC LIMIT ?)
    `, keep)
	if err != nil {
		return 0, fmt.Errorf("error: failed to prune frame samples: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database.
func (t *TraceDB) Close() error {
	return t.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
