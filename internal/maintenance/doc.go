// Package maintenance runs the daemon's periodic housekeeping jobs (trace
// pruning, stats summaries) on a single goroutine. Jobs sit in a min-heap
// ordered by next run time; the goroutine sleeps until the earliest job
// with a 60-second max-sleep-cap to ride out NTP steps, DST transitions,
// and system sleep. Recurring jobs carry a cron expression and re-enter the
// heap after firing. Nothing is persisted — the heap is rebuilt from
// configuration on daemon restart.
package maintenance
