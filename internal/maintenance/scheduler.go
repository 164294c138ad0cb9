package maintenance

import (
	"context"
	"container/heap"
	"time"

	"github.com/adhocore/gronx"
)

const maxSleepCap = 60 * time.Second

// Job is a pending housekeeping task.
type Job struct {
	// Name identifies the job to the onFire callback and to Remove.
	Name string
	// RunAt is the wall-clock time of the next run.
	RunAt time.Time
	// CronExpr is the recurrence schedule. Empty means one-shot.
	CronExpr string
}

// Scheduler manages housekeeping jobs using a min-heap. It runs a
// background goroutine that sleeps until the next job's run time, then
// calls the onFire callback with the job name.
type Scheduler struct {
	addChan    chan Job
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a Scheduler. The onFire callback is invoked when
// a job comes due. The scheduler goroutine exits when ctx is cancelled.
func New(ctx context.Context, onFire func(name string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan Job, 16),
		removeChan: make(chan string, 16),
		ctx:        ctx,
	}
	go s.run(onFire)
	return s
}

// Add enqueues a job. A zero RunAt with a cron expression schedules the
// first run at the next cron occurrence.
func (s *Scheduler) Add(job Job) {
	if job.RunAt.IsZero() && job.CronExpr != "" {
		if next, err := nextCronOccurrence(job.CronExpr, time.Now()); err == nil {
			job.RunAt = next
		}
	}
	select {
	case s.addChan <- job:
	case <-s.ctx.Done():
	}
}

// Remove cancels a pending job by name.
func (s *Scheduler) Remove(name string) {
	select {
	case s.removeChan <- name:
	case <-s.ctx.Done():
	}
}

// run is the scheduler goroutine. It maintains the job heap and sleeps
// with the max-sleep-cap. Recurring jobs are re-added after firing at
// their next cron occurrence.
func (s *Scheduler) run(onFire func(string)) {
	h := &jobHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No jobs: block on the channels only.
			return nil
		}
		dur := time.Until((*h)[0].RunAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case job := <-s.addChan:
			heapPush(h, job)
			timerCh = resetTimer()

		case name := <-s.removeChan:
			heapRemoveByName(h, name)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].RunAt.After(now) {
				job := heapPop(h)
				onFire(job.Name)
				if job.CronExpr != "" {
					next, err := nextCronOccurrence(job.CronExpr, time.Now())
					if err == nil {
						heapPush(h, Job{
							Name:     job.Name,
							RunAt:    next,
							CronExpr: job.CronExpr,
						})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// ValidCron reports whether expr is a parseable cron expression.
func ValidCron(expr string) bool {
	return gronx.New().IsValid(expr)
}

// nextCronOccurrence returns the next time the cron expression fires
// strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}
