package maintenance

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestScheduler_AddAndFire verifies a one-shot job fires once its run time
// arrives.
func TestScheduler_AddAndFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := make(map[string]int)
	onFire := func(name string) {
		mu.Lock()
		fired[name]++
		mu.Unlock()
	}

	s := New(ctx, onFire)
	s.Add(Job{Name: "prune", RunAt: time.Now().Add(100 * time.Millisecond)})

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["prune"] != 1 {
		t.Fatalf("expected job to fire once, fired %d times", fired["prune"])
	}
}

// TestScheduler_Remove verifies a removed job never fires.
func TestScheduler_Remove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := 0
	s := New(ctx, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	s.Add(Job{Name: "summary", RunAt: time.Now().Add(200 * time.Millisecond)})
	s.Remove("summary")

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Fatalf("removed job fired %d times", fired)
	}
}

// TestJobHeap_Ordering verifies the heap pops jobs earliest-first and
// removal by name works.
func TestJobHeap_Ordering(t *testing.T) {
	h := &jobHeap{}
	base := time.Now()

	heapPush(h, Job{Name: "c", RunAt: base.Add(3 * time.Second)})
	heapPush(h, Job{Name: "a", RunAt: base.Add(1 * time.Second)})
	heapPush(h, Job{Name: "b", RunAt: base.Add(2 * time.Second)})

	if !heapRemoveByName(h, "b") {
		t.Fatalf("expected to remove job b")
	}
	if heapRemoveByName(h, "missing") {
		t.Fatalf("removed a job that does not exist")
	}

	if got := heapPop(h).Name; got != "a" {
		t.Fatalf("expected job a first, got %s", got)
	}
	if got := heapPop(h).Name; got != "c" {
		t.Fatalf("expected job c second, got %s", got)
	}
}

// TestValidCron covers accept/reject cases for cron validation.
func TestValidCron(t *testing.T) {
	if !ValidCron("*/5 * * * *") {
		t.Fatalf("expected valid cron expression to pass")
	}
	if ValidCron("not a cron") {
		t.Fatalf("expected invalid cron expression to fail")
	}
}
