package queue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// blockingHandler lets tests hold a job mid-execution.
type blockingHandler struct {
	started chan Job
	release chan struct{}
	calls   atomic.Int64
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{
		started: make(chan Job, 16),
		release: make(chan struct{}),
	}
}

func (h *blockingHandler) HandleGoalJob(job Job) error {
	h.calls.Add(1)
	h.started <- job
	<-h.release
	return nil
}

type countingHandler struct {
	mu    sync.Mutex
	calls []Job
	err   error
	panic bool
}

func (h *countingHandler) HandleGoalJob(job Job) error {
	h.mu.Lock()
	h.calls = append(h.calls, job)
	h.mu.Unlock()
	if h.panic {
		panic("handler exploded")
	}
	return h.err
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func monday() time.Time {
	return time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
}

func TestEnqueueCoalescesDuplicateKey(t *testing.T) {
	handler := newBlockingHandler()
	q := New(handler, 2, 16)
	q.Start()

	if ok := q.Enqueue(1, monday(), ReasonMemberChange); !ok {
		t.Fatal("first enqueue should be accepted")
	}
	<-handler.started // job is now executing

	// Same key while executing: coalesced.
	if ok := q.Enqueue(1, monday(), ReasonMemberChange); ok {
		t.Error("duplicate enqueue for executing key should be coalesced")
	}
	// Different group is unaffected.
	if ok := q.Enqueue(2, monday(), ReasonMemberChange); !ok {
		t.Error("different group should be accepted")
	}
	// Different week for the same group is a different key.
	if ok := q.Enqueue(1, monday().AddDate(0, 0, 7), ReasonBatch); !ok {
		t.Error("different week should be accepted")
	}

	close(handler.release)
	q.Stop()

	if got := handler.calls.Load(); got != 3 {
		t.Errorf("handler ran %d times, want 3", got)
	}
}

func TestKeyReusableAfterCompletion(t *testing.T) {
	handler := &countingHandler{}
	q := New(handler, 1, 16)
	q.Start()

	if !q.Enqueue(7, monday(), ReasonBatch) {
		t.Fatal("first enqueue rejected")
	}
	waitFor(t, func() bool { return q.InFlight() == 0 })

	if !q.Enqueue(7, monday(), ReasonMemberChange) {
		t.Error("key should be reusable once the first job finished")
	}
	q.Stop()

	if handler.count() != 2 {
		t.Errorf("handler ran %d times, want 2", handler.count())
	}
}

func TestHandlerErrorDoesNotKillPool(t *testing.T) {
	handler := &countingHandler{err: errors.New("compute failed")}
	q := New(handler, 2, 16)
	q.Start()

	for g := uint(1); g <= 5; g++ {
		q.Enqueue(g, monday(), ReasonBatch)
	}
	q.Stop()

	if handler.count() != 5 {
		t.Errorf("handler ran %d times, want 5 despite errors", handler.count())
	}
	if q.InFlight() != 0 {
		t.Errorf("inflight = %d after Stop, want 0", q.InFlight())
	}
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	handler := &countingHandler{panic: true}
	q := New(handler, 2, 16)
	q.Start()

	for g := uint(1); g <= 4; g++ {
		q.Enqueue(g, monday(), ReasonMemberChange)
	}
	q.Stop()

	if handler.count() != 4 {
		t.Errorf("handler ran %d times, want 4 despite panics", handler.count())
	}
	if q.InFlight() != 0 {
		t.Errorf("inflight = %d after panics, want 0 (keys must be released)", q.InFlight())
	}
}

func TestEnqueueAfterStopIsDropped(t *testing.T) {
	handler := &countingHandler{}
	q := New(handler, 1, 4)
	q.Start()
	q.Stop()

	if q.Enqueue(1, monday(), ReasonBatch) {
		t.Error("enqueue after Stop should be rejected")
	}
}

func TestConcurrentEnqueueSameKeyRunsOnce(t *testing.T) {
	handler := newBlockingHandler()
	q := New(handler, 4, 64)
	q.Start()

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Enqueue(42, monday(), ReasonMemberChange) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := accepted.Load(); got != 1 {
		t.Errorf("%d enqueues accepted for one key, want exactly 1", got)
	}
	<-handler.started
	close(handler.release)
	q.Stop()

	if got := handler.calls.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestEnqueueRacingStopDoesNotPanic(t *testing.T) {
	handler := &countingHandler{}
	q := New(handler, 2, 8)
	q.Start()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(g uint) {
			defer wg.Done()
			q.Enqueue(g, monday(), ReasonMemberChange)
		}(uint(i + 1))
	}
	q.Stop() // racing the producers above
	wg.Wait()

	// Accepted jobs were drained before Stop returned; rejected ones
	// released their keys on the way out.
	if q.InFlight() != 0 {
		t.Errorf("inflight = %d after racing Stop, want 0", q.InFlight())
	}
	if q.Enqueue(99, monday(), ReasonBatch) {
		t.Error("enqueue after Stop should be rejected")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
