// Package queue runs goal regeneration jobs on a bounded worker pool.
// Both producers (the weekly batch and the membership-change listener)
// funnel through Enqueue; a (group, week) key has at most one job queued
// or executing at any moment, and duplicates are coalesced.
package queue

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

type Reason string

const (
	ReasonBatch        Reason = "BATCH"
	ReasonMemberChange Reason = "MEMBER_CHANGE"
)

// Job is an ephemeral work item. Loss on crash is acceptable: the next
// batch run or membership event reproduces it.
type Job struct {
	ID        uuid.UUID
	GroupID   uint
	WeekStart time.Time
	Reason    Reason
}

// Handler executes one regeneration job.
type Handler interface {
	HandleGoalJob(job Job) error
}

type GoalQueue struct {
	handler Handler
	jobs    chan Job
	// inflight holds keys that are queued or executing; LoadOrStore is
	// the coalescing point.
	inflight *xsync.Map[string, struct{}]
	wg       sync.WaitGroup
	workers  int
	// mu orders Enqueue's channel send against Stop's close: senders
	// hold it shared, Stop holds it exclusively while closing.
	mu     sync.RWMutex
	closed bool
}

func New(handler Handler, workers, buffer int) *GoalQueue {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &GoalQueue{
		handler:  handler,
		jobs:     make(chan Job, buffer),
		inflight: xsync.NewMap[string, struct{}](),
		workers:  workers,
	}
}

// Start launches the worker pool.
func (q *GoalQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	log.Printf("Goal queue started with %d workers (buffer %d)", q.workers, cap(q.jobs))
}

// Stop drains queued jobs and waits for workers to finish. Enqueue calls
// after Stop are dropped; Enqueue calls racing Stop are dropped too,
// never panicked on.
func (q *GoalQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue schedules a regeneration job for (groupID, weekStart). Returns
// false when the job was coalesced with an in-flight one, dropped because
// the buffer is full, or the queue is stopped.
func (q *GoalQueue) Enqueue(groupID uint, weekStart time.Time, reason Reason) bool {
	key := jobKey(groupID, weekStart)
	if _, loaded := q.inflight.LoadOrStore(key, struct{}{}); loaded {
		jobsCoalesced.Inc()
		log.Printf("Goal job coalesced: group=%d week=%s reason=%s", groupID, weekStart.Format("2006-01-02"), reason)
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.inflight.Delete(key)
		return false
	}

	job := Job{ID: uuid.New(), GroupID: groupID, WeekStart: weekStart, Reason: reason}
	select {
	case q.jobs <- job:
		jobsEnqueued.WithLabelValues(string(reason)).Inc()
		queueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		q.inflight.Delete(key)
		jobsDropped.Inc()
		log.Printf("Goal queue full, dropping job: group=%d week=%s reason=%s", groupID, weekStart.Format("2006-01-02"), reason)
		return false
	}
}

// InFlight reports the number of keys currently queued or executing.
func (q *GoalQueue) InFlight() int {
	return q.inflight.Size()
}

func (q *GoalQueue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(job)
	}
}

// run executes one job with panic isolation: a failing group must never
// take down the pool or other groups' jobs.
func (q *GoalQueue) run(job Job) {
	key := jobKey(job.GroupID, job.WeekStart)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			jobsFailed.Inc()
			log.Printf("Goal job panic: group=%d week=%s reason=%s job=%s: %v",
				job.GroupID, job.WeekStart.Format("2006-01-02"), job.Reason, job.ID, r)
		}
		q.inflight.Delete(key)
		queueDepth.Set(float64(len(q.jobs)))
	}()

	if err := q.handler.HandleGoalJob(job); err != nil {
		jobsFailed.Inc()
		log.Printf("Goal job failed: group=%d week=%s reason=%s job=%s: %v",
			job.GroupID, job.WeekStart.Format("2006-01-02"), job.Reason, job.ID, err)
		return
	}
	jobsProcessed.Inc()
	jobDuration.Observe(time.Since(start).Seconds())
}

func jobKey(groupID uint, weekStart time.Time) string {
	return fmt.Sprintf("%d:%s", groupID, weekStart.Format("2006-01-02"))
}
