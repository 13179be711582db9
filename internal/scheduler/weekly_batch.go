// Package scheduler fires the weekly batch that refreshes every group's
// goal and header. One cron entry, registered at startup, unregistered
// at shutdown.
package scheduler

import (
	"log"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/queue"
	"github.com/Sean-323/LinkCare-sub001/internal/timeutil"
	"github.com/robfig/cron/v3"
)

// Sunday 23:59 application time: the week being closed is still "this
// week", so CurrentWeek at fire time yields the Monday the artifacts are
// keyed on.
const batchCronSpec = "59 23 * * 0"

// GroupIDLister is the projection query the batch enumerates.
type GroupIDLister interface {
	ListIDs() ([]uint, error)
}

// Enqueuer is the slice of the goal queue the batch needs.
type Enqueuer interface {
	Enqueue(groupID uint, weekStart time.Time, reason queue.Reason) bool
}

type WeeklyBatchScheduler struct {
	groups GroupIDLister
	queue  Enqueuer
	cron   *cron.Cron
	now    func() time.Time
}

func New(groups GroupIDLister, q Enqueuer) *WeeklyBatchScheduler {
	return &WeeklyBatchScheduler{
		groups: groups,
		queue:  q,
		cron:   cron.New(cron.WithLocation(timeutil.Location())),
		now:    time.Now,
	}
}

// Start registers the cron entry and starts the timer.
func (s *WeeklyBatchScheduler) Start() error {
	if _, err := s.cron.AddFunc(batchCronSpec, s.RunBatch); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Weekly batch scheduler registered (%s, %s)", batchCronSpec, timeutil.Location())
	return nil
}

// Stop halts the timer. Jobs already handed to the queue keep running.
func (s *WeeklyBatchScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunBatch enqueues one regeneration job per group for the week
// containing now. An enumeration failure abandons the run; next week's
// fire is the retry.
func (s *WeeklyBatchScheduler) RunBatch() {
	now := s.now()
	weekStart := timeutil.CurrentWeek(now).Start

	ids, err := s.groups.ListIDs()
	if err != nil {
		log.Printf("Weekly batch abandoned, group enumeration failed: %v", err)
		return
	}

	enqueued := 0
	for _, id := range ids {
		if s.queue.Enqueue(id, weekStart, queue.ReasonBatch) {
			enqueued++
		}
	}
	log.Printf("Weekly batch for week %s: %d/%d groups enqueued",
		weekStart.Format("2006-01-02"), enqueued, len(ids))
}
