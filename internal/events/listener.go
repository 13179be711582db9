package events

import (
	"log"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/queue"
	"github.com/Sean-323/LinkCare-sub001/internal/timeutil"
)

// GroupFinder is the slice of the group repository the listener needs.
type GroupFinder interface {
	FindByID(id uint) (*models.Group, error)
}

// Enqueuer is the slice of the goal queue the listener needs.
type Enqueuer interface {
	Enqueue(groupID uint, weekStart time.Time, reason queue.Reason) bool
}

// RegenerationListener decides, per membership event, whether the
// group's current-week goal and header must be regenerated.
type RegenerationListener struct {
	groups GroupFinder
	queue  Enqueuer
	now    func() time.Time
}

func NewRegenerationListener(groups GroupFinder, q Enqueuer) *RegenerationListener {
	return &RegenerationListener{groups: groups, queue: q, now: time.Now}
}

// Handle consumes one event. Errors are logged and swallowed: nothing
// here may propagate back to the membership transaction that published
// the event.
func (l *RegenerationListener) Handle(e Event) {
	switch evt := e.(type) {
	case GroupCreated:
		// A new group keeps its placeholder header through its first
		// full week; nothing to regenerate yet.
		log.Printf("Group %d created, header regeneration deferred to first full week", evt.GroupID)
	case GroupMembershipChanged:
		l.onMembershipChanged(evt)
	}
}

func (l *RegenerationListener) onMembershipChanged(evt GroupMembershipChanged) {
	group, err := l.groups.FindByID(evt.GroupID)
	if err != nil {
		log.Printf("Membership event for missing group %d (change=%s user=%d): %v",
			evt.GroupID, evt.ChangeType, evt.UserID, err)
		return
	}

	now := l.now()
	if !ShouldRegenerate(group, now) {
		return
	}

	weekStart := timeutil.CurrentWeek(now).Start
	l.queue.Enqueue(evt.GroupID, weekStart, queue.ReasonMemberChange)
}

// ShouldRegenerate applies the regeneration policy for a membership
// change observed at now:
//   - a group created during the current week keeps its placeholder
//     header, so never regenerate;
//   - a group with no generated header at all gets one (safety net);
//   - a header generated before this week's Monday is stale;
//   - otherwise the current week's header already exists.
func ShouldRegenerate(group *models.Group, now time.Time) bool {
	weekStart := timeutil.CurrentWeek(now).Start
	if !group.CreatedAt.Before(weekStart) {
		return false
	}
	if group.HeaderGeneratedAt == nil {
		return true
	}
	return group.HeaderGeneratedAt.Before(weekStart)
}
