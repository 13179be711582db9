package cache

import (
	"fmt"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for goal-related cache entries. Goals change at most
// once per regeneration, headers likewise; short TTLs keep a missed
// invalidation harmless.
const (
	GoalTTL   = 10 * time.Minute
	HeaderTTL = 10 * time.Minute
)

// GoalCache caches the per-week goal row and the group header so the
// read endpoints don't hit Postgres on every poll.
type GoalCache struct {
	redis *RedisCache
}

func NewGoalCache(redis *RedisCache) *GoalCache {
	return &GoalCache{redis: redis}
}

func goalKey(groupID uint, weekStart time.Time) string {
	return fmt.Sprintf("goal:%d:%s", groupID, weekStart.Format("2006-01-02"))
}

func headerKey(groupID uint) string {
	return fmt.Sprintf("header:%d", groupID)
}

// GetGoal retrieves a cached weekly goal
func (gc *GoalCache) GetGoal(groupID uint, weekStart time.Time) (*models.WeeklyGroupGoal, bool) {
	if gc == nil || gc.redis == nil {
		return nil, false
	}
	data, err := gc.redis.Get(goalKey(groupID, weekStart))
	if err != nil || data == nil {
		return nil, false
	}

	var goal models.WeeklyGroupGoal
	if err := msgpack.Unmarshal(data, &goal); err != nil {
		return nil, false
	}
	return &goal, true
}

// SetGoal caches a weekly goal
func (gc *GoalCache) SetGoal(goal *models.WeeklyGroupGoal) error {
	if gc == nil || gc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(goal)
	if err != nil {
		return err
	}
	return gc.redis.Set(goalKey(goal.GroupID, goal.WeekStart), data, GoalTTL)
}

// GetHeader retrieves a cached group header
func (gc *GoalCache) GetHeader(groupID uint) (string, bool) {
	if gc == nil || gc.redis == nil {
		return "", false
	}
	data, err := gc.redis.Get(headerKey(groupID))
	if err != nil || data == nil {
		return "", false
	}

	var header string
	if err := msgpack.Unmarshal(data, &header); err != nil {
		return "", false
	}
	return header, true
}

// SetHeader caches a group header
func (gc *GoalCache) SetHeader(groupID uint, header string) error {
	if gc == nil || gc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(header)
	if err != nil {
		return err
	}
	return gc.redis.Set(headerKey(groupID), data, HeaderTTL)
}

// InvalidateGroup removes every cached artifact for a group after
// regeneration rewrites them.
func (gc *GoalCache) InvalidateGroup(groupID uint) error {
	if gc == nil || gc.redis == nil {
		return nil
	}
	if err := gc.redis.DeletePattern(fmt.Sprintf("goal:%d:*", groupID)); err != nil {
		return err
	}
	return gc.redis.Delete(headerKey(groupID))
}
