// Package timeutil provides the Monday-to-Sunday week arithmetic the
// goal scheduler is keyed on. All windows are computed in the
// application time zone (Asia/Seoul) regardless of the input's zone.
package timeutil

import (
	"sync"
	"time"
)

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the application time zone. Falls back to a fixed
// UTC+9 zone when the tzdata lookup fails.
func Location() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation("Asia/Seoul")
		if err != nil {
			loc = time.FixedZone("KST", 9*60*60)
		}
	})
	return loc
}

// WeekWindow is a Monday-start, Sunday-end date range. Start and End are
// midnights in the application zone; a week is identified by Start alone.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// CurrentWeek returns the week containing now.
func CurrentWeek(now time.Time) WeekWindow {
	d := now.In(Location())
	// Days since Monday: Monday=0 ... Sunday=6.
	offset := (int(d.Weekday()) + 6) % 7
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Location()).AddDate(0, 0, -offset)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}
}

// PreviousWeek returns the week before the one containing now.
func PreviousWeek(now time.Time) WeekWindow {
	return CurrentWeek(now.AddDate(0, 0, -7))
}

// Contains reports whether t falls inside the window's dates.
func (w WeekWindow) Contains(t time.Time) bool {
	d := t.In(Location())
	return !d.Before(w.Start) && d.Before(w.Start.AddDate(0, 0, 7))
}

// BoundsEpoch returns the window as half-open epoch seconds
// [start, start+7d).
func (w WeekWindow) BoundsEpoch() (int64, int64) {
	return w.Start.Unix(), w.Start.AddDate(0, 0, 7).Unix()
}

// SameWeek reports whether a and b fall in the same week.
func SameWeek(a, b time.Time) bool {
	return CurrentWeek(a).Start.Equal(CurrentWeek(b).Start)
}

// IsBefore reports whether weekStart identifies an earlier week than
// otherWeekStart.
func IsBefore(weekStart, otherWeekStart time.Time) bool {
	return CurrentWeek(weekStart).Start.Before(CurrentWeek(otherWeekStart).Start)
}
