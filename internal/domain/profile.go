package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for activity tracking.
const DateLayout = "2006-01-02"

// DefaultProfileName is used when no learner name is configured.
const DefaultProfileName = "Learner"

// ErrProfileNameEmpty is returned when a profile has no name.
var ErrProfileNameEmpty = errors.New("profile name cannot be empty")

// DailyStat counts the learner's activity on one calendar day.
type DailyStat struct {
	Date          string `json:"date"`
	AddedCount    int    `json:"added_count"`
	RepeatedCount int    `json:"repeated_count"`
}

// Profile is the single learner's profile and activity history.
// Stats are kept in ascending date order.
type Profile struct {
	Name           string      `json:"name"`
	Level          Level       `json:"level"`
	Streak         int         `json:"streak"`
	LastActiveDate string      `json:"last_active_date,omitempty"`
	Stats          []DailyStat `json:"stats"`
}

// NewProfile returns a profile with no recorded activity.
func NewProfile(name string, level Level) Profile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProfileName
	}
	if !level.Valid() {
		level = DefaultLevel
	}
	return Profile{Name: name, Level: level, Stats: []DailyStat{}}
}

// Validate checks if the Profile has valid data.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProfileNameEmpty
	}

	if !p.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, p.Level)
	}

	if p.Streak < 0 {
		return fmt.Errorf("%w: streak cannot be negative", ErrValidation)
	}

	if p.LastActiveDate != "" {
		if _, err := time.Parse(DateLayout, p.LastActiveDate); err != nil {
			return fmt.Errorf("%w: last active date %q", ErrInvalidDate, p.LastActiveDate)
		}
	}

	for _, s := range p.Stats {
		if _, err := time.Parse(DateLayout, s.Date); err != nil {
			return fmt.Errorf("%w: stat date %q", ErrInvalidDate, s.Date)
		}
		if s.AddedCount < 0 || s.RepeatedCount < 0 {
			return fmt.Errorf("%w: stat counts for %s cannot be negative", ErrValidation, s.Date)
		}
	}

	return nil
}

// RecordActivity returns a copy of the profile with today's counters bumped
// and the streak advanced.
//
// The streak starts at 1 on the first active day, grows by one when the
// previous active day was yesterday, restarts at 1 after a gap and does not
// change for further activity on the same day. The calendar day is taken in
// now's location.
func (p Profile) RecordActivity(added, repeated int, now time.Time) Profile {
	today := now.Format(DateLayout)

	next := p
	next.Stats = append([]DailyStat(nil), p.Stats...)

	found := false
	for i := range next.Stats {
		if next.Stats[i].Date == today {
			next.Stats[i].AddedCount += added
			next.Stats[i].RepeatedCount += repeated
			found = true
			break
		}
	}
	if !found {
		next.Stats = append(next.Stats, DailyStat{Date: today, AddedCount: added, RepeatedCount: repeated})
	}

	switch p.LastActiveDate {
	case today:
		if next.Streak == 0 {
			next.Streak = 1
		}
	case now.AddDate(0, 0, -1).Format(DateLayout):
		next.Streak = p.Streak + 1
	default:
		next.Streak = 1
	}
	next.LastActiveDate = today

	return next
}

// EffectiveStreak is the streak as it stands at now: a streak whose last
// active day is older than yesterday has lapsed and counts as zero.
func (p Profile) EffectiveStreak(now time.Time) int {
	switch p.LastActiveDate {
	case now.Format(DateLayout), now.AddDate(0, 0, -1).Format(DateLayout):
		return p.Streak
	default:
		return 0
	}
}

// StatFor returns the stat for the calendar day of now, or a zero stat.
func (p Profile) StatFor(now time.Time) DailyStat {
	today := now.Format(DateLayout)
	for _, s := range p.Stats {
		if s.Date == today {
			return s
		}
	}
	return DailyStat{Date: today}
}

// RecentStats returns at most n of the most recent stats, oldest first.
func (p Profile) RecentStats(n int) []DailyStat {
	if n <= 0 {
		return []DailyStat{}
	}
	start := len(p.Stats) - n
	if start < 0 {
		start = 0
	}
	return append([]DailyStat{}, p.Stats[start:]...)
}
