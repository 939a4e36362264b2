package reminder

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTimeOfDay parses an ISO-8601 local time ("15:04:05").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute(), Second: parsed.Second()}, nil
}

// PatternEntry is one recurring (day of month, time of day) reminder.
type PatternEntry struct {
	Day  int
	Time TimeOfDay
}

// MonthlyPolicy produces one reminder per day of the current month at 09:00
// when default. Custom reminders are a recurring day/time pattern, resolved
// against the current month's length on every recompute: days past the end
// of the month clamp to the last day, and entries that resolve to the same
// instant collapse to one reminder.
type MonthlyPolicy struct {
	basePolicy
	pattern []PatternEntry
}

func NewMonthlyPolicy(habit HabitInfo, sched JobScheduler, clock Clock) *MonthlyPolicy {
	p := &MonthlyPolicy{basePolicy: newBasePolicy(habit, sched, clock)}
	p.dist = p
	return p
}

// RestoreMonthlyPolicy rebuilds a policy from persisted state without
// recomputing anything, including the stored custom pattern if present.
func RestoreMonthlyPolicy(habit HabitInfo, sched JobScheduler, clock Clock, instants []time.Time, isDefault bool, pattern []PatternEntry) *MonthlyPolicy {
	p := NewMonthlyPolicy(habit, sched, clock)
	p.replace(instants)
	p.isDefault = isDefault
	p.pattern = append([]PatternEntry(nil), pattern...)
	return p
}

// Pattern returns a copy of the stored custom pattern.
func (p *MonthlyPolicy) Pattern() []PatternEntry {
	return append([]PatternEntry(nil), p.pattern...)
}

func (p *MonthlyPolicy) defaultInstants(now time.Time) []time.Time {
	// One check-in opportunity per day regardless of frequency; a month is
	// long enough that the daily spacing algorithm does not apply.
	first := time.Date(now.Year(), now.Month(), 1, StartHour, 0, 0, 0, now.Location())
	numDays := daysInMonth(now)
	out := make([]time.Time, 0, numDays)
	for d := 0; d < numDays; d++ {
		out = append(out, first.AddDate(0, 0, d))
	}
	return out
}

func (p *MonthlyPolicy) customInstants(now time.Time) []time.Time {
	numDays := daysInMonth(now)
	seen := make(map[time.Time]struct{}, len(p.pattern))
	out := make([]time.Time, 0, len(p.pattern))
	for _, e := range p.pattern {
		day := e.Day
		if day > numDays {
			day = numDays
		}
		at := time.Date(now.Year(), now.Month(), day, e.Time.Hour, e.Time.Minute, e.Time.Second, 0, now.Location())
		if _, ok := seen[at]; ok {
			continue
		}
		seen[at] = struct{}{}
		out = append(out, at)
	}
	return out
}

// SetCustomReminders always fails for the monthly variant: a literal instant
// set does not survive a month-length change. Use SetCustomPattern.
func (p *MonthlyPolicy) SetCustomReminders([]time.Time) error {
	return ErrCustomUnsupported
}

// SetCustomPattern stores the recurring pattern and runs the standard
// cancel/recompute/reschedule cycle.
func (p *MonthlyPolicy) SetCustomPattern(entries []PatternEntry) {
	p.CancelReminders()
	p.pattern = append([]PatternEntry(nil), entries...)
	p.isDefault = false
	p.replace(p.customInstants(p.clock.Now()))
	p.ScheduleActive()
}
