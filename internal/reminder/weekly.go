package reminder

import "time"

// WeeklyPolicy produces one reminder per day at 09:00 across the 7-day
// period starting today. Custom reminders are a literal instant set for the
// current week.
type WeeklyPolicy struct {
	basePolicy
}

func NewWeeklyPolicy(habit HabitInfo, sched JobScheduler, clock Clock) *WeeklyPolicy {
	p := &WeeklyPolicy{basePolicy: newBasePolicy(habit, sched, clock)}
	p.dist = p
	return p
}

// RestoreWeeklyPolicy rebuilds a policy from persisted state without
// recomputing anything.
func RestoreWeeklyPolicy(habit HabitInfo, sched JobScheduler, clock Clock, instants []time.Time, isDefault bool) *WeeklyPolicy {
	p := NewWeeklyPolicy(habit, sched, clock)
	p.replace(instants)
	p.isDefault = isDefault
	return p
}

func (p *WeeklyPolicy) defaultInstants(now time.Time) []time.Time {
	start := windowStart(now)
	out := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

// customInstants keeps the literal set as supplied; callers re-supply
// instants on week rollover.
func (p *WeeklyPolicy) customInstants(time.Time) []time.Time {
	return p.Reminders()
}
