package reminder

import (
	"math"
	"time"
)

// DailyPolicy spreads frequency reminders evenly across today's
// 09:00-21:00 window. Custom reminders are a literal instant set for the
// current day.
type DailyPolicy struct {
	basePolicy
	frequency int
}

func NewDailyPolicy(habit HabitInfo, sched JobScheduler, clock Clock) *DailyPolicy {
	freq := habit.TargetFrequency()
	if freq < 1 {
		freq = 1
	}
	p := &DailyPolicy{
		basePolicy: newBasePolicy(habit, sched, clock),
		frequency:  freq,
	}
	p.dist = p
	return p
}

// RestoreDailyPolicy rebuilds a policy from persisted state without
// recomputing anything. The caller schedules via ScheduleActive.
func RestoreDailyPolicy(habit HabitInfo, sched JobScheduler, clock Clock, instants []time.Time, isDefault bool) *DailyPolicy {
	p := NewDailyPolicy(habit, sched, clock)
	p.replace(instants)
	p.isDefault = isDefault
	return p
}

func (p *DailyPolicy) Frequency() int { return p.frequency }

func (p *DailyPolicy) defaultInstants(now time.Time) []time.Time {
	// The step is rounded to whole minutes once and then accumulated, so
	// frequency 7 yields 09:00, 10:43, ..., 19:18 (103-minute steps).
	start := windowStart(now)
	step := time.Duration(math.Round(float64(windowMinutes)/float64(p.frequency))) * time.Minute
	out := make([]time.Time, 0, p.frequency)
	for i := 0; i < p.frequency; i++ {
		out = append(out, start.Add(time.Duration(i)*step))
	}
	return out
}

// customInstants keeps the literal set as supplied: the set is authoritative
// for the current period and callers re-supply instants on day rollover.
func (p *DailyPolicy) customInstants(time.Time) []time.Time {
	return p.Reminders()
}
