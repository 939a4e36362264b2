package reminder

import (
	"errors"
	"sort"
	"time"
)

const (
	// StartHour is the local hour of the first reminder of any period.
	StartHour = 9
	// windowMinutes is the length of the daily reminder window (09:00-21:00).
	windowMinutes = 720
)

// ErrCustomUnsupported is returned by policies that cannot accept a literal
// instant set and require their own pattern setter instead.
var ErrCustomUnsupported = errors.New("literal custom reminders not supported for this policy")

// HabitInfo is the read-only view of the habit that owns a policy. The
// policy never mutates the habit; it only reads identity and the two flags
// that gate scheduling.
type HabitInfo interface {
	ID() string
	Title() string
	TargetFrequency() int
	IsPeriodComplete() bool
	IsArchived() bool
}

// JobScheduler registers and cancels one-shot notification jobs. Jobs are
// keyed by (instant, habit id), so a cancellation addresses exactly one
// instant for exactly one habit.
type JobScheduler interface {
	// ScheduleReminders registers one job per instant. It must be a no-op
	// when the habit's period is complete or the habit is archived.
	ScheduleReminders(instants []time.Time, habit HabitInfo)
	// ScheduleReminder registers a single one-shot job.
	ScheduleReminder(at time.Time, habit HabitInfo) error
	// CancelReminder removes a previously scheduled job. Cancelling an
	// absent job is a no-op, not an error.
	CancelReminder(at time.Time, habitID string)
}

// Policy owns the reminder instants for one habit over its current period.
type Policy interface {
	// UpdateReminders cancels every scheduled job, recomputes the reminder
	// set (default algorithm or custom rule, per IsDefault) and schedules
	// the active subset. Calling it twice with no external change yields
	// the same set and the same jobs.
	UpdateReminders()
	// Reminders returns the full reminder set for the current period,
	// sorted ascending.
	Reminders() []time.Time
	// ActiveReminders returns the reminders strictly after now. An instant
	// exactly equal to now is not active.
	ActiveReminders() []time.Time
	IsDefault() bool
	// SetCustomReminders replaces the reminder set with a literal instant
	// set supplied by the user. The monthly policy rejects this with
	// ErrCustomUnsupported.
	SetCustomReminders(instants []time.Time) error
	// SetDefaultReminders switches back to the generated distribution.
	SetDefaultReminders()
	// CancelReminders cancels every job for the current reminder set. Safe
	// to call when nothing is scheduled, and safe to call twice.
	CancelReminders()
	// ScheduleActive registers the active subset without recomputing.
	// Used when a policy is restored from persisted state.
	ScheduleActive()
	SetClock(Clock)
}

// distribution is the per-period hook: how to generate the default set and
// how to recompute a custom one for the current period.
type distribution interface {
	defaultInstants(now time.Time) []time.Time
	customInstants(now time.Time) []time.Time
}

// basePolicy carries the lifecycle shared by all period variants.
type basePolicy struct {
	habit     HabitInfo
	sched     JobScheduler
	clock     Clock
	set       map[time.Time]struct{}
	isDefault bool
	dist      distribution
}

func newBasePolicy(habit HabitInfo, sched JobScheduler, clock Clock) basePolicy {
	return basePolicy{
		habit:     habit,
		sched:     sched,
		clock:     clock,
		set:       make(map[time.Time]struct{}),
		isDefault: true,
	}
}

func (p *basePolicy) replace(instants []time.Time) {
	p.set = make(map[time.Time]struct{}, len(instants))
	for _, t := range instants {
		p.set[t] = struct{}{}
	}
}

func (p *basePolicy) UpdateReminders() {
	p.CancelReminders()
	now := p.clock.Now()
	if p.isDefault {
		p.replace(p.dist.defaultInstants(now))
	} else {
		p.replace(p.dist.customInstants(now))
	}
	p.ScheduleActive()
}

func (p *basePolicy) Reminders() []time.Time {
	out := make([]time.Time, 0, len(p.set))
	for t := range p.set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (p *basePolicy) ActiveReminders() []time.Time {
	now := p.clock.Now()
	var out []time.Time
	for _, t := range p.Reminders() {
		if t.After(now) {
			out = append(out, t)
		}
	}
	return out
}

func (p *basePolicy) IsDefault() bool { return p.isDefault }

func (p *basePolicy) SetCustomReminders(instants []time.Time) error {
	p.CancelReminders()
	p.isDefault = false
	p.replace(instants)
	p.ScheduleActive()
	return nil
}

func (p *basePolicy) SetDefaultReminders() {
	p.isDefault = true
	p.UpdateReminders()
}

func (p *basePolicy) CancelReminders() {
	for t := range p.set {
		p.sched.CancelReminder(t, p.habit.ID())
	}
}

func (p *basePolicy) ScheduleActive() {
	p.sched.ScheduleReminders(p.ActiveReminders(), p.habit)
}

func (p *basePolicy) SetClock(c Clock) { p.clock = c }

// windowStart returns 09:00 on the given instant's date.
func windowStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), StartHour, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
