package reminder

import (
	"time"
)

// fixedClock is a Clock pinned to one instant.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// fakeHabit implements HabitInfo for policy tests.
type fakeHabit struct {
	id        string
	title     string
	frequency int
	complete  bool
	archived  bool
}

func (h *fakeHabit) ID() string             { return h.id }
func (h *fakeHabit) Title() string          { return h.title }
func (h *fakeHabit) TargetFrequency() int   { return h.frequency }
func (h *fakeHabit) IsPeriodComplete() bool { return h.complete }
func (h *fakeHabit) IsArchived() bool       { return h.archived }

// fakeScheduler records scheduled jobs keyed the same way as the real
// adapter, including the complete/archived gate.
type fakeScheduler struct {
	jobs map[string]time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]time.Time)}
}

func (f *fakeScheduler) ScheduleReminders(instants []time.Time, habit HabitInfo) {
	if habit.IsPeriodComplete() || habit.IsArchived() {
		return
	}
	for _, at := range instants {
		_ = f.ScheduleReminder(at, habit)
	}
}

func (f *fakeScheduler) ScheduleReminder(at time.Time, habit HabitInfo) error {
	f.jobs[f.key(at, habit.ID())] = at
	return nil
}

func (f *fakeScheduler) CancelReminder(at time.Time, habitID string) {
	delete(f.jobs, f.key(at, habitID))
}

func (f *fakeScheduler) key(at time.Time, habitID string) string {
	return at.Format(time.RFC3339Nano) + "|" + habitID
}
