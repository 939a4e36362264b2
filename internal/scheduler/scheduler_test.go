package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHabit struct {
	id       string
	title    string
	complete bool
	archived bool
}

func (h *stubHabit) ID() string             { return h.id }
func (h *stubHabit) Title() string          { return h.title }
func (h *stubHabit) TargetFrequency() int   { return 1 }
func (h *stubHabit) IsPeriodComplete() bool { return h.complete }
func (h *stubHabit) IsArchived() bool       { return h.archived }

type firedReminder struct {
	habitID string
	title   string
	at      time.Time
}

type chanNotifier struct {
	fired chan firedReminder
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{fired: make(chan firedReminder, 8)}
}

func (n *chanNotifier) Notify(habitID, title string, at time.Time) {
	n.fired <- firedReminder{habitID: habitID, title: title, at: at}
}

func futureInstants(n int) []time.Time {
	base := time.Now().Add(time.Hour)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Minute)
	}
	return out
}

func TestScheduleRemindersGatedByFlags(t *testing.T) {
	s := New(time.UTC, newChanNotifier())

	done := &stubHabit{id: "h1", title: "Run", complete: true}
	s.ScheduleReminders(futureInstants(3), done)
	assert.Equal(t, 0, s.Jobs(), "no jobs for a completed period")

	archived := &stubHabit{id: "h2", title: "Run", archived: true}
	s.ScheduleReminders(futureInstants(3), archived)
	assert.Equal(t, 0, s.Jobs(), "no jobs for an archived habit")

	active := &stubHabit{id: "h3", title: "Run"}
	s.ScheduleReminders(futureInstants(3), active)
	assert.Equal(t, 3, s.Jobs())
}

func TestScheduleSameKeyReplaces(t *testing.T) {
	s := New(time.UTC, newChanNotifier())
	habit := &stubHabit{id: "h1", title: "Run"}
	instant := time.Now().Add(time.Hour)

	require.NoError(t, s.ScheduleReminder(instant, habit))
	require.NoError(t, s.ScheduleReminder(instant, habit))
	assert.Equal(t, 1, s.Jobs(), "re-registering the same key must not leave two live jobs")
}

func TestCancelReminderIsKeyed(t *testing.T) {
	s := New(time.UTC, newChanNotifier())
	one := &stubHabit{id: "h1", title: "Run"}
	two := &stubHabit{id: "h2", title: "Swim"}
	instant := time.Now().Add(time.Hour)

	require.NoError(t, s.ScheduleReminder(instant, one))
	require.NoError(t, s.ScheduleReminder(instant, two))

	// Same instant, different habit: only h1's job goes away.
	s.CancelReminder(instant, "h1")
	assert.Equal(t, 1, s.Jobs())
}

func TestCancelAbsentReminderIsNoOp(t *testing.T) {
	s := New(time.UTC, newChanNotifier())
	s.CancelReminder(time.Now().Add(time.Hour), "nobody")
	assert.Equal(t, 0, s.Jobs())

	// Twice in a row is just as harmless.
	s.CancelReminder(time.Now().Add(time.Hour), "nobody")
	assert.Equal(t, 0, s.Jobs())
}

func TestScheduleRejectsZeroInstant(t *testing.T) {
	s := New(time.UTC, newChanNotifier())
	err := s.ScheduleReminder(time.Time{}, &stubHabit{id: "h1", title: "Run"})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Jobs())
}

func TestOneShotFiresOnceAndUnregisters(t *testing.T) {
	notifier := newChanNotifier()
	s := New(time.UTC, notifier)
	habit := &stubHabit{id: "h1", title: "Meditate"}

	instant := time.Now().Add(150 * time.Millisecond)
	require.NoError(t, s.ScheduleReminder(instant, habit))

	s.Start()
	defer s.Stop()

	select {
	case fired := <-notifier.fired:
		assert.Equal(t, "h1", fired.habitID)
		assert.Equal(t, "Meditate", fired.title)
		assert.True(t, fired.at.Equal(instant))
	case <-time.After(5 * time.Second):
		t.Fatal("reminder did not fire")
	}

	assert.Eventually(t, func() bool { return s.Jobs() == 0 },
		time.Second, 10*time.Millisecond, "fired job must unregister itself")
}

func TestFireOnlyUnregistersItsOwnEntry(t *testing.T) {
	s := New(time.UTC, newChanNotifier())
	habit := &stubHabit{id: "h1", title: "Run"}
	instant := time.Now().Add(time.Hour)
	key := s.key(instant, habit.id)

	require.NoError(t, s.ScheduleReminder(instant, habit))
	s.mu.Lock()
	stale := s.entries[key]
	s.mu.Unlock()

	// The same key is re-registered while the first job's fire is still
	// pending. The stale fire must not knock out the replacement entry.
	require.NoError(t, s.ScheduleReminder(instant, habit))
	s.fire(key, stale, habit.id, habit.title, instant)
	assert.Equal(t, 1, s.Jobs(), "a superseded job must not unregister its successor")

	s.mu.Lock()
	current := s.entries[key]
	s.mu.Unlock()
	s.fire(key, current, habit.id, habit.title, instant)
	assert.Equal(t, 0, s.Jobs())
}

func TestPastInstantNeverFires(t *testing.T) {
	// A one-shot whose Next is already in the past returns the zero time,
	// so a misfired instant is dropped rather than replayed.
	past := oneShot{at: time.Now().Add(-time.Hour)}
	assert.True(t, past.Next(time.Now()).IsZero())

	future := oneShot{at: time.Now().Add(time.Hour)}
	assert.Equal(t, future.at, future.Next(time.Now()))
}
