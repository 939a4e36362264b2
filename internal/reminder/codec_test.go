package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStateDaily(t *testing.T) {
	p, _, _, _ := dailyFixture(3, at(2024, time.August, 23, 8, 0))
	p.UpdateReminders()

	state := EncodeState(p)
	assert.True(t, state.IsDefault)
	assert.Equal(t, []string{
		"2024-08-23T09:00:00",
		"2024-08-23T13:00:00",
		"2024-08-23T17:00:00",
	}, state.Reminders)
	assert.Empty(t, state.CustomReminders)
}

func TestRestoreIsVerbatim(t *testing.T) {
	// The persisted instants deliberately do not match any algorithm
	// output; restore must not recompute them.
	state := State{
		IsDefault: false,
		Reminders: []string{"2024-08-23T22:15:00", "2024-08-23T06:30:00"},
	}
	instants, err := state.Instants(time.UTC)
	require.NoError(t, err)

	habit := &fakeHabit{id: "habit-4", title: "Read", frequency: 5}
	sched := newFakeScheduler()
	p := RestoreDailyPolicy(habit, sched, &fixedClock{now: at(2024, time.August, 23, 8, 0)}, instants, false)

	assert.False(t, p.IsDefault())
	assert.Equal(t, []time.Time{
		at(2024, time.August, 23, 6, 30),
		at(2024, time.August, 23, 22, 15),
	}, p.Reminders())
	assert.Empty(t, sched.jobs, "restore must not schedule on its own")

	p.ScheduleActive()
	assert.Len(t, sched.jobs, 1, "only the 22:15 instant is still active")
}

func TestEncodeStateMonthlyPattern(t *testing.T) {
	p, _, _ := monthlyFixture(at(2024, time.September, 1, 8, 0))
	p.SetCustomPattern([]PatternEntry{{Day: 31, Time: TimeOfDay{Hour: 20, Minute: 30}}})

	state := EncodeState(p)
	assert.False(t, state.IsDefault)
	require.Len(t, state.CustomReminders, 1)
	assert.Equal(t, PatternState{Day: 31, Time: "20:30:00"}, state.CustomReminders[0])

	pattern, err := state.Pattern()
	require.NoError(t, err)
	assert.Equal(t, []PatternEntry{{Day: 31, Time: TimeOfDay{Hour: 20, Minute: 30}}}, pattern)
}

func TestEncodeStateMonthlyDefaultOmitsPattern(t *testing.T) {
	p, _, _ := monthlyFixture(at(2024, time.September, 1, 8, 0))
	p.SetCustomPattern([]PatternEntry{{Day: 5, Time: TimeOfDay{Hour: 12}}})
	p.SetDefaultReminders()

	state := EncodeState(p)
	assert.True(t, state.IsDefault)
	assert.Empty(t, state.CustomReminders)
}

func TestStateRejectsMalformedInstant(t *testing.T) {
	state := State{Reminders: []string{"2024-08-23T09:00:00", "not-a-time"}}
	_, err := state.Instants(time.UTC)
	assert.Error(t, err)
}

func TestStateRejectsMalformedPatternTime(t *testing.T) {
	state := State{CustomReminders: []PatternState{{Day: 5, Time: "25:99"}}}
	_, err := state.Pattern()
	assert.Error(t, err)
}
