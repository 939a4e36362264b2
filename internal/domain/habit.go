package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/gvw100/habithaven/internal/reminder"
)

// Period is a habit's recurrence unit. It determines which reminder policy
// variant the habit carries.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ValidPeriod reports whether s names a known period.
func ValidPeriod(s string) bool {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Habit is a tracked recurring habit. It owns exactly one reminder policy,
// replaced whenever the period or frequency changes.
type Habit struct {
	UID            string
	Name           string
	Period         Period
	Frequency      int
	PeriodComplete bool
	Archived       bool
	CreatedAt      time.Time

	Policy reminder.Policy
}

// NewHabit creates a habit with a fresh identity. The caller attaches the
// reminder policy.
func NewHabit(name string, period Period, frequency int, createdAt time.Time) *Habit {
	if frequency < 1 {
		frequency = 1
	}
	return &Habit{
		UID:       uuid.NewString(),
		Name:      name,
		Period:    period,
		Frequency: frequency,
		CreatedAt: createdAt,
	}
}

// reminder.HabitInfo implementation: the read-only view the policy and the
// job scheduler consume.

func (h *Habit) ID() string             { return h.UID }
func (h *Habit) Title() string          { return h.Name }
func (h *Habit) TargetFrequency() int   { return h.Frequency }
func (h *Habit) IsPeriodComplete() bool { return h.PeriodComplete }
func (h *Habit) IsArchived() bool       { return h.Archived }
