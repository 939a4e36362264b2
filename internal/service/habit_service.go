package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gvw100/habithaven/internal/domain"
	"github.com/gvw100/habithaven/internal/reminder"
	"github.com/gvw100/habithaven/internal/storage"
)

// Publisher pushes a habit's reminder calendar to an external calendar
// store. Publishing is best effort; failures never block habit editing.
type Publisher interface {
	Publish(h *domain.Habit) error
	Remove(habitID string) error
}

// HabitService orchestrates habit bookkeeping around the reminder engine:
// every edit that changes the generating parameters routes through the
// policy's cancel/recompute/reschedule cycle before the habit is persisted.
type HabitService struct {
	storage   *storage.Storage
	sched     reminder.JobScheduler
	clock     reminder.Clock
	timezone  *time.Location
	publisher Publisher
}

func NewHabitService(s *storage.Storage, sched reminder.JobScheduler, clock reminder.Clock, tz *time.Location) *HabitService {
	if tz == nil {
		tz = time.Local
	}
	return &HabitService{
		storage:  s,
		sched:    sched,
		clock:    clock,
		timezone: tz,
	}
}

// SetPublisher enables calendar publishing for saved habits.
func (s *HabitService) SetPublisher(p Publisher) {
	s.publisher = p
}

// Create makes a habit with a fresh default policy, computes its reminders
// and persists it.
func (s *HabitService) Create(name string, period domain.Period, frequency int) (*domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("habit name cannot be empty")
	}

	h := domain.NewHabit(name, period, frequency, s.clock.Now())

	pol, err := s.newPolicy(h)
	if err != nil {
		return nil, err
	}
	h.Policy = pol
	pol.UpdateReminders()

	if err := s.save(h); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) Get(id string) (*domain.Habit, error) {
	stored, err := s.storage.GetHabit(id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	if err := s.attachPolicy(stored); err != nil {
		return nil, err
	}
	return stored.Habit, nil
}

// ChangePeriod replaces the habit's policy with a new variant. The old
// policy cancels its jobs before it is discarded, so no stale jobs survive
// the switch.
func (s *HabitService) ChangePeriod(h *domain.Habit, period domain.Period, frequency int) error {
	if h.Policy != nil {
		h.Policy.CancelReminders()
	}
	if frequency < 1 {
		frequency = 1
	}
	h.Period = period
	h.Frequency = frequency

	pol, err := s.newPolicy(h)
	if err != nil {
		return err
	}
	h.Policy = pol
	pol.UpdateReminders()

	return s.save(h)
}

// SetCustomReminders replaces the habit's reminders with a literal instant
// set. Monthly habits reject this with reminder.ErrCustomUnsupported; use
// SetMonthlyPattern for those.
func (s *HabitService) SetCustomReminders(h *domain.Habit, instants []time.Time) error {
	if err := h.Policy.SetCustomReminders(instants); err != nil {
		return err
	}
	return s.save(h)
}

// SetMonthlyPattern stores a recurring (day, time) pattern on a monthly
// habit.
func (s *HabitService) SetMonthlyPattern(h *domain.Habit, entries []reminder.PatternEntry) error {
	mp, ok := h.Policy.(*reminder.MonthlyPolicy)
	if !ok {
		return fmt.Errorf("habit %s is not monthly", h.UID)
	}
	mp.SetCustomPattern(entries)
	return s.save(h)
}

// UseDefaultReminders reverts the habit to the generated distribution.
func (s *HabitService) UseDefaultReminders(h *domain.Habit) error {
	h.Policy.SetDefaultReminders()
	return s.save(h)
}

// UpdateReminders re-runs the habit's cancel/recompute/reschedule cycle,
// e.g. after a period rollover.
func (s *HabitService) UpdateReminders(h *domain.Habit) error {
	h.Policy.UpdateReminders()
	return s.save(h)
}

// CompletePeriod marks the current period done and cancels the remaining
// jobs; the scheduler gate keeps new ones out until the flag clears.
func (s *HabitService) CompletePeriod(h *domain.Habit) error {
	h.PeriodComplete = true
	h.Policy.CancelReminders()
	return s.save(h)
}

// StartNewPeriod clears the completion flag and reschedules.
func (s *HabitService) StartNewPeriod(h *domain.Habit) error {
	h.PeriodComplete = false
	h.Policy.UpdateReminders()
	return s.save(h)
}

func (s *HabitService) Archive(h *domain.Habit) error {
	h.Archived = true
	h.Policy.CancelReminders()
	return s.save(h)
}

func (s *HabitService) Unarchive(h *domain.Habit) error {
	h.Archived = false
	h.Policy.UpdateReminders()
	return s.save(h)
}

func (s *HabitService) Delete(h *domain.Habit) error {
	if h.Policy != nil {
		h.Policy.CancelReminders()
	}
	if err := s.storage.DeleteHabit(h.UID); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.Remove(h.UID); err != nil {
			log.Printf("Error removing published calendar for habit %s: %v", h.UID, err)
		}
	}
	return nil
}

// RestoreAll reloads persisted habits, rebuilds their policies verbatim (no
// recomputation) and schedules the still-active reminders. The scheduler
// gate keeps completed and archived habits out on its own.
func (s *HabitService) RestoreAll() ([]*domain.Habit, error) {
	stored, err := s.storage.ListHabits()
	if err != nil {
		return nil, err
	}

	habits := make([]*domain.Habit, 0, len(stored))
	for _, rec := range stored {
		if err := s.attachPolicy(rec); err != nil {
			return nil, err
		}
		rec.Habit.Policy.ScheduleActive()
		s.publish(rec.Habit)
		habits = append(habits, rec.Habit)
	}
	return habits, nil
}

func (s *HabitService) newPolicy(h *domain.Habit) (reminder.Policy, error) {
	switch h.Period {
	case domain.PeriodDaily:
		return reminder.NewDailyPolicy(h, s.sched, s.clock), nil
	case domain.PeriodWeekly:
		return reminder.NewWeeklyPolicy(h, s.sched, s.clock), nil
	case domain.PeriodMonthly:
		return reminder.NewMonthlyPolicy(h, s.sched, s.clock), nil
	default:
		return nil, fmt.Errorf("unknown period: %s", h.Period)
	}
}

func (s *HabitService) attachPolicy(rec *storage.StoredHabit) error {
	h := rec.Habit
	instants, err := rec.State.Instants(s.timezone)
	if err != nil {
		return fmt.Errorf("restore habit %s: %w", h.UID, err)
	}

	switch h.Period {
	case domain.PeriodDaily:
		h.Policy = reminder.RestoreDailyPolicy(h, s.sched, s.clock, instants, rec.State.IsDefault)
	case domain.PeriodWeekly:
		h.Policy = reminder.RestoreWeeklyPolicy(h, s.sched, s.clock, instants, rec.State.IsDefault)
	case domain.PeriodMonthly:
		pattern, err := rec.State.Pattern()
		if err != nil {
			return fmt.Errorf("restore habit %s: %w", h.UID, err)
		}
		h.Policy = reminder.RestoreMonthlyPolicy(h, s.sched, s.clock, instants, rec.State.IsDefault, pattern)
	default:
		return fmt.Errorf("restore habit %s: unknown period %s", h.UID, h.Period)
	}
	return nil
}

func (s *HabitService) save(h *domain.Habit) error {
	if err := s.storage.SaveHabit(h); err != nil {
		return fmt.Errorf("save habit: %w", err)
	}
	s.publish(h)
	return nil
}

func (s *HabitService) publish(h *domain.Habit) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(h); err != nil {
		log.Printf("Error publishing calendar for habit %s: %v", h.UID, err)
	}
}
