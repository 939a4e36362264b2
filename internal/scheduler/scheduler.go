package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gvw100/habithaven/internal/reminder"
)

// Notifier delivers a fired reminder. The channel (console, Telegram, ...)
// is the implementation's concern.
type Notifier interface {
	Notify(habitID, title string, at time.Time)
}

// jobKey is the composite identity of one scheduled job: one instant for
// one habit.
type jobKey struct {
	at      string
	habitID string
}

// Scheduler registers one-shot reminder jobs with a cron runner. Job and
// trigger identity share the (instant, habit id) key, so cancel-then-schedule
// for the same key never leaves duplicate live entries. A job whose instant
// has already passed never fires; misfires are not replayed.
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier

	mu      sync.Mutex
	entries map[jobKey]cron.EntryID
}

func New(loc *time.Location, notifier Notifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		notifier: notifier,
		entries:  make(map[jobKey]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Reminder scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder scheduler stopped")
}

// oneShot fires at a fixed instant and never again.
type oneShot struct {
	at time.Time
}

func (o oneShot) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// ScheduleReminders registers one job per instant. It is the engine's sole
// gate against notifying a habit that no longer needs it: nothing is
// registered while the habit's period is complete or the habit is archived.
// Registration failures are logged and swallowed so a reminder failing to
// schedule never blocks habit editing.
func (s *Scheduler) ScheduleReminders(instants []time.Time, habit reminder.HabitInfo) {
	if habit.IsPeriodComplete() || habit.IsArchived() {
		return
	}
	for _, at := range instants {
		if err := s.ScheduleReminder(at, habit); err != nil {
			log.Printf("Error scheduling reminder for habit %s at %s: %v", habit.ID(), at, err)
		}
	}
}

// ScheduleReminder registers a single one-shot job keyed by (instant, habit
// id). Re-registering the same key replaces the previous entry.
func (s *Scheduler) ScheduleReminder(at time.Time, habit reminder.HabitInfo) error {
	if at.IsZero() {
		return fmt.Errorf("zero reminder instant")
	}

	key := s.key(at, habit.ID())
	habitID, title := habit.ID(), habit.Title()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.cron.Remove(old)
		delete(s.entries, key)
	}

	// The closure reads entryID after Schedule assigns it; the job cannot
	// run before then because the instant is in the future.
	var entryID cron.EntryID
	entryID = s.cron.Schedule(oneShot{at: at}, cron.FuncJob(func() {
		s.fire(key, entryID, habitID, title, at)
	}))
	s.entries[key] = entryID
	return nil
}

// CancelReminder removes the job for (instant, habit id). Cancelling a job
// that was never scheduled, or was already cancelled, is a no-op.
func (s *Scheduler) CancelReminder(at time.Time, habitID string) {
	key := s.key(at, habitID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[key]; ok {
		s.cron.Remove(id)
		delete(s.entries, key)
	}
}

// Jobs returns the number of live scheduled jobs.
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) key(at time.Time, habitID string) jobKey {
	return jobKey{at: at.Format(time.RFC3339Nano), habitID: habitID}
}

// fire runs on cron's goroutine with a snapshot of the habit captured at
// schedule time; later policy mutations do not reach an in-flight job. It
// unregisters only its own entry: a job re-registered under the same key
// while a fire is in flight must stay live.
func (s *Scheduler) fire(key jobKey, self cron.EntryID, habitID, title string, at time.Time) {
	s.mu.Lock()
	if id, ok := s.entries[key]; ok && id == self {
		s.cron.Remove(id)
		delete(s.entries, key)
	}
	s.mu.Unlock()

	s.notifier.Notify(habitID, title, at)
}
