package export

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/gvw100/habithaven/internal/domain"
	"github.com/gvw100/habithaven/internal/reminder"
)

const productID = "-//HabitHaven//Reminders//EN"

// Calendar renders a habit's reminders as an iCalendar document. A monthly
// habit with a custom pattern exports recurring events (one per pattern
// entry, with an RRULE); everything else exports the literal instant set.
func Calendar(h *domain.Habit) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	if mp, ok := h.Policy.(*reminder.MonthlyPolicy); ok && !h.Policy.IsDefault() {
		now := time.Now()
		for _, e := range mp.Pattern() {
			cal.Children = append(cal.Children, patternEvent(h, e, now).Component)
		}
		return cal
	}

	for _, at := range h.Policy.Reminders() {
		cal.Children = append(cal.Children, reminderEvent(h, at).Component)
	}
	return cal
}

// Encode serializes a calendar to its text form.
func Encode(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

func reminderEvent(h *domain.Habit, at time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@habithaven", h.UID, at.Unix()))
	ev.Props.SetText(ical.PropSummary, h.Name)
	ev.Props.SetDateTime(ical.PropDateTimeStart, at.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, at.Add(15*time.Minute).UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	return ev
}

func patternEvent(h *domain.Habit, e reminder.PatternEntry, now time.Time) *ical.Event {
	// Mirror the scheduler's clamp: day 31 means last day of the month,
	// and DTSTART must not normalize past a short current month.
	day := e.Day
	if last := lastDayOfMonth(now.Year(), now.Month()); day > last {
		day = last
	}
	start := time.Date(now.Year(), now.Month(), day, e.Time.Hour, e.Time.Minute, e.Time.Second, 0, time.UTC)

	byMonthDay := []int{e.Day}
	if e.Day >= 31 {
		byMonthDay = []int{-1}
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s-day%d@habithaven", h.UID, e.Day))
	ev.Props.SetText(ical.PropSummary, h.Name)
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(15*time.Minute))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.MONTHLY,
		Bymonthday: byMonthDay,
		Dtstart:    start,
	})
	if err != nil {
		// A pattern day outside 1..31 cannot be stored, so this is unreachable
		// for persisted data; export the single occurrence instead.
		log.Printf("Error building recurrence rule for habit %s day %d: %v", h.UID, e.Day, err)
		return ev
	}
	ev.Props.SetText(ical.PropRecurrenceRule, r.String())
	return ev
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
