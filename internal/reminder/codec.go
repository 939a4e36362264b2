package reminder

import (
	"fmt"
	"time"
)

const (
	instantLayout = "2006-01-02T15:04:05"
	timeLayout    = "15:04:05"
)

// State is the persisted form of a reminder policy. Reminders are ISO-8601
// local date-times; CustomReminders carries the monthly pattern and is
// omitted while the policy is default.
type State struct {
	IsDefault       bool           `json:"isDefault"`
	Reminders       []string       `json:"reminders"`
	CustomReminders []PatternState `json:"customReminders,omitempty"`
}

// PatternState is the persisted form of one monthly pattern entry.
type PatternState struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// EncodeState captures a policy verbatim for persistence.
func EncodeState(p Policy) State {
	s := State{IsDefault: p.IsDefault(), Reminders: []string{}}
	for _, t := range p.Reminders() {
		s.Reminders = append(s.Reminders, t.Format(instantLayout))
	}
	if mp, ok := p.(*MonthlyPolicy); ok && !p.IsDefault() {
		for _, e := range mp.Pattern() {
			s.CustomReminders = append(s.CustomReminders, PatternState{Day: e.Day, Time: e.Time.String()})
		}
	}
	return s
}

// Instants parses the persisted reminder instants in the given location.
// A malformed instant fails the whole read; no partial recovery.
func (s State) Instants(loc *time.Location) ([]time.Time, error) {
	out := make([]time.Time, 0, len(s.Reminders))
	for _, raw := range s.Reminders {
		t, err := time.ParseInLocation(instantLayout, raw, loc)
		if err != nil {
			return nil, fmt.Errorf("parse reminder instant %q: %w", raw, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Pattern parses the persisted monthly pattern, if any.
func (s State) Pattern() ([]PatternEntry, error) {
	if len(s.CustomReminders) == 0 {
		return nil, nil
	}
	out := make([]PatternEntry, 0, len(s.CustomReminders))
	for _, e := range s.CustomReminders {
		tod, err := ParseTimeOfDay(e.Time)
		if err != nil {
			return nil, fmt.Errorf("parse custom reminder day %d: %w", e.Day, err)
		}
		out = append(out, PatternEntry{Day: e.Day, Time: tod})
	}
	return out, nil
}
