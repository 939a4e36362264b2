package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gvw100/habithaven/internal/domain"
	"github.com/gvw100/habithaven/internal/reminder"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			period TEXT NOT NULL,
			frequency INTEGER NOT NULL DEFAULT 1,
			period_complete INTEGER DEFAULT 0,
			archived INTEGER DEFAULT 0,
			reminders TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_archived ON habits(archived)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_period ON habits(period)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// StoredHabit is a habit row plus its persisted reminder policy state. The
// habit's Policy field is nil; the service layer rebuilds it from State.
type StoredHabit struct {
	Habit *domain.Habit
	State reminder.State
}

// SaveHabit upserts the habit and a verbatim snapshot of its policy.
func (s *Storage) SaveHabit(h *domain.Habit) error {
	state, err := json.Marshal(reminder.EncodeState(h.Policy))
	if err != nil {
		return fmt.Errorf("marshal reminder state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, name, period, frequency, period_complete, archived, reminders, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			period = excluded.period,
			frequency = excluded.frequency,
			period_complete = excluded.period_complete,
			archived = excluded.archived,
			reminders = excluded.reminders`,
		h.UID, h.Name, string(h.Period), h.Frequency,
		boolToInt(h.PeriodComplete), boolToInt(h.Archived),
		string(state), h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save habit: %w", err)
	}
	return nil
}

// GetHabit returns one habit or nil if absent. Malformed reminder state is
// a read failure, not a partially recovered habit.
func (s *Storage) GetHabit(id string) (*StoredHabit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, period, frequency, period_complete, archived, reminders, created_at
		FROM habits WHERE id = ?`, id)

	stored, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListHabits returns all habits, oldest first.
func (s *Storage) ListHabits() ([]*StoredHabit, error) {
	rows, err := s.db.Query(`
		SELECT id, name, period, frequency, period_complete, archived, reminders, created_at
		FROM habits ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []*StoredHabit
	for rows.Next() {
		stored, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, stored)
	}
	return habits, rows.Err()
}

func (s *Storage) DeleteHabit(id string) error {
	if _, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanHabit(row scannable) (*StoredHabit, error) {
	var (
		h              domain.Habit
		period         string
		complete, arch int
		stateJSON      string
		createdAt      time.Time
	)
	err := row.Scan(&h.UID, &h.Name, &period, &h.Frequency, &complete, &arch, &stateJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan habit: %w", err)
	}

	h.Period = domain.Period(period)
	h.PeriodComplete = complete != 0
	h.Archived = arch != 0
	h.CreatedAt = createdAt

	var state reminder.State
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("unmarshal reminder state for habit %s: %w", h.UID, err)
	}

	return &StoredHabit{Habit: &h, State: state}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
