package notify

import (
	"log"
	"time"
)

// Console prints fired reminders to the process log.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (*Console) Notify(habitID, title string, at time.Time) {
	log.Printf("🔔 Reminder: %s (habit %s, scheduled for %s)", title, habitID, at.Format("15:04"))
}
