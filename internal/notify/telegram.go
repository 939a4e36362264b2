package notify

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers reminders to a Telegram chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(habitID, title string, at time.Time) {
	text := fmt.Sprintf("🔔 <b>%s</b>\n\nTime to check in on your habit.", title)
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := t.api.Send(msg); err != nil {
		log.Printf("Error sending reminder for habit %s: %v", habitID, err)
	}
}
