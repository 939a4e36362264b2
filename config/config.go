package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath string
	Timezone     *time.Location

	// Telegram delivery is optional; the console notifier is the fallback.
	TelegramToken  string
	TelegramChatID int64

	// CalDAV publishing is optional.
	CalDAVURL      string
	CalDAVUsername string
	CalDAVPassword string
	CalDAVCalendar string
}

func Load() (*Config, error) {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/habithaven.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Local"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	var chatID int64
	if c := os.Getenv("TELEGRAM_CHAT_ID"); c != "" {
		chatID, err = strconv.ParseInt(c, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be a number: %w", err)
		}
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token != "" && chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return &Config{
		DatabasePath:   dbPath,
		Timezone:       tz,
		TelegramToken:  token,
		TelegramChatID: chatID,
		CalDAVURL:      os.Getenv("CALDAV_URL"),
		CalDAVUsername: os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword: os.Getenv("CALDAV_PASSWORD"),
		CalDAVCalendar: os.Getenv("CALDAV_CALENDAR"),
	}, nil
}
