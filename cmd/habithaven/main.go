package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gvw100/habithaven/config"
	"github.com/gvw100/habithaven/internal/export"
	"github.com/gvw100/habithaven/internal/notify"
	"github.com/gvw100/habithaven/internal/reminder"
	"github.com/gvw100/habithaven/internal/scheduler"
	"github.com/gvw100/habithaven/internal/service"
	"github.com/gvw100/habithaven/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	var notifier scheduler.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Failed to init telegram notifier: %v", err)
		}
		notifier = tg
	} else {
		notifier = notify.NewConsole()
	}

	sched := scheduler.New(cfg.Timezone, notifier)
	habitSvc := service.NewHabitService(store, sched, reminder.SystemClock(), cfg.Timezone)

	if cfg.CalDAVURL != "" {
		publisher := export.NewPublisher(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.CalDAVCalendar)
		if publisher.IsConfigured() {
			habitSvc.SetPublisher(publisher)
			log.Println("CalDAV publishing enabled")
		} else {
			log.Println("CALDAV_URL set but credentials missing, publishing disabled")
		}
	}

	habits, err := habitSvc.RestoreAll()
	if err != nil {
		log.Fatalf("Failed to restore habits: %v", err)
	}
	log.Printf("Restored %d habits", len(habits))

	sched.Start()
	log.Println("HabitHaven started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("HabitHaven stopped")
}
