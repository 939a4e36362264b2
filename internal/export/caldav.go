package export

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-webdav/caldav"

	"github.com/gvw100/habithaven/internal/domain"
)

// Publisher pushes habit reminder calendars to a CalDAV collection.
type Publisher struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	client       *caldav.Client
}

func NewPublisher(baseURL, username, password, calendarPath string) *Publisher {
	return &Publisher{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
	}
}

// IsConfigured returns true if the publisher has credentials.
func (p *Publisher) IsConfigured() bool {
	return p.baseURL != "" && p.username != "" && p.password != ""
}

func (p *Publisher) connect() (*caldav.Client, error) {
	if p.client != nil {
		return p.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: p.username,
			password: p.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	p.client = client
	return client, nil
}

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// Publish puts the habit's reminder calendar into the collection, replacing
// any previous version.
func (p *Publisher) Publish(h *domain.Habit) error {
	client, err := p.connect()
	if err != nil {
		return err
	}

	if p.calendarPath == "" {
		return fmt.Errorf("calendar path not set")
	}

	cal := Calendar(h)
	if _, err := client.PutCalendarObject(context.Background(), p.objectPath(h.UID), cal); err != nil {
		return fmt.Errorf("publish habit calendar: %w", err)
	}
	return nil
}

// Remove deletes the habit's published calendar. Missing objects are the
// server's problem to report; callers treat this as best effort.
func (p *Publisher) Remove(habitID string) error {
	client, err := p.connect()
	if err != nil {
		return err
	}

	if err := client.RemoveAll(context.Background(), p.objectPath(habitID)); err != nil {
		return fmt.Errorf("remove habit calendar: %w", err)
	}
	return nil
}

func (p *Publisher) objectPath(habitID string) string {
	path := p.calendarPath
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path + habitID + ".ics"
}
