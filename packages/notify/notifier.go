// Package notify announces bots that hookshot creates.
//
// A bot is only announced once, on the run that creates it. Notifiers post to
// chat webhooks or print to the terminal; the Manager fans an event out to all
// of them.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/http"
)

// webhookTimeout bounds a single chat webhook delivery
const webhookTimeout = 10 * time.Second

// BotCreated describes a freshly provisioned bot
type BotCreated struct {
	Integration string    `json:"integration"`
	BotName     string    `json:"bot_name"`
	BotEmail    string    `json:"bot_email"`
	OwnerEmail  string    `json:"owner_email"`
	HasAvatar   bool      `json:"has_avatar"`
	CreatedAt   time.Time `json:"created_at"`
}

// Text renders the event as a one-line chat message
func (e BotCreated) Text() string {
	return fmt.Sprintf("Created bot %s (%s) for the %s integration, owned by %s",
		e.BotName, e.BotEmail, e.Integration, e.OwnerEmail)
}

// Notifier is the interface for notification services
type Notifier interface {
	// BotCreated announces a new bot
	BotCreated(ctx context.Context, event BotCreated) error

	// Name returns the name of the notifier
	Name() string
}

// Manager fans events out to several notifiers
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new notification manager
func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of registered notifiers
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// BotCreated delivers the event to every notifier. Every notifier is tried;
// failures are joined.
func (m *Manager) BotCreated(ctx context.Context, event BotCreated) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.BotCreated(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Name returns the name of the notifier
func (m *Manager) Name() string {
	return "manager"
}

// WriterNotifier prints events to a writer
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a notifier printing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) BotCreated(_ context.Context, event BotCreated) error {
	_, err := fmt.Fprintln(n.w, event.Text())
	return err
}

func (n *WriterNotifier) Name() string {
	return "console"
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := client.Post(ctx, url, data, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, resp.BodyString())
	}
	return nil
}
