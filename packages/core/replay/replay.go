package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/http"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader correlates a replay with the message it produced
	RequestIDHeader   = "X-Request-Id"
	contentTypeHeader = "Content-Type"
	jsonContentType   = "application/json"
)

// ErrServerUnreachable is returned when nothing answers at the base URL
var ErrServerUnreachable = errors.New("development server unreachable")

// Reporter receives the human-readable progress of a replay
type Reporter interface {
	Success(format string, args ...any)
	Failure(format string, args ...any)
	Detail(format string, args ...any)
	Block(title, body string)
}

// MessagePurger removes a bot's earlier messages
type MessagePurger interface {
	DeleteMessagesBySender(ctx context.Context, senderID int64) (int64, error)
}

// RealmFinder looks up the realm a bot belongs to
type RealmFinder interface {
	RealmByID(ctx context.Context, id int64) (*store.Realm, error)
}

// Delivery is one webhook request to replay
type Delivery struct {
	Integration integrations.Integration
	Bot         *store.User
	Stream      string
	Body        []byte
	Headers     map[string]string
}

// Replayer posts fixtures to the development server
type Replayer struct {
	client   *http.Client
	messages MessagePurger
	realms   RealmFinder
	baseURL  string
	report   Reporter
}

type ReplayerOption func(*Replayer)

// WithRealms posts each delivery to the URI of the bot's realm. baseURL is
// used for realms without one.
func WithRealms(realms RealmFinder) ReplayerOption {
	return func(r *Replayer) {
		r.realms = realms
	}
}

// NewReplayer creates a replayer that posts to baseURL with client
func NewReplayer(client *http.Client, messages MessagePurger, baseURL string, report Reporter, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		client:   client,
		messages: messages,
		baseURL:  strings.TrimRight(baseURL, "/"),
		report:   report,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint returns the URL an integration's webhooks are posted to
func Endpoint(baseURL string, integration integrations.Integration) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(integration.URL, "/")
}

// Replay purges the bot's messages and posts the delivery. It reports
// whether the server accepted the payload with 200 OK. A rejected payload is
// not an error.
func (r *Replayer) Replay(ctx context.Context, d Delivery) (bool, error) {
	deleted, err := r.messages.DeleteMessagesBySender(ctx, d.Bot.ID)
	if err != nil {
		return false, fmt.Errorf("cannot clear messages of %s: %w", d.Bot.Email, err)
	}
	r.report.Detail("deleted %d earlier message(s) of %s", deleted, d.Bot.Email)

	base, err := r.target(ctx, d.Bot)
	if err != nil {
		return false, err
	}

	endpoint := Endpoint(base, d.Integration)
	req := http.NewRequest("POST", endpoint).
		SetBody(d.Body).
		SetQueryParam("api_key", d.Bot.APIKey).
		SetQueryParam("stream", d.Stream)
	for k, v := range d.Headers {
		req.SetHeader(k, v)
	}
	if _, ok := req.Header(contentTypeHeader); !ok {
		req.SetHeader(contentTypeHeader, jsonContentType)
	}
	if _, ok := req.Header(RequestIDHeader); !ok {
		req.SetHeader(RequestIDHeader, uuid.NewString())
	}

	r.report.Detail("POST %s", endpoint)
	resp, err := r.client.Do(ctx, req)
	if err != nil {
		if http.IsConnectionError(err) {
			r.report.Failure("Could not reach %s. Start the development server (hookshot serve) and try again.", base)
			return false, fmt.Errorf("%w: %s: %v", ErrServerUnreachable, base, err)
		}
		return false, fmt.Errorf("replay of %s webhook failed: %w", d.Integration.Name, err)
	}

	r.report.Detail("%s in %s", resp.Status, resp.Duration.Round(time.Millisecond))

	if !resp.IsOK() {
		r.report.Block(resp.Status, resp.PrettyBody())
		if msg := resp.Field("msg"); resp.IsJSON() && msg != "" {
			r.report.Failure("Triggering the %s webhook failed (status %d): %s", d.Integration.Name, resp.StatusCode, msg)
		} else {
			r.report.Failure("Triggering the %s webhook failed (status %d)", d.Integration.Name, resp.StatusCode)
		}
		return false, nil
	}

	r.report.Success("Triggered the %s webhook", d.Integration.Name)
	return true, nil
}

// target returns the base URL of the bot's realm, or the configured one when
// the realm records none
func (r *Replayer) target(ctx context.Context, bot *store.User) (string, error) {
	if r.realms == nil {
		return r.baseURL, nil
	}
	realm, err := r.realms.RealmByID(ctx, bot.RealmID)
	if errors.Is(err, store.ErrNotFound) {
		return r.baseURL, nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot look up realm of %s: %w", bot.Email, err)
	}
	if realm.URI == "" {
		return r.baseURL, nil
	}
	return strings.TrimRight(realm.URI, "/"), nil
}
