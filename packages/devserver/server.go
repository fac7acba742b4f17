package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultPort is the port the development server listens on
const DefaultPort = 9991

// DefaultMaxPayloadSize bounds the webhook bodies the server accepts
const DefaultMaxPayloadSize = 10 << 20

// Store is the persistence the server posts messages through
type Store interface {
	UserByAPIKey(ctx context.Context, apiKey, email string) (*store.User, error)
	ChannelByName(ctx context.Context, realmID int64, name string) (*store.Channel, error)
	CreateMessage(ctx context.Context, nm store.NewMessage) (*store.Message, error)
}

// Server receives replayed webhooks and turns them into messages
type Server struct {
	store   Store
	router  *Router
	port    int
	delay   time.Duration
	verbose bool
	limiter *rate.Limiter

	maxPayload int64
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables verbose logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// WithRateLimit caps accepted webhooks at rps per second with the given
// burst. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxPayloadSize rejects webhook bodies larger than n bytes with 413
func WithMaxPayloadSize(n int64) Option {
	return func(s *Server) {
		s.maxPayload = n
	}
}

// WithIntegrations replaces the registry's integrations as the served routes
func WithIntegrations(list []integrations.Integration) Option {
	return func(s *Server) {
		s.router = NewRouter(list)
	}
}

// NewServer creates a development server posting into st
func NewServer(st Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		router: NewRouter(integrations.All()),
		port:   DefaultPort,

		maxPayload: DefaultMaxPayloadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebhook)
	return mux
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Development server starting on http://localhost:%d", s.port)
	log.Printf("Webhook routes: %d", s.router.Len())

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type apiResponse struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
	ID     int64  `json:"id,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := s.serveWebhook(w, r)
	if s.verbose {
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
	}
}

func (s *Server) serveWebhook(w http.ResponseWriter, r *http.Request) int {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if r.Method != http.MethodPost {
		return writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return writeError(w, http.StatusTooManyRequests, "API usage exceeded rate limit")
	}

	integration, ok := s.router.Match(r.URL.Path)
	if !ok {
		return writeError(w, http.StatusNotFound, "Unknown integration")
	}

	apiKey := r.URL.Query().Get("api_key")
	if apiKey == "" {
		return writeError(w, http.StatusBadRequest, "Missing 'api_key' argument")
	}
	bot, err := s.store.UserByAPIKey(r.Context(), apiKey, integration.BotEmail())
	if errors.Is(err, store.ErrNotFound) {
		return writeError(w, http.StatusUnauthorized, "Invalid API key")
	}
	if err != nil {
		return s.internalError(w, err)
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, s.maxPayload+1))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "Cannot read request body")
	}
	if int64(len(payload)) > s.maxPayload {
		return writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Payload exceeds the %d byte limit", s.maxPayload))
	}
	if !gjson.ValidBytes(payload) {
		return writeError(w, http.StatusBadRequest, "Malformed JSON")
	}

	streamName := r.URL.Query().Get("stream")
	if streamName == "" {
		streamName = integration.Stream
	}
	channel, err := s.store.ChannelByName(r.Context(), bot.RealmID, streamName)
	if errors.Is(err, store.ErrNotFound) {
		return writeError(w, http.StatusBadRequest, fmt.Sprintf("Channel '%s' does not exist", streamName))
	}
	if err != nil {
		return s.internalError(w, err)
	}

	event := eventOf(integration, r)
	topic := event
	if topic == "" {
		topic = integration.Name
	}

	msg, err := s.store.CreateMessage(r.Context(), store.NewMessage{
		SenderID:  bot.ID,
		ChannelID: channel.ID,
		Topic:     topic,
		Content:   renderContent(displayName(integration), event, payload),
		RequestID: r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		return s.internalError(w, err)
	}

	if s.verbose {
		log.Printf("  message %d from %s in #%s > %s", msg.ID, bot.Email, channel.Name, topic)
	}
	return writeJSON(w, http.StatusOK, apiResponse{Result: "success", ID: msg.ID})
}

// eventOf returns the event named by the integration's event header
func eventOf(integration integrations.Integration, r *http.Request) string {
	if integration.EventHeader == "" {
		return ""
	}
	return r.Header.Get(fixture.NormalizeKey(integration.EventHeader))
}

func displayName(integration integrations.Integration) string {
	if integration.DisplayName != "" {
		return integration.DisplayName
	}
	return integration.Name
}

func (s *Server) internalError(w http.ResponseWriter, err error) int {
	log.Printf("internal error: %v", err)
	return writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	return writeJSON(w, status, apiResponse{Result: "error", Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
	return status
}
