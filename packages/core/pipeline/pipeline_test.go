package pipeline

import (
	"bytes"
	"context"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/provision"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/abdul-hamid-achik/hookshot/packages/devserver"
	"github.com/abdul-hamid-achik/hookshot/packages/http"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/output"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureCall struct {
	messageID int64
	imagePath string
}

type fakeCapturer struct {
	calls []captureCall
}

func (f *fakeCapturer) Capture(_ context.Context, messageID int64, imagePath string) error {
	f.calls = append(f.calls, captureCall{messageID, imagePath})
	return nil
}

type forbiddenLocator struct{ t *testing.T }

func (l forbiddenLocator) Latest(context.Context, *store.User) (*store.Message, error) {
	l.t.Error("no message lookup expected")
	return nil, nil
}

type harness struct {
	cfg      *config.Config
	store    *store.Store
	console  *output.Console
	out      *bytes.Buffer
	capturer *fakeCapturer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.FixturesDir = filepath.Join(dir, "webhooks", "{integration}", "fixtures")
	cfg.Database = "sqlite://" + filepath.Join(dir, "dev.db")

	fixtures := cfg.FixturesDirFor("github")
	require.NoError(t, os.MkdirAll(fixtures, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "push.json"),
		[]byte(`{"ref":"refs/heads/main","repository":{"full_name":"zulip/zulip"},"sender":{"login":"octocat"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "broken.json"), []byte(`{"ref":`), 0644))

	st, err := store.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = st.Seed(context.Background(), store.SeedOptions{
		RealmSubdomain: "zulip",
		RealmName:      "Zulip Dev",
		AdminEmail:     cfg.AdminEmail,
		AdminName:      "Iago",
		AdminAPIKey:    "admin-key",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &harness{
		cfg:      cfg,
		store:    st,
		out:      out,
		console:  output.NewConsole(output.WithWriter(out), output.WithErrWriter(out), output.WithNoColor(true)),
		capturer: &fakeCapturer{},
	}
}

func (h *harness) pipeline(baseURL string, locator Locator) *Pipeline {
	if locator == nil {
		locator = replay.NewLocator(h.store, h.console)
	}
	return New(h.cfg, Deps{
		Actors:   provision.NewActorProvisioner(h.store, h.cfg.AdminEmail, h.cfg.BotAPIKey),
		Channels: provision.NewChannelProvisioner(h.store),
		Replayer: replay.NewReplayer(http.NewClient(), h.store, baseURL, h.console),
		Locator:  locator,
		Capturer: h.capturer,
	}, h.console)
}

func TestPipeline_EndToEnd(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(devserver.NewServer(h.store).Handler())
	defer server.Close()

	p := h.pipeline(server.URL, nil)
	ctx := context.Background()
	req := Request{Integration: "github", Fixture: "push.json"}

	// A leftover message from an earlier run must not survive the replay.
	first, err := p.Run(ctx, req)
	require.NoError(t, err)
	require.Equal(t, OutcomeCaptured, first.Outcome)
	assert.True(t, first.BotCreated)
	assert.True(t, first.ChannelCreated)

	result, err := p.Run(ctx, req)
	require.NoError(t, err)
	require.Equal(t, OutcomeCaptured, result.Outcome)
	assert.False(t, result.BotCreated)
	assert.False(t, result.ChannelCreated)
	assert.Equal(t, "github-bot@example.com", result.BotEmail)

	bot, err := h.store.UserByEmail(ctx, "github-bot@example.com")
	require.NoError(t, err)
	n, err := h.store.CountMessagesBySender(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msg, err := h.store.LatestMessageBySender(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, result.MessageID)
	assert.Equal(t, "push", msg.Topic)

	wantPath := filepath.Join("static", "images", "integrations", "github", DefaultImageName)
	assert.Equal(t, wantPath, result.ImagePath)
	require.Len(t, h.capturer.calls, 2)
	assert.Equal(t, captureCall{msg.ID, wantPath}, h.capturer.calls[1])
	assert.Contains(t, h.out.String(), "Screenshot captured to: "+wantPath)
}

func TestPipeline_RejectedReplayShortCircuits(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
		w.Write([]byte(`{"result":"error","msg":"Not found"}`))
	}))
	defer server.Close()

	result, err := h.pipeline(server.URL, forbiddenLocator{t}).Run(context.Background(),
		Request{Integration: "github", Fixture: "push"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, result.Outcome)
	assert.Empty(t, result.ImagePath)
	assert.Empty(t, h.capturer.calls)
	assert.Contains(t, h.out.String(), "Not found")
}

func TestPipeline_NoMessage(t *testing.T) {
	h := newHarness(t)
	// Accepts the webhook without posting anything.
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	result, err := h.pipeline(server.URL, nil).Run(context.Background(),
		Request{Integration: "github", Fixture: "push"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMessage, result.Outcome)
	assert.Empty(t, h.capturer.calls)
	assert.Contains(t, h.out.String(), "No message found for bot github-bot@example.com")
}

func TestPipeline_ServerUnreachable(t *testing.T) {
	h := newHarness(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	_, err = h.pipeline("http://"+addr, nil).Run(context.Background(),
		Request{Integration: "github", Fixture: "push"})
	assert.ErrorIs(t, err, replay.ErrServerUnreachable)
	assert.Empty(t, h.capturer.calls)
}

func TestPipeline_Prepare(t *testing.T) {
	h := newHarness(t)
	p := h.pipeline("http://localhost:9991", nil)

	t.Run("custom headers and image location", func(t *testing.T) {
		plan, err := p.Prepare(Request{
			Integration:   "github",
			Fixture:       "push",
			ImageName:     "002.png",
			ImageDir:      "out",
			CustomHeaders: map[string]string{"x-github-event": "ping"},
		})
		require.NoError(t, err)
		assert.Equal(t, "push", plan.Fixture.Name)
		assert.Equal(t, filepath.Join("out", "002.png"), plan.ImagePath)
		assert.Equal(t, "ping", plan.Headers["x-github-event"])
		_, stale := plan.Headers["X-GITHUB-EVENT"]
		assert.False(t, stale)
	})

	t.Run("unknown integration", func(t *testing.T) {
		_, err := p.Prepare(Request{Integration: "nope", Fixture: "push"})
		assert.ErrorIs(t, err, integrations.ErrUnknownIntegration)
	})

	t.Run("malformed fixture", func(t *testing.T) {
		_, err := p.Prepare(Request{Integration: "github", Fixture: "broken"})
		assert.ErrorIs(t, err, fixture.ErrInvalidFixture)
	})
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "captured", OutcomeCaptured.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "no message", OutcomeNoMessage.String())
}
