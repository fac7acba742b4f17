package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/core/provision"
	"github.com/abdul-hamid-achik/hookshot/packages/core/replay"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
)

// DefaultImageName is the file name used when a request names none
const DefaultImageName = "001.png"

// Outcome says how far a run got
type Outcome int

const (
	OutcomeCaptured  Outcome = iota
	OutcomeRejected          // the server did not accept the replay
	OutcomeNoMessage         // the replay left no message to capture
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNoMessage:
		return "no message"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Request describes one screenshot to produce
type Request struct {
	Integration   string
	Fixture       string
	ImageName     string            // DefaultImageName when empty
	ImageDir      string            // the configured image directory when empty
	CustomHeaders map[string]string // override resolved headers
}

// Plan is a request resolved against the registry and the file system
type Plan struct {
	Integration integrations.Integration
	Fixture     *fixture.Fixture
	Headers     map[string]string
	ImagePath   string
}

// Result is the outcome of a run
type Result struct {
	Outcome        Outcome
	ImagePath      string
	MessageID      int64
	BotEmail       string
	BotCreated     bool
	ChannelCreated bool
}

// Reporter receives the human-readable progress of a run
type Reporter interface {
	replay.Reporter
	Info(format string, args ...any)
}

type Actors interface {
	Ensure(ctx context.Context, integration integrations.Integration) (*provision.Bot, error)
}

type Channels interface {
	Ensure(ctx context.Context, integration integrations.Integration, bot *provision.Bot) (*store.Channel, bool, error)
}

type Replayer interface {
	Replay(ctx context.Context, d replay.Delivery) (bool, error)
}

type Locator interface {
	Latest(ctx context.Context, bot *store.User) (*store.Message, error)
}

type Capturer interface {
	Capture(ctx context.Context, messageID int64, imagePath string) error
}

// Deps are the collaborators a Pipeline drives
type Deps struct {
	Actors   Actors
	Channels Channels
	Replayer Replayer
	Locator  Locator
	Capturer Capturer
}

// Pipeline runs screenshot requests
type Pipeline struct {
	cfg    *config.Config
	deps   Deps
	report Reporter
}

func New(cfg *config.Config, deps Deps, report Reporter) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps, report: report}
}

// Prepare resolves a request without touching the server or the store
func (p *Pipeline) Prepare(req Request) (*Plan, error) {
	integration, err := integrations.Lookup(req.Integration)
	if err != nil {
		return nil, err
	}

	fx, err := fixture.Load(p.cfg.FixturesDirFor(integration.Name), req.Fixture)
	if err != nil {
		return nil, err
	}

	headers, err := fixture.ResolveHeaders(integration, fx)
	if err != nil {
		return nil, err
	}

	imageDir := req.ImageDir
	if imageDir == "" {
		imageDir = p.cfg.ImageDirFor(integration.Name)
	}
	imageName := req.ImageName
	if imageName == "" {
		imageName = DefaultImageName
	}

	return &Plan{
		Integration: integration,
		Fixture:     fx,
		Headers:     fixture.MergeHeaders(headers, req.CustomHeaders),
		ImagePath:   filepath.Join(imageDir, imageName),
	}, nil
}

// Run produces the screenshot for req. Unreachable servers and failed
// captures are errors; rejected replays and missing messages are outcomes.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	plan, err := p.Prepare(req)
	if err != nil {
		return nil, err
	}
	p.report.Detail("fixture %s", plan.Fixture.Path)

	bot, err := p.deps.Actors.Ensure(ctx, plan.Integration)
	if err != nil {
		return nil, err
	}
	if bot.Created {
		p.report.Detail("created bot %s", bot.Email)
	}

	channel, created, err := p.deps.Channels.Ensure(ctx, plan.Integration, bot)
	if err != nil {
		return nil, err
	}
	if created {
		p.report.Detail("created channel #%s", channel.Name)
	}

	result := &Result{
		BotEmail:       bot.Email,
		BotCreated:     bot.Created,
		ChannelCreated: created,
	}

	ok, err := p.deps.Replayer.Replay(ctx, replay.Delivery{
		Integration: plan.Integration,
		Bot:         bot.User,
		Stream:      channel.Name,
		Body:        plan.Fixture.Body,
		Headers:     plan.Headers,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Outcome = OutcomeRejected
		return result, nil
	}

	msg, err := p.deps.Locator.Latest(ctx, bot.User)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		result.Outcome = OutcomeNoMessage
		return result, nil
	}
	result.MessageID = msg.ID

	if err := p.deps.Capturer.Capture(ctx, msg.ID, plan.ImagePath); err != nil {
		return nil, err
	}

	result.Outcome = OutcomeCaptured
	result.ImagePath = plan.ImagePath
	p.report.Success("Screenshot captured to: %s", plan.ImagePath)
	return result, nil
}
