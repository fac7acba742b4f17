package provision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/notify"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
)

// UserStore is the part of the user store the actor provisioner needs
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*store.User, error)
	CreateUser(ctx context.Context, nu store.NewUser) (*store.User, error)
	SetAvatar(ctx context.Context, userID int64, path string) error
}

// Bot is a provisioned integration bot together with its owner
type Bot struct {
	*store.User
	Owner   *store.User
	Created bool
}

// ActorProvisioner ensures integration bots exist
type ActorProvisioner struct {
	users      UserStore
	adminEmail string
	apiKey     string
	notifier   notify.Notifier
	warn       func(format string, args ...any)
}

// ActorOption configures an ActorProvisioner
type ActorOption func(*ActorProvisioner)

// WithNotifier sets who hears about newly created bots
func WithNotifier(n notify.Notifier) ActorOption {
	return func(p *ActorProvisioner) {
		p.notifier = n
	}
}

// WithWarnFunc sets the function non-fatal problems are reported through
func WithWarnFunc(f func(format string, args ...any)) ActorOption {
	return func(p *ActorProvisioner) {
		p.warn = f
	}
}

// NewActorProvisioner creates a provisioner whose bots are owned by the
// account with adminEmail and authenticate with apiKey
func NewActorProvisioner(users UserStore, adminEmail, apiKey string, opts ...ActorOption) *ActorProvisioner {
	p := &ActorProvisioner{
		users:      users,
		adminEmail: adminEmail,
		apiKey:     apiKey,
		warn:       func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure returns the integration's bot, creating it on first use
func (p *ActorProvisioner) Ensure(ctx context.Context, integration integrations.Integration) (*Bot, error) {
	owner, err := p.users.UserByEmail(ctx, p.adminEmail)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve bot owner %s: %w", p.adminEmail, err)
	}

	existing, err := p.users.UserByEmail(ctx, integration.BotEmail())
	if err == nil {
		return &Bot{User: existing, Owner: owner}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user, err := p.users.CreateUser(ctx, store.NewUser{
		RealmID:    owner.RealmID,
		Email:      integration.BotEmail(),
		FullName:   integration.BotName(),
		APIKey:     p.apiKey,
		IsBot:      true,
		BotOwnerID: owner.ID,
	})
	if err != nil {
		return nil, err
	}

	hasAvatar, err := p.applyAvatar(ctx, user, integration.LogoPath())
	if err != nil {
		return nil, err
	}

	if p.notifier != nil {
		err := p.notifier.BotCreated(ctx, notify.BotCreated{
			Integration: integration.Name,
			BotName:     user.FullName,
			BotEmail:    user.Email,
			OwnerEmail:  owner.Email,
			HasAvatar:   hasAvatar,
			CreatedAt:   user.CreatedAt,
		})
		if err != nil {
			p.warn("could not announce bot %s: %v", user.Email, err)
		}
	}

	return &Bot{User: user, Owner: owner, Created: true}, nil
}

// applyAvatar uploads the integration logo as the bot's avatar. A missing
// logo is not an error.
func (p *ActorProvisioner) applyAvatar(ctx context.Context, bot *store.User, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := p.users.SetAvatar(ctx, bot.ID, path); err != nil {
		return false, err
	}
	bot.AvatarSource = store.AvatarFromUser
	bot.AvatarPath = path
	return true, nil
}
