package provision

import (
	"context"

	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/abdul-hamid-achik/hookshot/packages/store"
)

// ChannelStore is the part of the channel store the channel provisioner needs
type ChannelStore interface {
	CreateChannelIfAbsent(ctx context.Context, realmID int64, name string) (*store.Channel, bool, error)
	AddSubscriptions(ctx context.Context, channelID int64, userIDs []int64, origin string) error
}

// ChannelProvisioner ensures a bot's channel exists and that the bot and its
// owner are subscribed
type ChannelProvisioner struct {
	channels ChannelStore
}

// NewChannelProvisioner creates a channel provisioner
func NewChannelProvisioner(channels ChannelStore) *ChannelProvisioner {
	return &ChannelProvisioner{channels: channels}
}

// Ensure creates the integration's channel in the bot's realm when missing and
// subscribes the bot and its owner. created reports a freshly made channel.
func (p *ChannelProvisioner) Ensure(ctx context.Context, integration integrations.Integration, bot *Bot) (*store.Channel, bool, error) {
	channel, created, err := p.channels.CreateChannelIfAbsent(ctx, bot.RealmID, integration.Stream)
	if err != nil {
		return nil, false, err
	}

	origin := store.OriginAdded
	if created {
		origin = store.OriginChannelCreation
	}

	subscribers := []int64{bot.ID}
	if bot.Owner != nil && bot.Owner.ID != bot.ID {
		subscribers = append(subscribers, bot.Owner.ID)
	}
	if err := p.channels.AddSubscriptions(ctx, channel.ID, subscribers, origin); err != nil {
		return nil, false, err
	}
	return channel, created, nil
}
