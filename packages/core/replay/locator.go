package replay

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/hookshot/packages/store"
)

// MessageFinder looks up a bot's most recent message
type MessageFinder interface {
	LatestMessageBySender(ctx context.Context, senderID int64) (*store.Message, error)
}

// Locator finds the message a replay produced
type Locator struct {
	messages MessageFinder
	report   Reporter
}

func NewLocator(messages MessageFinder, report Reporter) *Locator {
	return &Locator{messages: messages, report: report}
}

// Latest returns the bot's most recent message, or nil when it has none.
// A missing message is reported, not returned as an error.
func (l *Locator) Latest(ctx context.Context, bot *store.User) (*store.Message, error) {
	msg, err := l.messages.LatestMessageBySender(ctx, bot.ID)
	if errors.Is(err, store.ErrNotFound) {
		l.report.Failure("No message found for bot %s", bot.Email)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.report.Detail("found message %d in topic %q", msg.ID, msg.Topic)
	return msg, nil
}
