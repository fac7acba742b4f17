package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Subscription origins
const (
	OriginChannelCreation = "channel_creation"
	OriginAdded           = "added"
)

// Channel is a named stream in a realm
type Channel struct {
	ID      int64
	RealmID int64
	Name    string
}

// CreateChannelIfAbsent returns the named channel of the realm, creating it when
// missing. created reports whether this call created it.
func (s *Store) CreateChannelIfAbsent(ctx context.Context, realmID int64, name string) (*Channel, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (realm_id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(realm_id, name) DO NOTHING`,
		realmID, name, s.timestamp())
	if err != nil {
		return nil, false, fmt.Errorf("failed to create channel %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create channel %s: %w", name, err)
	}

	ch, err := s.ChannelByName(ctx, realmID, name)
	if err != nil {
		return nil, false, err
	}
	return ch, n > 0, nil
}

// ChannelByName looks up a channel in a realm
func (s *Store) ChannelByName(ctx context.Context, realmID int64, name string) (*Channel, error) {
	ch := &Channel{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, realm_id, name FROM channels WHERE realm_id = ? AND name = ?`, realmID, name,
	).Scan(&ch.ID, &ch.RealmID, &ch.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load channel %s: %w", name, err)
	}
	return ch, nil
}

// AddSubscriptions subscribes users to a channel. Existing subscriptions are
// left untouched. origin records why the subscription was made.
func (s *Store) AddSubscriptions(ctx context.Context, channelID int64, userIDs []int64, origin string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to add subscriptions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.timestamp()
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions (channel_id, user_id, origin, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(channel_id, user_id) DO NOTHING`,
			channelID, userID, origin, now)
		if err != nil {
			return fmt.Errorf("failed to subscribe user %d: %w", userID, err)
		}
	}
	return tx.Commit()
}

// Subscription is one user's membership of a channel
type Subscription struct {
	UserID int64
	Origin string
}

// Subscribers lists a channel's subscriptions ordered by user id
func (s *Store) Subscribers(ctx context.Context, channelID int64) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, origin FROM subscriptions WHERE channel_id = ? ORDER BY user_id`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.UserID, &sub.Origin); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}
