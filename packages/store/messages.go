package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Message is a message posted to a channel
type Message struct {
	ID        int64
	SenderID  int64
	ChannelID int64
	Topic     string
	Content   string
	RequestID string
	CreatedAt time.Time
}

// NewMessage carries the attributes of a message to create
type NewMessage struct {
	SenderID  int64
	ChannelID int64
	Topic     string
	Content   string
	RequestID string
}

// CreateMessage inserts a message
func (s *Store) CreateMessage(ctx context.Context, nm NewMessage) (*Message, error) {
	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, channel_id, topic, content, request_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		nm.SenderID, nm.ChannelID, nm.Topic, nm.Content, nm.RequestID, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &Message{
		ID:        id,
		SenderID:  nm.SenderID,
		ChannelID: nm.ChannelID,
		Topic:     nm.Topic,
		Content:   nm.Content,
		RequestID: nm.RequestID,
		CreatedAt: time.UnixMilli(createdAt),
	}, nil
}

// DeleteMessagesBySender removes every message sent by the user and returns
// how many were deleted
func (s *Store) DeleteMessagesBySender(ctx context.Context, senderID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE sender_id = ?`, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages of user %d: %w", senderID, err)
	}
	return res.RowsAffected()
}

// LatestMessageBySender returns the most recently created message of the user.
// Ids grow with creation order, so the highest id is the latest.
func (s *Store) LatestMessageBySender(ctx context.Context, senderID int64) (*Message, error) {
	var (
		m         Message
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sender_id, channel_id, topic, content, request_id, created_at
		 FROM messages WHERE sender_id = ? ORDER BY id DESC LIMIT 1`, senderID,
	).Scan(&m.ID, &m.SenderID, &m.ChannelID, &m.Topic, &m.Content, &m.RequestID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message by user %d: %w", senderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest message of user %d: %w", senderID, err)
	}
	m.CreatedAt = time.UnixMilli(createdAt)
	return &m, nil
}

// CountMessagesBySender returns how many messages the user has sent
func (s *Store) CountMessagesBySender(ctx context.Context, senderID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE sender_id = ?`, senderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages of user %d: %w", senderID, err)
	}
	return n, nil
}
