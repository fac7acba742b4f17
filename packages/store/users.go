package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Avatar sources
const (
	AvatarFromGravatar = "G"
	AvatarFromUser     = "U"
)

// User is a human or bot account
type User struct {
	ID           int64
	RealmID      int64
	Email        string
	FullName     string
	APIKey       string
	IsBot        bool
	BotOwnerID   int64 // 0 for humans
	AvatarSource string
	AvatarPath   string
	CreatedAt    time.Time
}

// NewUser carries the attributes of a user to create
type NewUser struct {
	RealmID    int64
	Email      string
	FullName   string
	APIKey     string
	IsBot      bool
	BotOwnerID int64
}

const userColumns = `id, realm_id, email, full_name, api_key, is_bot, bot_owner_id, avatar_source, avatar_path, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var (
		u         User
		owner     sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.RealmID, &u.Email, &u.FullName, &u.APIKey, &u.IsBot,
		&owner, &u.AvatarSource, &u.AvatarPath, &createdAt); err != nil {
		return nil, err
	}
	u.BotOwnerID = owner.Int64
	u.CreatedAt = time.UnixMilli(createdAt)
	return &u, nil
}

// UserByEmail looks up a user by email
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", email, err)
	}
	return u, nil
}

// UserByAPIKey looks up a user by API key. Placeholder keys may be shared,
// so the most recently created match wins.
func (s *Store) UserByAPIKey(ctx context.Context, apiKey string, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_key = ?`
	args := []any{apiKey}
	if email != "" {
		query += ` AND email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("api key: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user by api key: %w", err)
	}
	return u, nil
}

// UserByID looks up a user by id
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return u, nil
}

// CreateUser inserts a user. Duplicate emails are an error.
func (s *Store) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	var owner sql.NullInt64
	if nu.BotOwnerID != 0 {
		owner = sql.NullInt64{Int64: nu.BotOwnerID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (realm_id, email, full_name, api_key, is_bot, bot_owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nu.RealmID, nu.Email, nu.FullName, nu.APIKey, nu.IsBot, owner, s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", nu.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", nu.Email, err)
	}
	return s.UserByID(ctx, id)
}

// SetAvatar records an uploaded avatar image for the user
func (s *Store) SetAvatar(ctx context.Context, userID int64, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET avatar_source = ?, avatar_path = ? WHERE id = ?`,
		AvatarFromUser, path, userID)
	if err != nil {
		return fmt.Errorf("failed to set avatar for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
