package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Realm is an organization hosted by the server
type Realm struct {
	ID        int64
	Subdomain string
	Name      string
	URI       string
}

// EnsureRealm returns the realm with the given subdomain, creating it if absent
func (s *Store) EnsureRealm(ctx context.Context, subdomain, name, uri string) (*Realm, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO realms (subdomain, name, uri) VALUES (?, ?, ?) ON CONFLICT(subdomain) DO NOTHING`,
		subdomain, name, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to create realm %s: %w", subdomain, err)
	}

	realm := &Realm{}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, subdomain, name, uri FROM realms WHERE subdomain = ?`, subdomain,
	).Scan(&realm.ID, &realm.Subdomain, &realm.Name, &realm.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to load realm %s: %w", subdomain, err)
	}
	return realm, nil
}

// RealmByID looks up a realm
func (s *Store) RealmByID(ctx context.Context, id int64) (*Realm, error) {
	realm := &Realm{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subdomain, name, uri FROM realms WHERE id = ?`, id,
	).Scan(&realm.ID, &realm.Subdomain, &realm.Name, &realm.URI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("realm %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load realm %d: %w", id, err)
	}
	return realm, nil
}

// SeedOptions configures the development seed data
type SeedOptions struct {
	RealmSubdomain string
	RealmName      string
	RealmURI       string
	AdminEmail     string
	AdminName      string
	AdminAPIKey    string
}

// Seed ensures the development realm and its administrator exist.
// It is safe to run repeatedly.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) (*User, error) {
	realm, err := s.EnsureRealm(ctx, opts.RealmSubdomain, opts.RealmName, opts.RealmURI)
	if err != nil {
		return nil, err
	}

	admin, err := s.UserByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return s.CreateUser(ctx, NewUser{
		RealmID:  realm.ID,
		Email:    opts.AdminEmail,
		FullName: opts.AdminName,
		APIKey:   opts.AdminAPIKey,
	})
}
