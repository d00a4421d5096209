// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package token keeps the bearer token of the logged-in user and refreshes
// it before it expires.
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// RefreshGracePeriod is how long before expiry a refresh is attempted.
	RefreshGracePeriod = 30 * time.Minute
	// RefreshRetryInterval is the minimum gap between refresh attempts.
	RefreshRetryInterval = 60 * time.Second
)

var (
	ErrNoExpiry     = errors.New("got JWT token without exp")
	ErrNoEmail      = errors.New("trying to refresh access token without an email")
	ErrMalformedJWT = errors.New("malformed access token")
	ErrNoRefresher  = errors.New("no refresher configured")
)

// Refresher obtains a new access token using the current one.
type Refresher func(ctx context.Context) (string, error)

// Store holds one access token. The zero value is not usable; use New.
type Store struct {
	mu               sync.Mutex
	token            string
	email            string
	expires          time.Time
	refreshRequested time.Time
	refresher        Refresher
	now              func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRefresher sets the function used by ConsiderRefresh.
func WithRefresher(r Refresher) Option {
	return func(s *Store) { s.refresher = r }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRefresher sets the refresher after construction. The API client and the
// store refer to each other, so one of them has to be wired late.
func (s *Store) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// Expiry decodes the exp claim of a JWT without verifying its signature. The
// backend is the only party that can verify it.
func Expiry(raw string) (time.Time, error) {
	claims, err := decode(raw)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func decode(raw string) (jwt.RegisteredClaims, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return claims, fmt.Errorf("%w: %w", ErrMalformedJWT, err)
	}
	if claims.ExpiresAt == nil {
		return claims, ErrNoExpiry
	}
	return claims, nil
}

// Set stores a new token for email. An empty email is taken from the sub
// claim, which the backend fills with the user's address.
func (s *Store) Set(email string, raw string) error {
	claims, err := decode(raw)
	if err != nil {
		return err
	}
	if email == "" {
		email = claims.Subject
	}
	exp := claims.ExpiresAt.Time

	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	s.token = raw
	s.expires = exp
	s.refreshRequested = time.Time{}
	log.Debugf("got new access token, expires %s", exp.Format(time.RFC3339))
	return nil
}

// Unset forgets everything.
func (s *Store) Unset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsetLocked()
}

func (s *Store) unsetLocked() {
	s.token = ""
	s.email = ""
	s.expires = time.Time{}
	s.refreshRequested = time.Time{}
}

// Token returns the current token or "" if there is none or it expired. An
// expired token is dropped.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return ""
	}
	if s.expires.IsZero() {
		log.Warn("access token corrupt - dropping it")
		s.token = ""
		return ""
	}
	if !s.now().Before(s.expires) {
		log.Info("access token expired - dropping it")
		s.token = ""
		return ""
	}
	return s.token
}

// Email returns the email the token was issued for.
func (s *Store) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Expires returns the expiry of the current token.
func (s *Store) Expires() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expires
}

// ConsiderRefresh refreshes the token when it is inside the grace period and
// no attempt was made within the retry interval. Refresh failures are logged
// and otherwise ignored; the old token stays valid until it expires.
func (s *Store) ConsiderRefresh(ctx context.Context) {
	s.mu.Lock()
	if s.expires.IsZero() {
		s.mu.Unlock()
		return
	}

	now := s.now()
	remaining := s.expires.Sub(now)
	if remaining > RefreshGracePeriod {
		s.mu.Unlock()
		return
	}
	if remaining < time.Second {
		log.Info("access token expired - unsetting")
		s.unsetLocked()
		s.mu.Unlock()
		return
	}
	if !s.refreshRequested.IsZero() && now.Sub(s.refreshRequested) < RefreshRetryInterval {
		s.mu.Unlock()
		return
	}
	s.refreshRequested = now
	refresher := s.refresher
	email := s.email
	s.mu.Unlock()

	if err := s.refresh(ctx, refresher, email); err != nil {
		log.WithError(err).Warn("failed to refresh access token")
	}
}

func (s *Store) refresh(ctx context.Context, refresher Refresher, email string) error {
	if refresher == nil {
		return ErrNoRefresher
	}
	if email == "" {
		return ErrNoEmail
	}
	log.Debug("requesting access token refresh")
	raw, err := refresher(ctx)
	if err != nil {
		return err
	}
	return s.Set(email, raw)
}
