// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package token

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// signed returns an HS256 token expiring at exp. The key is irrelevant since
// the store never verifies signatures.
func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "someone"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestSet(t *testing.T) {
	c := &clock{now: epoch}
	s := New(WithClock(c.Now))

	raw := signed(t, epoch.Add(time.Hour))
	require.NoError(t, s.Set("a@b.c", raw))
	assert.Equal(t, raw, s.Token())
	assert.Equal(t, "a@b.c", s.Email())
	assert.True(t, s.Expires().Equal(epoch.Add(time.Hour)))
}

func TestSet_Errors(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Set("a@b.c", signed(t, time.Time{})), ErrNoExpiry)
	assert.ErrorIs(t, s.Set("a@b.c", "not-a-jwt"), ErrMalformedJWT)
	assert.Empty(t, s.Token())
}

func TestToken_Expired(t *testing.T) {
	c := &clock{now: epoch}
	s := New(WithClock(c.Now))
	require.NoError(t, s.Set("a@b.c", signed(t, epoch.Add(time.Minute))))

	c.now = epoch.Add(2 * time.Minute)
	assert.Empty(t, s.Token())

	// Dropped for good even if the clock went backwards.
	c.now = epoch
	assert.Empty(t, s.Token())
}

func TestConsiderRefresh(t *testing.T) {
	tests := []struct {
		name        string
		remaining   time.Duration
		lastAttempt time.Duration
		wantCalls   int
		wantToken   bool
	}{
		{name: "far from expiry", remaining: 2 * time.Hour, wantCalls: 0, wantToken: true},
		{name: "inside grace period", remaining: 10 * time.Minute, wantCalls: 1, wantToken: true},
		{name: "recent attempt", remaining: 10 * time.Minute, lastAttempt: 30 * time.Second, wantCalls: 0, wantToken: true},
		{name: "old attempt", remaining: 10 * time.Minute, lastAttempt: 2 * time.Minute, wantCalls: 1, wantToken: true},
		{name: "already expired", remaining: 500 * time.Millisecond, wantCalls: 0, wantToken: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{now: epoch}
			calls := 0
			fresh := signed(t, epoch.Add(3*time.Hour))
			s := New(WithClock(c.Now), WithRefresher(func(context.Context) (string, error) {
				calls++
				return fresh, nil
			}))
			require.NoError(t, s.Set("a@b.c", signed(t, epoch.Add(tt.remaining))))
			if tt.lastAttempt > 0 {
				s.refreshRequested = epoch.Add(-tt.lastAttempt)
			}

			s.ConsiderRefresh(context.Background())

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantToken, s.Token() != "")
			if tt.wantCalls > 0 {
				assert.Equal(t, fresh, s.Token())
				assert.Equal(t, "a@b.c", s.Email())
			}
		})
	}
}

func TestConsiderRefresh_FailureKeepsToken(t *testing.T) {
	c := &clock{now: epoch}
	calls := 0
	s := New(WithClock(c.Now), WithRefresher(func(context.Context) (string, error) {
		calls++
		return "", errors.New("backend down")
	}))
	old := signed(t, epoch.Add(10*time.Minute))
	require.NoError(t, s.Set("a@b.c", old))

	s.ConsiderRefresh(context.Background())
	assert.Equal(t, old, s.Token())

	// Second call inside the retry interval does not hit the backend again.
	c.now = epoch.Add(10 * time.Second)
	s.ConsiderRefresh(context.Background())
	assert.Equal(t, 1, calls)

	c.now = epoch.Add(RefreshRetryInterval + time.Second)
	s.ConsiderRefresh(context.Background())
	assert.Equal(t, 2, calls)
}

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	raw := signed(t, time.Now().Add(time.Hour))

	s := New()
	require.NoError(t, s.Set("a@b.c", raw))
	require.NoError(t, s.Save(path))

	loaded := New()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, raw, loaded.Token())
	assert.Equal(t, "a@b.c", loaded.Email())

	require.NoError(t, loaded.Forget(path))
	assert.Empty(t, loaded.Token())

	// Missing file is fine.
	require.NoError(t, New().Load(path))
}

func TestCredentialsPath_Env(t *testing.T) {
	t.Setenv("SMCTL_CREDENTIALS", "/tmp/creds.json")
	p, err := CredentialsPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/creds.json", p)
}

func TestSet_EmailFromSubject(t *testing.T) {
	s := New(WithClock((&clock{now: epoch}).Now))
	require.NoError(t, s.Set("", signed(t, epoch.Add(time.Hour))))
	assert.Equal(t, "someone", s.Email())
}
