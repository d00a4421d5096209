// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// Credentials is what `smctl auth set-token` leaves behind for later invocations.
type Credentials struct {
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// CredentialsPath resolves the credentials file. Precedence:
//  1. SMCTL_CREDENTIALS, if set and non-empty
//  2. os.UserConfigDir()/smctl/credentials.json
func CredentialsPath() (string, error) {
	if p, ok := os.LookupEnv("SMCTL_CREDENTIALS"); ok && p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "smctl", "credentials.json"), nil
}

// Save writes the store's token to path.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	creds := Credentials{Email: s.email, AccessToken: s.token}
	s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads path into the store. A missing file is not an error. An expired
// or malformed token is ignored with a log line.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return nil
	}
	if err := s.Set(creds.Email, creds.AccessToken); err != nil {
		log.WithError(err).Warnf("ignoring stored credentials in %s", path)
	}
	return nil
}

// Forget removes the credentials file and unsets the store.
func (s *Store) Forget(path string) error {
	s.Unset()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
