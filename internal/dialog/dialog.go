// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package dialog holds the shared dialog state. API helpers write error and
// login prompts into it; the command layer reads it back and prints it.
package dialog

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/apex/log"
)

// Kind identifies which dialog should be shown.
type Kind string

const (
	None                 Kind = "NONE"
	Login                Kind = "LOGIN"
	Alert                Kind = "ALERT"
	ErrorAlert           Kind = "ERROR_ALERT"
	RegisterEnterData    Kind = "REGISTER_ENTER_DATA"
	ResetPasswordRequest Kind = "RESET_PASSWORD_REQUEST"
	ChangePassword       Kind = "CHANGE_PASSWORD"
	Confirm              Kind = "CONFIRM"
)

// Patch is a partial update of a State. Nil fields are left alone.
type Patch struct {
	Kind    *Kind
	Email   *string
	Token   *string
	Message *string
}

// WithKind returns a Patch that only sets the dialog kind.
func WithKind(k Kind) Patch {
	return Patch{Kind: &k}
}

// WithEmail returns a copy of p that also sets the email.
func (p Patch) WithEmail(email string) Patch {
	p.Email = &email
	return p
}

// State is the dialog state shared by one client session.
type State struct {
	mu      sync.Mutex
	kind    Kind
	email   string
	token   string
	message string
	confirm func()
}

// New returns a State showing no dialog.
func New() *State {
	return &State{kind: None}
}

// Snapshot is a read-only copy of a State.
type Snapshot struct {
	Kind    Kind
	Email   string
	Token   string
	Message string
}

// Snapshot returns the current values.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Kind:    s.kind,
		Email:   s.email,
		Token:   s.token,
		Message: s.message,
	}
}

// Kind returns the current dialog kind.
func (s *State) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// Message returns the current message.
func (s *State) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Show sets kind and message in one step.
func (s *State) Show(k Kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = k
	s.message = message
}

// Apply applies each patch in order.
func (s *State) Apply(patches ...Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range patches {
		if p.Kind != nil {
			s.kind = *p.Kind
		}
		if p.Email != nil {
			s.email = *p.Email
		}
		if p.Token != nil {
			s.token = *p.Token
		}
		if p.Message != nil {
			s.message = *p.Message
		}
	}
}

// AskConfirmation shows a CONFIRM dialog that runs fn once confirmed.
func (s *State) AskConfirmation(message string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = Confirm
	s.message = message
	s.confirm = fn
}

// Confirm runs the pending confirmation callback, if any. The callback is
// cleared and the dialog closed before it runs.
func (s *State) Confirm() {
	s.mu.Lock()
	fn := s.confirm
	if fn == nil {
		s.mu.Unlock()
		return
	}
	s.confirm = nil
	s.kind = None
	s.mu.Unlock()

	fn()
}

// Reset closes any dialog and clears all fields.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = None
	s.email = ""
	s.token = ""
	s.message = ""
	s.confirm = nil
}

// workflowStatus is the payload of the workflow_status cookie the backend
// sets after e-mail confirmation and password-reset links.
type workflowStatus struct {
	Operation string `json:"operation"`
	Result    string `json:"result"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// LoadWorkflowStatus consumes a workflow_status cookie value. raw may be
// URL-encoded. It returns true if the value was understood.
func (s *State) LoadWorkflowStatus(raw string) bool {
	if raw == "" {
		return false
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	var ws workflowStatus
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ws); err != nil {
		log.WithError(err).Warn("unreadable workflow_status")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ws.Operation {
	case "user_registration":
		s.email = ws.Email
		if ws.Result == "success" {
			s.message = "Your registration was successful - please login."
			s.kind = Login
		} else {
			s.message = "Something went wrong. Please check the link you tried to use."
			s.kind = Alert
		}
	case "password_reset":
		s.email = ws.Email
		s.token = ws.Token
		s.kind = ChangePassword
	default:
		log.Warnf("unexpected operation in workflow_status: %s", raw)
		return false
	}

	return true
}
