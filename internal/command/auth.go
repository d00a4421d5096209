// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/meta"
)

// Session describes the stored login.
type Session struct {
	Email     string `json:"email"`
	LoggedIn  bool   `json:"logged_in"`
	Expires   string `json:"expires,omitempty"`
	ExpiresIn string `json:"expires_in,omitempty"`
}

func session(m *meta.Meta) Session {
	s := Session{Email: m.Tokens.Email(), LoggedIn: m.Tokens.Token() != ""}
	if s.LoggedIn {
		exp := m.Tokens.Expires()
		s.Expires = exp.Format(time.RFC3339)
		s.ExpiresIn = humanize.Time(exp)
	}
	return s
}

func credentialsPath(m *meta.Meta) (string, error) {
	if m.CredentialsPath == "" {
		return "", errors.New("no credentials file available")
	}
	return m.CredentialsPath, nil
}

// SetTokenCommandAction stores an access token read from stdin.
func SetTokenCommandAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	path, err := credentialsPath(m)
	if err != nil {
		return err
	}
	raw, err := readSecret(cmd, "Access token: ")
	if err != nil {
		return err
	}
	if raw == "" {
		return errors.New("no token given")
	}
	if err := m.Tokens.Set(cmd.String("email"), raw); err != nil {
		return err
	}
	if err := m.Tokens.Save(path); err != nil {
		return err
	}

	s := session(m)
	fmt.Fprintf(errWriter(cmd), "Logged in as %s, expires %s.\n", s.Email, s.ExpiresIn)
	return nil
}

// LogoutCommandAction forgets the stored token.
func LogoutCommandAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	path, err := credentialsPath(m)
	if err != nil {
		return err
	}
	if err := m.Tokens.Forget(path); err != nil {
		return err
	}
	fmt.Fprintln(errWriter(cmd), "Logged out.")
	return nil
}

// WorkflowCommandAction consumes the workflow_status value of an e-mail
// confirmation or password-reset link and prints the resulting message.
func WorkflowCommandAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	if cmd.Args().Len() != 1 {
		return errors.New("expected exactly one workflow status value")
	}
	if !m.Dialog.LoadWorkflowStatus(cmd.Args().First()) {
		return errors.New("workflow status not understood")
	}
	snap := m.Dialog.Snapshot()
	_, err := fmt.Fprintf(writer(cmd), "%s: %s\n", snap.Kind, snap.Message)
	m.Dialog.Reset()
	return err
}

// AuthCommandBuilder groups the login related commands.
func AuthCommandBuilder(m *meta.Meta) *cli.Command {
	status := &QueryActionRunner[Session]{
		CommandName:  "auth status",
		SchemaType:   reflect.TypeOf(Session{}),
		DefaultAttrs: []string{"email", "logged_in", "expires"},
		FetchFn: func(_ context.Context, _ *cli.Command, m *meta.Meta) ([]Session, error) {
			return []Session{session(m)}, nil
		},
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "manage the stored login",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			{
				Name:      "set-token",
				Usage:     "store an access token read from stdin",
				UsageText: "smctl auth set-token [--email ADDRESS] < token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "email",
						Usage: "e-mail the token was issued for; taken from the token when unset",
					},
				},
				Action: SetTokenCommandAction,
			},
			(&QueryCommandBuilder{
				Name:      "status",
				Usage:     "show the stored login",
				UsageText: "smctl auth status [options]",
				Action:    status.Run,
				Meta:      m,
			}).Build(),
			{
				Name:      "logout",
				Usage:     "forget the stored token",
				UsageText: "smctl auth logout",
				Action:    LogoutCommandAction,
			},
			{
				Name:      "workflow",
				Usage:     "show the outcome of a confirmation or reset link",
				UsageText: "smctl auth workflow VALUE",
				Action:    WorkflowCommandAction,
			},
		},
	}
}
