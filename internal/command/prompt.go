// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/smctl/internal/meta"
)

var ErrAborted = errors.New("aborted")

func newYesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "do not ask for confirmation",
	}
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// confirm shows message as a confirmation dialog and runs fn once the user
// agrees, or right away with --yes.
func confirm(cmd *cli.Command, m *meta.Meta, message string, fn func() error) error {
	var err error
	m.Dialog.AskConfirmation(message, func() { err = fn() })

	if !cmd.Bool("yes") {
		fmt.Fprintf(errWriter(cmd), "%s [y/N] ", message)
		answer, _ := bufio.NewReader(reader(cmd)).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			m.Dialog.Reset()
			return ErrAborted
		}
	}

	m.Dialog.Confirm()
	return err
}

// readSecret reads one line from the command's reader. The terminal does not
// echo it when stdin is a terminal.
func readSecret(cmd *cli.Command, prompt string) (string, error) {
	r := reader(cmd)
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(errWriter(cmd), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(errWriter(cmd))
		if err != nil {
			return "", fmt.Errorf("failed to read from terminal: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
