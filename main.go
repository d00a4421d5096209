// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/command"
	"github.com/staranto/smctl/internal/config"
	"github.com/staranto/smctl/internal/dialog"
	mylog "github.com/staranto/smctl/internal/log"
	"github.com/staranto/smctl/internal/meta"
)

// version is set with -ldflags "-X main.version=..." at release time.
var version = "dev"

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version)
			return 0
		}
	}

	m, err := command.NewMeta(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	app := command.InitApp(ctx, m)

	before := m.Tokens.Token()
	runErr := app.Run(ctx, args)
	persistRefreshedToken(m, before)

	if runErr != nil {
		report(m, runErr)
		return 2
	}

	if k := m.Dialog.Kind(); k != dialog.None {
		fmt.Fprintf(os.Stderr, "%s: %s\n", k, m.Dialog.Message())
	}
	return 0
}

// report prints what the user should see for err. A dialog left open by the
// API layer already carries the user-facing message.
func report(m *meta.Meta, err error) {
	var re *api.RequestError
	if errors.As(err, &re) {
		log.Debugf("technical: %s", re.TechnicalMessage)
	}

	switch k := m.Dialog.Kind(); {
	case errors.Is(err, api.ErrNotLoggedIn):
		fmt.Fprintln(os.Stderr, api.NotLoggedInMessage)
	case k != dialog.None && m.Dialog.Message() != "":
		fmt.Fprintln(os.Stderr, m.Dialog.Message())
	default:
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
	}
}

// persistRefreshedToken writes the token back when it was refreshed during
// the run. Tokens from SMCTL_TOKEN are never written.
func persistRefreshedToken(m *meta.Meta, before string) {
	if m.Settings.Token != "" || m.CredentialsPath == "" || before == "" {
		return
	}
	after := m.Tokens.Token()
	if after == "" || after == before {
		return
	}
	if err := m.Tokens.Save(m.CredentialsPath); err != nil {
		log.WithError(err).Warn("failed to save refreshed token")
	}
}

func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	// Now scan through args and if there is not a @set, insert @defaults after
	// the command.
	idx := 2
	set := "defaults"
	// See if there is a @set specified. If so, that becomes are insertion point
	// and the @set entry is removed from args.
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			idx += i
			args = append(args[:idx:idx], args[idx+1:]...)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	for _, arg := range setArgs {
		parts := strings.Fields(arg)
		args = append(args[:idx:idx], append(parts, args[idx:]...)...)
		idx += len(parts)
	}

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, args)
	return args
}
