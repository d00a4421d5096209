// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for smctl. It wires flags,
// validators, actions, and shell completion for subcommands, and builds the
// session every command shares.
package command
