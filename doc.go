// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// smctl is the main package for the smctl command line tool, a client of the
// Sci-ModoM RNA modification database. It wires the CLI, delegates to
// internal packages, and serves as the entry point.
package main
