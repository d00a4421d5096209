// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/command"
	"github.com/staranto/smctl/internal/meta"
)

// Minimal doc generator:
// - Walks the smctl command tree
// - Generates:
//   - docs/commands/smctl-<cmd>.md from usage and flag help
//   - docs/man/share/man1/smctl-<cmd>.1 via md2man
//   - docs/tldr/smctl-<cmd>.md from the usage text

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, d := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating output dir %s: %v", d, err)
		}
	}

	app := command.InitApp(context.Background(), &meta.Meta{})

	var processed int
	for _, p := range pages(app, nil) {
		md := []byte(p.markdown())
		name := p.fileName()

		if err := writeFileIfChanged(filepath.Join(commandsDir, name+".md"), md, writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", name, err)
		}
		if err := writeFileIfChanged(filepath.Join(manOutDir, name+".1"), md2man.Render(md), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", name, err)
		}
		if err := writeFileIfChanged(filepath.Join(tldrOutDir, name+".md"), []byte(p.tldr()), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", name, err)
		}
		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// page is one leaf command.
type page struct {
	path []string
	cmd  *cli.Command
}

// pages flattens the command tree. Group commands without an action are
// documented through their subcommands.
func pages(root *cli.Command, parent []string) []page {
	var out []page
	for _, c := range root.Commands {
		if c.Hidden {
			continue
		}
		path := append(append([]string{}, parent...), c.Name)
		if len(c.Commands) > 0 {
			out = append(out, pages(c, path)...)
			continue
		}
		out = append(out, page{path: path, cmd: c})
	}
	return out
}

func (p page) fileName() string {
	return "smctl-" + strings.Join(p.path, "-")
}

func (p page) title() string {
	return "smctl " + strings.Join(p.path, " ")
}

func (p page) usageText() string {
	if p.cmd.UsageText != "" {
		return p.cmd.UsageText
	}
	return p.title() + " [options]"
}

func (p page) markdown() string {
	var b strings.Builder
	b.WriteString("# " + p.title() + "\n\n")
	b.WriteString("## Short description\n\n")
	b.WriteString(p.cmd.Usage + "\n\n")
	b.WriteString("## Synopsis\n\n")
	b.WriteString("```\n" + p.usageText() + "\n```\n\n")

	var flags []string
	for _, f := range p.cmd.Flags {
		if v, ok := f.(interface{ IsVisible() bool }); ok && !v.IsVisible() {
			continue
		}
		flags = append(flags, flagLine(f))
	}
	if len(flags) > 0 {
		b.WriteString("## Flags\n\n")
		for _, l := range flags {
			b.WriteString("- " + l + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## See also\n\n")
	b.WriteString("`smctl " + strings.Join(p.path, " ") + " --help`\n")
	return b.String()
}

func flagLine(f cli.Flag) string {
	names := make([]string, 0, len(f.Names()))
	for _, n := range f.Names() {
		if len(n) == 1 {
			names = append(names, "`-"+n+"`")
		} else {
			names = append(names, "`--"+n+"`")
		}
	}
	line := strings.Join(names, ", ")
	if u, ok := f.(interface{ GetUsage() string }); ok && u.GetUsage() != "" {
		line += ": " + u.GetUsage()
	}
	return line
}

func (p page) tldr() string {
	var b strings.Builder
	b.WriteString("# " + p.fileName() + "\n\n")
	if p.cmd.Usage != "" {
		b.WriteString("> " + strings.ToUpper(p.cmd.Usage[:1]) + p.cmd.Usage[1:] + ".\n")
	} else {
		b.WriteString("> " + p.title() + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/smctl.\n\n")

	b.WriteString("- " + "Run the command:\n\n")
	b.WriteString("`" + sanitizeCommand(p.usageText()) + "`\n\n")
	b.WriteString("- Show help for the command:\n\n")
	b.WriteString("`" + p.title() + " --help`\n")
	return b.String()
}

func sanitizeCommand(s string) string {
	// Compress runs of whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
