// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/cacheutil"
	"github.com/staranto/smctl/internal/meta"
)

// CachePurgeCommandAction removes stale cache entries, or all of them with
// --all.
func CachePurgeCommandAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	dir, ok := cacheutil.Dir()
	if !ok {
		return errors.New("no cache directory available")
	}
	n, err := cacheutil.New(dir, m.Settings.CacheMaxAge).Purge(cmd.Bool("all"))
	if err != nil {
		return err
	}
	fmt.Fprintf(errWriter(cmd), "Removed %d cache entries from %s.\n", n, dir)
	return nil
}

// CacheCommandBuilder groups the response cache commands.
func CacheCommandBuilder(m *meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "manage the response cache",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			{
				Name:      "purge",
				Usage:     "remove stale cache entries",
				UsageText: "smctl cache purge [--all]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "remove every entry, not only stale ones",
					},
				},
				Action: CachePurgeCommandAction,
			},
			{
				Name:      "dir",
				Usage:     "print the cache directory",
				UsageText: "smctl cache dir",
				Action: func(_ context.Context, cmd *cli.Command) error {
					dir, ok := cacheutil.Dir()
					if !ok {
						return errors.New("no cache directory available")
					}
					_, err := fmt.Fprintln(writer(cmd), dir)
					return err
				},
			},
		},
	}
}
