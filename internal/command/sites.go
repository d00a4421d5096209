// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/meta"
)

// SiteContext is the genomic sequence around a site.
type SiteContext struct {
	Chrom   string     `json:"chrom"`
	Start   int64      `json:"start"`
	End     int64      `json:"end"`
	Strand  api.Strand `json:"strand"`
	Context string     `json:"context"`
}

// siteFlags locate one modification site.
func siteFlags(ns string, source string) []cli.Flag {
	return []cli.Flag{
		NewTaxaFlag(ns, source, true),
		&cli.IntFlag{
			Name:  "id",
			Usage: "modification record ID, used in messages",
		},
		&cli.StringFlag{
			Name:     "chrom",
			Usage:    "chromosome",
			Required: true,
		},
		&cli.Int64Flag{
			Name:     "start",
			Usage:    "start position",
			Required: true,
		},
		&cli.Int64Flag{
			Name:  "end",
			Usage: "end position; start+1 when unset",
		},
		&cli.StringFlag{
			Name:  "strand",
			Usage: `strand, "+", "-" or "."`,
			Value: string(api.StrandPlus),
			Validator: func(value string) error {
				return FlagValidators(value, StrandValidator)
			},
		},
	}
}

// siteOf collects the site flags into a Modification.
func siteOf(cmd *cli.Command) api.Modification {
	m := api.Modification{
		ID:     cmd.Int("id"),
		TaxaID: cmd.Int("taxa"),
		Chrom:  cmd.String("chrom"),
		Start:  cmd.Int64("start"),
		End:    cmd.Int64("end"),
		Strand: api.Strand(cmd.String("strand")),
	}
	if m.End <= m.Start {
		m.End = m.Start + 1
	}
	return m
}

func siteCommand(name, usage, usageText string, flags []cli.Flag, action cli.ActionFunc, m *meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      name,
		Usage:     usage,
		UsageText: usageText,
		Flags:     append(siteFlags("sites", m.Config.Source), flags...),
		Action:    action,
		Meta:      m,
	}).Build()
}

// SitesCommandBuilder groups the queries about a single modification site.
func SitesCommandBuilder(m *meta.Meta) *cli.Command {
	target := &QueryActionRunner[api.Bed6Record]{
		CommandName:  "sites target",
		SchemaType:   reflect.TypeOf(api.Bed6Record{}),
		DefaultAttrs: []string{"chrom", "start", "end", "name", "score", "strand"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Bed6Record, error) {
			return m.Client.TargetSites(ctx, siteOf(cmd), cmd.String("type"))
		},
	}

	genomic := &QueryActionRunner[SiteContext]{
		CommandName:  "sites context",
		SchemaType:   reflect.TypeOf(SiteContext{}),
		DefaultAttrs: []string{"chrom", "start", "end", "strand", "context"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]SiteContext, error) {
			site := siteOf(cmd)
			seq, err := m.Client.GenomicContext(ctx, site, cmd.Int("bases"))
			if err != nil {
				return nil, err
			}
			return []SiteContext{{
				Chrom:   site.Chrom,
				Start:   site.Start,
				End:     site.End,
				Strand:  site.Strand,
				Context: seq,
			}}, nil
		},
	}

	sitewise := &QueryActionRunner[api.SiteWiseInfo]{
		CommandName:  "sites sitewise",
		SchemaType:   reflect.TypeOf(api.SiteWiseInfo{}),
		DefaultAttrs: []string{"dataset_id", "short_name", "rna", "cto", "tech", "coverage", "frequency"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.SiteWiseInfo, error) {
			return m.Client.SiteWise(ctx, siteOf(cmd))
		},
	}

	return &cli.Command{
		Name:  "sites",
		Usage: "query a single modification site",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			siteCommand("target", "list predicted target sites around a site",
				"smctl sites target --taxa ID --chrom C --start N [--type MIRNA] [options]",
				[]cli.Flag{&cli.StringFlag{
					Name:  "type",
					Usage: `target type, "MIRNA" or "RBP"`,
					Value: "MIRNA",
					Validator: func(value string) error {
						if value != "MIRNA" && value != "RBP" {
							return fmt.Errorf("must be %q or %q", "MIRNA", "RBP")
						}
						return nil
					},
				}},
				target.Run, m),
			siteCommand("context", "print the genomic sequence around a site",
				"smctl sites context --taxa ID --chrom C --start N [--bases N] [options]",
				[]cli.Flag{&cli.IntFlag{
					Name:  "bases",
					Usage: "number of bases on each side",
					Value: 12,
					Validator: func(value int) error {
						return FlagValidators(value, PositiveValidator)
					},
				}},
				genomic.Run, m),
			siteCommand("sitewise", "list what every dataset reports for a site",
				"smctl sites sitewise --taxa ID --chrom C --start N [options]",
				nil, sitewise.Run, m),
		},
	}
}
