// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/meta"
	"github.com/staranto/smctl/internal/search"
)

// searchFlags are the flags describing search parameters. They are shared by
// search and export-link.
func searchFlags(ns string, source string) []cli.Flag {
	return []cli.Flag{
		NewTaxaFlag(ns, source, true),
		newRnaTypeFlag(ns, source),
		&cli.IntFlag{
			Name:  "modification",
			Usage: "modification ID",
		},
		&cli.IntFlag{
			Name:  "organism",
			Usage: "organism (cell, tissue or organism) ID",
		},
		&cli.IntSliceFlag{
			Name:  "technology",
			Usage: "technology ID, may be repeated",
		},
		&cli.StringFlag{
			Name:  "by",
			Usage: `search mode, "Modification" or "Gene/Chrom"`,
			Value: string(search.ByModification),
			Validator: func(value string) error {
				return FlagValidators(value, SearchByValidator)
			},
		},
		&cli.StringFlag{
			Name:  "gene",
			Usage: "gene name prefix",
		},
		&cli.StringSliceFlag{
			Name:  "biotype",
			Usage: "gene biotype, may be repeated",
		},
		&cli.StringSliceFlag{
			Name:  "feature",
			Usage: "genomic feature, may be repeated",
		},
		&cli.StringFlag{
			Name:  "chrom",
			Usage: "chromosome",
		},
		&cli.Int64Flag{
			Name:  "start",
			Usage: "first position on the chromosome",
		},
		&cli.Int64Flag{
			Name:  "end",
			Usage: "last position on the chromosome",
		},
		&cli.StringSliceFlag{
			Name:  "order",
			Usage: "backend sort as field[:asc|:desc], may be repeated",
			Validator: func(value []string) error {
				return FlagValidators(value, SortMetaValidator)
			},
		},
	}
}

// searchIDs collects the search flags.
func searchIDs(cmd *cli.Command) search.IDs {
	ids := search.IDs{
		TaxaID:         cmd.Int("taxa"),
		ModificationID: cmd.Int("modification"),
		OrganismID:     cmd.Int("organism"),
		TechnologyIDs:  cmd.IntSlice("technology"),
		RnaType:        cmd.String("rna-type"),
		SearchBy:       search.By(cmd.String("by")),
		Gene:           cmd.String("gene"),
		Biotypes:       cmd.StringSlice("biotype"),
		Features:       cmd.StringSlice("feature"),
		Chrom:          cmd.String("chrom"),
	}
	if cmd.IsSet("start") {
		start := cmd.Int64("start")
		ids.ChromStart = &start
	}
	if cmd.IsSet("end") {
		end := cmd.Int64("end")
		ids.ChromEnd = &end
	}
	return ids
}

func sortMetas(cmd *cli.Command) []search.SortMeta {
	var metas []search.SortMeta
	for _, s := range cmd.StringSlice("order") {
		metas = append(metas, search.ParseSortMeta(s))
	}
	return metas
}

// SearchCommandAction runs a modification query and emits the records.
func SearchCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("first-record") && !cmd.IsSet("max-records") {
		return errors.New("--first-record requires --max-records")
	}
	runner := &QueryActionRunner[api.Modification]{
		CommandName:  "search",
		SchemaType:   reflect.TypeOf(api.Modification{}),
		DefaultAttrs: []string{"chrom", "start", "end", "name", "strand", "coverage", "frequency", "gene_name", "dataset_id"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Modification, error) {
			p, err := search.Resolve(ctx, m.Catalog, searchIDs(cmd))
			if err != nil {
				return nil, err
			}

			var page *search.Page
			if cmd.IsSet("max-records") {
				page = &search.Page{
					FirstRecord: cmd.Int("first-record"),
					MaxRecords:  cmd.Int("max-records"),
				}
			}

			resp, err := search.Query(ctx, m.Client, p, page, sortMetas(cmd))
			if err != nil {
				return nil, err
			}
			log.Debugf("search returned %d of %d records", len(resp.Records), resp.TotalRecords)
			if len(resp.Records) < resp.TotalRecords {
				fmt.Fprintf(errWriter(cmd), "showing %s of %s records\n",
					humanize.Comma(int64(len(resp.Records))), humanize.Comma(int64(resp.TotalRecords)))
			}
			return resp.Records, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// SearchCommandBuilder constructs the search command.
func SearchCommandBuilder(m *meta.Meta) *cli.Command {
	flags := append(searchFlags("search", m.Config.Source),
		&cli.IntFlag{
			Name:  "first-record",
			Usage: "index of the first record to return",
		},
		NameSpacedValueChainFlagFromConfigFile("search", m.Config.Source, &cli.IntFlag{
			Name:  "max-records",
			Usage: "page size; all records when unset",
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		}),
	)
	return (&QueryCommandBuilder{
		Name:      "search",
		Usage:     "search modification sites",
		UsageText: "smctl search --taxa ID [--modification ID] [--organism ID] [--technology ID...] [options]",
		Flags:     flags,
		Action:    SearchCommandAction,
		Meta:      m,
	}).Build()
}

// ExportLinkCommandAction prints the CSV download link of a search.
func ExportLinkCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	p, err := search.Resolve(ctx, m.Catalog, searchIDs(cmd))
	if err != nil {
		return err
	}
	link, err := search.ExportLink(p, sortMetas(cmd), m.Client.URL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer(cmd), link)
	return err
}

// ExportLinkCommandBuilder constructs the export-link command.
func ExportLinkCommandBuilder(m *meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "export-link",
		Usage:     "print the CSV download link of a search",
		UsageText: "smctl export-link --taxa ID [search options]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags:  searchFlags("export-link", m.Config.Source),
		Action: ExportLinkCommandAction,
	}
}
