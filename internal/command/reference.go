// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/meta"
)

// Value is one row of a plain string list such as biotypes or genes.
type Value struct {
	Value string `json:"value"`
}

func values(in []string) []Value {
	out := make([]Value, 0, len(in))
	for _, s := range in {
		out = append(out, Value{Value: s})
	}
	return out
}

func newRnaTypeFlag(ns string, source string) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, source, &cli.StringFlag{
		Name:  "rna-type",
		Usage: "RNA type, e.g. WTS",
		Value: "WTS",
	})
}

// AssembliesCommandBuilder lists the assemblies of an organism.
func AssembliesCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Assembly]{
		CommandName:  "assemblies",
		SchemaType:   reflect.TypeOf(api.Assembly{}),
		DefaultAttrs: []string{"id", "name"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Assembly, error) {
			return m.Client.Assemblies(ctx, cmd.Int("taxa"))
		},
	}
	return (&QueryCommandBuilder{
		Name:      "assemblies",
		Usage:     "list genome assemblies of an organism",
		UsageText: "smctl assemblies --taxa ID [options]",
		Flags:     []cli.Flag{NewTaxaFlag("assemblies", m.Config.Source, true)},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// ChromsCommandBuilder lists the chromosomes of an organism's current
// assembly.
func ChromsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Chrom]{
		CommandName:  "chroms",
		SchemaType:   reflect.TypeOf(api.Chrom{}),
		DefaultAttrs: []string{"chrom", "size"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Chrom, error) {
			return m.Client.Chroms(ctx, cmd.Int("taxa"))
		},
	}
	return (&QueryCommandBuilder{
		Name:      "chroms",
		Usage:     "list chromosomes of an organism",
		UsageText: "smctl chroms --taxa ID [options]",
		Flags:     []cli.Flag{NewTaxaFlag("chroms", m.Config.Source, true)},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// BiotypesCommandBuilder lists gene biotypes.
func BiotypesCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[Value]{
		CommandName:  "biotypes",
		SchemaType:   reflect.TypeOf(Value{}),
		DefaultAttrs: []string{"value:biotype"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]Value, error) {
			out, err := m.Client.BioTypes(ctx, cmd.String("rna-type"))
			return values(out), err
		},
	}
	return (&QueryCommandBuilder{
		Name:      "biotypes",
		Usage:     "list gene biotypes of an RNA type",
		UsageText: "smctl biotypes [--rna-type TYPE] [options]",
		Flags:     []cli.Flag{newRnaTypeFlag("biotypes", m.Config.Source)},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// FeaturesCommandBuilder lists genomic features.
func FeaturesCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[Value]{
		CommandName:  "features",
		SchemaType:   reflect.TypeOf(Value{}),
		DefaultAttrs: []string{"value:feature"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]Value, error) {
			out, err := m.Client.Features(ctx, cmd.String("rna-type"))
			return values(out), err
		},
	}
	return (&QueryCommandBuilder{
		Name:      "features",
		Usage:     "list genomic features of an RNA type",
		UsageText: "smctl features [--rna-type TYPE] [options]",
		Flags:     []cli.Flag{newRnaTypeFlag("features", m.Config.Source)},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// GenesCommandBuilder lists the genes with data in a set of selections.
func GenesCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[Value]{
		CommandName:  "genes",
		SchemaType:   reflect.TypeOf(Value{}),
		DefaultAttrs: []string{"value:gene"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]Value, error) {
			ids := cmd.IntSlice("selection")
			if taxa := cmd.Int("taxa"); len(ids) == 0 && taxa != 0 {
				selections, err := m.Catalog.SelectionsByTaxaID(ctx, taxa)
				if err != nil {
					return nil, err
				}
				for _, s := range selections {
					ids = append(ids, s.SelectionID)
				}
			}
			if len(ids) == 0 {
				return nil, errors.New("either --selection or --taxa is required")
			}
			out, err := m.Client.Genes(ctx, ids)
			return values(out), err
		},
	}
	return (&QueryCommandBuilder{
		Name:      "genes",
		Usage:     "list genes with data in the given selections",
		UsageText: "smctl genes (--selection ID... | --taxa ID) [options]",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:  "selection",
				Usage: "selection ID, may be repeated",
			},
			NewTaxaFlag("genes", m.Config.Source, false),
		},
		Action: runner.Run,
		Meta:   m,
	}).Build()
}
