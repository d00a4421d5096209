// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/cache"
	"github.com/staranto/smctl/internal/meta"
)

// SelectionsCommandBuilder lists the modification, organism and technology
// combinations data exists for.
func SelectionsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Selection]{
		CommandName:  "selections",
		SchemaType:   reflect.TypeOf(api.Selection{}),
		DefaultAttrs: []string{"selection_id", "modomics_sname", "rna_name", "taxa_sname", "cto", "tech"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Selection, error) {
			var (
				sel []api.Selection
				err error
			)
			if taxa := cmd.Int("taxa"); taxa != 0 {
				sel, err = m.Catalog.SelectionsByTaxaID(ctx, taxa)
			} else {
				sel, err = m.Catalog.Selections.Get(ctx)
			}
			if err != nil || cmd.String("rna") == "" {
				return sel, err
			}
			mods, err := modificationIDsOfRna(ctx, m, cmd.String("rna"))
			if err != nil {
				return nil, err
			}
			return slices.DeleteFunc(sel, func(s api.Selection) bool { return !mods[s.ModificationID] }), nil
		},
	}
	return (&QueryCommandBuilder{
		Name:      "selections",
		Usage:     "list modification/organism/technology selections",
		UsageText: "smctl selections [--taxa ID] [--rna NAME] [options]",
		Flags:     []cli.Flag{NewTaxaFlag("selections", m.Config.Source, false), newRnaFlag()},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

func newRnaFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "rna",
		Usage: "only modifications of this RNA, e.g. mRNA or rRNA",
	}
}

// modificationIDsOfRna returns the modifications with data for rna. An RNA
// without any is an error, it is most likely misspelled.
func modificationIDsOfRna(ctx context.Context, m *meta.Meta, rna string) (map[int]bool, error) {
	types, err := m.Catalog.ModificationTypesByRnaName(ctx, rna)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no modifications of RNA %q", rna)
	}
	ids := make(map[int]bool, len(types))
	for _, t := range types {
		ids[t.ModificationID] = true
	}
	return ids, nil
}

// TaxaCommandBuilder lists organisms.
func TaxaCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Taxa]{
		CommandName:  "taxa",
		SchemaType:   reflect.TypeOf(api.Taxa{}),
		DefaultAttrs: []string{"taxa_id", "taxa_sname", "taxa_name", "kingdom"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Taxa, error) {
			if cmd.Bool("with-data") {
				return m.Catalog.SelectionTaxa.Get(ctx)
			}
			return m.Catalog.Taxa.Get(ctx)
		},
	}
	return (&QueryCommandBuilder{
		Name:      "taxa",
		Usage:     "list organisms",
		UsageText: "smctl taxa [--with-data] [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "with-data",
				Usage: "only organisms with at least one selection",
			},
		},
		Action: runner.Run,
		Meta:   m,
	}).Build()
}

// ModomicsCommandBuilder lists the MODOMICS reference.
func ModomicsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Modomics]{
		CommandName:  "modomics",
		SchemaType:   reflect.TypeOf(api.Modomics{}),
		DefaultAttrs: []string{"id", "short_name", "name", "moiety"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Modomics, error) {
			all, err := m.Catalog.Modomics.Get(ctx)
			if err != nil || cmd.String("rna") == "" {
				return all, err
			}
			types, err := m.Catalog.ModificationTypesByRnaName(ctx, cmd.String("rna"))
			if err != nil {
				return nil, err
			}
			names := map[string]bool{}
			for _, t := range types {
				names[t.ModomicsSname] = true
			}
			out := make([]api.Modomics, 0, len(names))
			for _, x := range all {
				if names[x.ShortName] {
					out = append(out, x)
				}
			}
			return out, nil
		},
	}
	return (&QueryCommandBuilder{
		Name:      "modomics",
		Usage:     "list MODOMICS modifications",
		UsageText: "smctl modomics [--rna NAME] [options]",
		Flags:     []cli.Flag{newRnaFlag()},
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// RnaTypesCommandBuilder lists RNA types.
func RnaTypesCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.RnaType]{
		CommandName:  "rna-types",
		SchemaType:   reflect.TypeOf(api.RnaType{}),
		DefaultAttrs: []string{"id", "label"},
		FetchFn: func(ctx context.Context, _ *cli.Command, m *meta.Meta) ([]api.RnaType, error) {
			return m.Catalog.RnaTypes.Get(ctx)
		},
	}
	return (&QueryCommandBuilder{
		Name:      "rna-types",
		Usage:     "list RNA types",
		UsageText: "smctl rna-types [options]",
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// MethodsCommandBuilder lists detection methods.
func MethodsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.DetectionMethod]{
		CommandName:  "methods",
		SchemaType:   reflect.TypeOf(api.DetectionMethod{}),
		DefaultAttrs: []string{"id", "cls", "meth"},
		FetchFn: func(ctx context.Context, _ *cli.Command, m *meta.Meta) ([]api.DetectionMethod, error) {
			return m.Catalog.DetectionMethods.Get(ctx)
		},
	}
	return (&QueryCommandBuilder{
		Name:      "methods",
		Usage:     "list detection methods",
		UsageText: "smctl methods [options]",
		Action:    runner.Run,
		Meta:      m,
	}).Build()
}

// DatasetsCommandBuilder lists all or the user's datasets.
func DatasetsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Dataset]{
		CommandName:  "datasets",
		SchemaType:   reflect.TypeOf(api.Dataset{}),
		DefaultAttrs: []string{"dataset_id", "dataset_title", "modomics_sname", "taxa_sname", "cto", "tech"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Dataset, error) {
			var (
				datasets []api.Dataset
				err      error
			)
			switch {
			case cmd.Bool("mine"):
				datasets, err = m.Catalog.MyDatasets.Get(ctx)
			case cmd.Int("taxa") != 0:
				datasets, err = m.Catalog.DatasetsByTaxaID(ctx, cmd.Int("taxa"))
			default:
				datasets, err = m.Catalog.AllDatasets.Get(ctx)
			}
			if err != nil {
				return nil, err
			}
			if cmd.Bool("mine") && cmd.Int("taxa") != 0 {
				taxa := cmd.Int("taxa")
				kept := datasets[:0:0]
				for _, d := range datasets {
					if d.TaxaID == taxa {
						kept = append(kept, d)
					}
				}
				datasets = kept
			}
			return matchDatasets(cmd.String("match"), datasets), nil
		},
	}
	return (&QueryCommandBuilder{
		Name:      "datasets",
		Usage:     "list datasets",
		UsageText: "smctl datasets [--mine] [--taxa ID] [--match TEXT] [options]",
		Flags: []cli.Flag{
			NewMineFlag(),
			NewTaxaFlag("datasets", m.Config.Source, false),
			&cli.StringFlag{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "fuzzy match dataset and project titles, best match first",
			},
		},
		Action: runner.Run,
		Meta:   m,
	}).Build()
}

// ProjectsCommandBuilder lists all or the user's projects.
func ProjectsCommandBuilder(m *meta.Meta) *cli.Command {
	runner := &QueryActionRunner[api.Project]{
		CommandName:  "projects",
		SchemaType:   reflect.TypeOf(api.Project{}),
		DefaultAttrs: []string{"project_id", "project_title", "contact_name", "contact_institution"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]api.Project, error) {
			ids := cmd.StringSlice("id")
			if len(ids) > 0 {
				byID := m.Catalog.AllProjectsByID
				if cmd.Bool("mine") {
					byID = m.Catalog.MyProjectsByID
				}
				return projectsByID(ctx, byID, ids)
			}
			if cmd.Bool("mine") {
				return m.Catalog.MyProjects.Get(ctx)
			}
			return m.Catalog.AllProjects.Get(ctx)
		},
	}
	return (&QueryCommandBuilder{
		Name:      "projects",
		Usage:     "list projects",
		UsageText: "smctl projects [--mine] [--id ID...] [options]",
		Flags: []cli.Flag{
			NewMineFlag(),
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "only this project, may be repeated",
			},
		},
		Action: runner.Run,
		Meta:   m,
	}).Build()
}

// projectsByID looks projects up in the given index, in the order asked.
func projectsByID(ctx context.Context, byID *cache.Cache[map[string]api.Project], ids []string) ([]api.Project, error) {
	index, err := byID.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.Project, 0, len(ids))
	for _, id := range ids {
		p, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("unknown project %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}
