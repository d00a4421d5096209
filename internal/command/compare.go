// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/comparison"
	"github.com/staranto/smctl/internal/meta"
)

// compareAttrs are the default columns per operation. Subtract has no B side.
func compareAttrs(op comparison.Operation) []string {
	a := []string{
		"a.chrom:chrom", "a.start:start", "a.end:end", "a.name:name",
		"a.strand:strand", "a.coverage:coverage", "a.frequency:frequency", "a.eufid:eufid",
	}
	if op == comparison.Subtract {
		return a
	}
	b := []string{
		"b.chrom:b_chrom", "b.start:b_start", "b.end:b_end", "b.name:b_name",
		"b.strand:b_strand", "b.coverage:b_coverage", "b.frequency:b_frequency", "b.eufid:b_eufid",
	}
	a = append(a, b...)
	if op == comparison.Closest {
		a = append(a, "distance")
	}
	return a
}

// lookupDatasets resolves dataset IDs against the public catalog. Unknown
// IDs are an error.
func lookupDatasets(ctx context.Context, m *meta.Meta, ids []string) ([]api.Dataset, error) {
	out := make([]api.Dataset, 0, len(ids))
	var errs []error
	for _, id := range ids {
		d, ok, err := m.Catalog.Dataset(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs = append(errs, fmt.Errorf("unknown dataset %q", id))
			continue
		}
		out = append(out, d)
	}
	return out, errors.Join(errs...)
}

// referenceStep resolves the reference datasets. The taxon defaults to the
// one of the first dataset.
func referenceStep(ctx context.Context, cmd *cli.Command, m *meta.Meta) (comparison.Reference, error) {
	ref := comparison.Reference{TaxaID: cmd.Int("taxa")}

	datasets, err := lookupDatasets(ctx, m, cmd.StringSlice("reference"))
	if err != nil {
		return ref, err
	}
	if ref.TaxaID == 0 && len(datasets) > 0 {
		ref.TaxaID = datasets[0].TaxaID
	}
	for _, d := range datasets {
		if d.TaxaID != ref.TaxaID {
			return ref, fmt.Errorf("dataset %s is not of taxa %d", d.DatasetID, ref.TaxaID)
		}
	}
	ref.Datasets = datasets

	sameTaxa, err := m.Catalog.DatasetsByTaxaID(ctx, ref.TaxaID)
	if err != nil {
		return ref, err
	}
	for _, d := range sameTaxa {
		if !slices.ContainsFunc(datasets, func(x api.Dataset) bool { return x.DatasetID == d.DatasetID }) {
			ref.RemainingDatasets = append(ref.RemainingDatasets, d)
		}
	}
	return ref, nil
}

// targetStep resolves what the reference is compared against: an uploaded
// file or datasets of the same taxon.
func targetStep(ctx context.Context, cmd *cli.Command, m *meta.Meta, ref comparison.Reference) (comparison.Target, error) {
	if src := cmd.String("upload"); src != "" {
		payload, err := m.Opener.Open(ctx, src)
		if err != nil {
			return comparison.Target{}, err
		}
		uploaded, err := m.Client.UploadTemporaryDataset(ctx, payload)
		if err != nil {
			return comparison.Target{}, err
		}
		log.Debugf("uploaded %s as %s", uploaded.Name, uploaded.ID)
		return comparison.Target{Upload: &comparison.Upload{UploadedFile: uploaded, IsEUF: cmd.Bool("euf")}}, nil
	}

	ids := cmd.StringSlice("comparison")
	if len(ids) == 0 {
		return comparison.Target{}, errors.New("either --comparison or --upload is required")
	}
	var out []api.Dataset
	for _, id := range ids {
		i := slices.IndexFunc(ref.RemainingDatasets, func(d api.Dataset) bool { return d.DatasetID == id })
		if i < 0 {
			return comparison.Target{}, fmt.Errorf("dataset %q is not a comparison candidate for taxa %d", id, ref.TaxaID)
		}
		out = append(out, ref.RemainingDatasets[i])
	}
	return comparison.Target{Datasets: out}, nil
}

// CompareCommandAction runs a dataset comparison.
func CompareCommandAction(ctx context.Context, cmd *cli.Command) error {
	op, err := comparison.ParseOperation(cmd.String("operation"))
	if err != nil {
		return err
	}

	runner := &QueryActionRunner[comparison.DisplayRecord]{
		CommandName:  "compare",
		SchemaType:   reflect.TypeOf(comparison.DisplayRecord{}),
		DefaultAttrs: compareAttrs(op),
		FetchFn: func(ctx context.Context, cmd *cli.Command, m *meta.Meta) ([]comparison.DisplayRecord, error) {
			ref, err := referenceStep(ctx, cmd, m)
			if err != nil {
				return nil, err
			}
			target, err := targetStep(ctx, cmd, m, ref)
			if err != nil {
				return nil, err
			}
			params := comparison.Params(ref, target, comparison.OperationSpec{
				Operation:   op,
				StrandAware: cmd.Bool("strand-aware"),
			})
			return comparison.Run(ctx, m.Client, op, params)
		},
	}
	return runner.Run(ctx, cmd)
}

// CompareCommandBuilder constructs the compare command.
func CompareCommandBuilder(m *meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "compare",
		Usage:     "compare datasets with datasets or an uploaded file",
		UsageText: "smctl compare --reference ID... (--comparison ID... | --upload FILE) [--operation OP] [options]",
		Flags: []cli.Flag{
			NewTaxaFlag("compare", m.Config.Source, false),
			&cli.StringSliceFlag{
				Name:     "reference",
				Aliases:  []string{"r"},
				Usage:    "reference dataset ID, may be repeated",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "comparison",
				Usage: "comparison dataset ID, may be repeated",
			},
			&cli.StringFlag{
				Name:      "upload",
				Usage:     "compare against a file (local path or s3://bucket/key)",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:  "euf",
				Usage: "the uploaded file is bedRMod rather than BED6",
			},
			&cli.StringFlag{
				Name:  "operation",
				Usage: "intersect, closest or subtract",
				Value: string(comparison.Intersect),
				Validator: func(value string) error {
					return FlagValidators(value, OperationValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "strand-aware",
				Usage: "only match records on the same strand",
			},
		},
		Action: CompareCommandAction,
		Meta:   m,
	}).Build()
}
