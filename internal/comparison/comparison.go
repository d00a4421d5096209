// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package comparison builds dataset comparisons and renders their records.
package comparison

import (
	"context"
	"fmt"
	"strconv"

	"github.com/staranto/smctl/internal/api"
)

// Operation is a comparison operation.
type Operation string

const (
	Intersect Operation = "intersect"
	Closest   Operation = "closest"
	Subtract  Operation = "subtract"
)

// ParseOperation accepts the operation names.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case Intersect, Closest, Subtract:
		return op, nil
	default:
		return "", fmt.Errorf("unknown comparison operation %q", s)
	}
}

// Reference is the first step: the datasets compared against.
type Reference struct {
	TaxaID            int
	Datasets          []api.Dataset
	RemainingDatasets []api.Dataset
}

// Upload describes a file uploaded for comparison.
type Upload struct {
	api.UploadedFile
	IsEUF bool
}

// Target is the second step: either an upload or a set of datasets.
type Target struct {
	Upload   *Upload
	Datasets []api.Dataset
}

// IsUpload reports whether t compares against an upload.
func (t Target) IsUpload() bool {
	return t.Upload != nil
}

// OperationSpec is the third step.
type OperationSpec struct {
	Operation   Operation
	StrandAware bool
}

// Params combines the three steps into the request parameters.
func Params(a Reference, b Target, c OperationSpec) api.ComparisonParams {
	p := api.ComparisonParams{
		Reference: datasetIDs(a.Datasets),
		Strand:    c.StrandAware,
		TaxaID:    a.TaxaID,
	}
	if b.IsUpload() {
		euf := b.Upload.IsEUF
		p.Upload = b.Upload.ID
		p.UploadName = b.Upload.Name
		p.EUF = &euf
	} else {
		p.Comparison = datasetIDs(b.Datasets)
	}
	return p
}

func datasetIDs(ds []api.Dataset) []string {
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.DatasetID)
	}
	return ids
}

// RecordString is an EUF record with every field rendered.
type RecordString struct {
	Chrom     string `json:"chrom"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Name      string `json:"name"`
	Score     string `json:"score"`
	Strand    string `json:"strand"`
	Coverage  string `json:"coverage"`
	Frequency string `json:"frequency"`
	EufID     string `json:"eufid"`
}

// DisplayRecord is one row of a comparison result.
type DisplayRecord struct {
	A        RecordString `json:"a"`
	B        RecordString `json:"b"`
	Distance string       `json:"distance"`
}

// NewDisplayRecord renders a result row. Missing records render as empty
// strings and a missing distance as "".
func NewDisplayRecord(a, b *api.EufRecord, distance *int64) DisplayRecord {
	r := DisplayRecord{A: recordToStrings(a), B: recordToStrings(b)}
	if distance != nil {
		r.Distance = strconv.FormatInt(*distance, 10)
	}
	return r
}

func recordToStrings(x *api.EufRecord) RecordString {
	if x == nil {
		return RecordString{}
	}
	return RecordString{
		Chrom:     x.Chrom,
		Start:     strconv.FormatInt(x.Start, 10),
		End:       strconv.FormatInt(x.End, 10),
		Name:      x.Name,
		Score:     strconv.Itoa(x.Score),
		Strand:    string(x.Strand),
		Coverage:  strconv.Itoa(x.Coverage),
		Frequency: strconv.Itoa(x.Frequency),
		EufID:     x.EufID,
	}
}

// Comparer runs comparisons.
type Comparer interface {
	Subtract(ctx context.Context, params api.ComparisonParams) ([]api.EufRecord, error)
	Intersect(ctx context.Context, params api.ComparisonParams) ([]api.IntersectRecord, error)
	Closest(ctx context.Context, params api.ComparisonParams) ([]api.ClosestRecord, error)
}

// Run performs the operation and renders the result.
func Run(ctx context.Context, c Comparer, op Operation, params api.ComparisonParams) ([]DisplayRecord, error) {
	var out []DisplayRecord
	switch op {
	case Subtract:
		recs, err := c.Subtract(ctx, params)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			out = append(out, NewDisplayRecord(&recs[i], nil, nil))
		}
	case Intersect:
		recs, err := c.Intersect(ctx, params)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			out = append(out, NewDisplayRecord(&recs[i].A, &recs[i].B, nil))
		}
	case Closest:
		recs, err := c.Closest(ctx, params)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			out = append(out, NewDisplayRecord(&recs[i].A, &recs[i].B, &recs[i].Distance))
		}
	default:
		return nil, fmt.Errorf("unknown comparison operation %q", op)
	}
	return out, nil
}
