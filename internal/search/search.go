// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package search turns search parameters into modification queries.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/staranto/smctl/internal/api"
)

var ErrIncompleteSearch = errors.New("incomplete search parameters")

// By selects the search mode.
type By string

const (
	ByModification By = "Modification"
	ByGeneChrom    By = "Gene/Chrom"
)

// Primary parameters pick what is searched.
type Primary struct {
	Selections       []api.Selection
	Taxa             *api.Taxa
	Cto              *api.Cto
	ModificationType *api.ModificationType
	Technologies     []api.Technology
	RnaType          string
}

// Secondary parameters narrow the result.
type Secondary struct {
	SearchBy   By
	Gene       string
	Biotypes   []string
	Features   []string
	Chrom      *api.Chrom
	ChromStart *int64
	ChromEnd   *int64
}

// Parameters are everything a search needs. Only complete parameters can be
// queried.
type Parameters struct {
	Primary
	Secondary
}

// Complete reports whether p has a taxon and an RNA type.
func (p Parameters) Complete() bool {
	return p.Taxa != nil && p.RnaType != ""
}

// SortMeta is one column of a multi-column sort. Order is 1 for ascending,
// -1 for descending and anything else for the backend's default.
type SortMeta struct {
	Field string
	Order int
}

// ParseSortMeta reads "field", "field:asc" or "field:desc".
func ParseSortMeta(s string) SortMeta {
	field, dir, _ := strings.Cut(s, ":")
	switch strings.ToLower(dir) {
	case "asc":
		return SortMeta{Field: field, Order: 1}
	case "desc":
		return SortMeta{Field: field, Order: -1}
	default:
		return SortMeta{Field: field}
	}
}

// FormatSortMetas renders sort metas the way the backend's multiSort
// parameter expects. Metas without a field are skipped.
func FormatSortMetas(metas []SortMeta) []string {
	out := []string{}
	for _, m := range metas {
		if m.Field == "" {
			continue
		}
		switch m.Order {
		case 1:
			out = append(out, m.Field+"%2Basc")
		case -1:
			out = append(out, m.Field+"%2Bdesc")
		default:
			out = append(out, m.Field)
		}
	}
	return out
}

// GeneFilters renders the gene, biotype and feature filters. Empty filters
// are left out.
func GeneFilters(p Parameters) []string {
	out := []string{}
	add := func(name, value, matchMode string) {
		if value != "" {
			out = append(out, fmt.Sprintf("%s%%2B%s%%2B%s", name, value, matchMode))
		}
	}
	add("gene_name", p.Gene, "startsWith")
	add("gene_biotype", strings.Join(p.Biotypes, ","), "in")
	add("feature", strings.Join(p.Features, ","), "in")
	return out
}

// Request is the query string of a modification query.
type Request struct {
	Modification *int     `url:"modification,omitempty"`
	Organism     *int     `url:"organism,omitempty"`
	Technology   []int    `url:"technology,omitempty"`
	RnaType      string   `url:"rnaType,omitempty"`
	TaxaID       int      `url:"taxaId"`
	GeneFilter   []string `url:"geneFilter,omitempty"`
	Chrom        string   `url:"chrom,omitempty"`
	ChromStart   *int64   `url:"chromStart,omitempty"`
	ChromEnd     *int64   `url:"chromEnd,omitempty"`
	MultiSort    []string `url:"multiSort,omitempty"`
	FirstRecord  *int     `url:"firstRecord,omitempty"`
	MaxRecords   *int     `url:"maxRecords,omitempty"`
}

// NewRequest builds the request for p. p must be complete.
func NewRequest(p Parameters, sort []SortMeta) (Request, error) {
	if !p.Complete() {
		return Request{}, ErrIncompleteSearch
	}
	r := Request{
		RnaType:    p.RnaType,
		TaxaID:     p.Taxa.TaxaID,
		GeneFilter: GeneFilters(p),
		ChromStart: p.ChromStart,
		ChromEnd:   p.ChromEnd,
		MultiSort:  FormatSortMetas(sort),
	}
	if p.ModificationType != nil {
		r.Modification = &p.ModificationType.ModificationID
	}
	if p.Cto != nil {
		r.Organism = &p.Cto.OrganismID
	}
	for _, t := range p.Technologies {
		r.Technology = append(r.Technology, t.TechnologyID)
	}
	if p.Chrom != nil {
		r.Chrom = p.Chrom.Chrom
	}
	return r, nil
}

// Values encodes r. Slices repeat their key.
func (r Request) Values() (url.Values, error) {
	v, err := query.Values(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}
	return v, nil
}

// Endpoint returns the query endpoint for the search mode.
func Endpoint(by By) string {
	if by == ByGeneChrom {
		return "modification/query/gene"
	}
	return "modification/query"
}

// ExportEndpoint returns the CSV export endpoint for the search mode.
func ExportEndpoint(by By) string {
	if by == ByGeneChrom {
		return "modification/csv/gene"
	}
	return "modification/csv"
}

// exportOrder is the parameter order of export links.
var exportOrder = []string{
	"modification", "organism", "technology", "rnaType", "taxaId",
	"geneFilter", "chrom", "chromStart", "chromEnd", "multiSort",
}

// exportLists are the repeated parameters. Every element is kept.
var exportLists = map[string]bool{"technology": true, "geneFilter": true, "multiSort": true}

// ExportLink returns the CSV download link for p. apiURL maps an endpoint to
// an absolute URL, e.g. (*api.Client).URL. Empty and zero scalars are left
// out.
func ExportLink(p Parameters, sort []SortMeta, apiURL func(string) string) (string, error) {
	r, err := NewRequest(p, sort)
	if err != nil {
		return "", err
	}
	values, err := r.Values()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, k := range exportOrder {
		for _, v := range values[k] {
			if !exportLists[k] && (v == "" || v == "0") {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return apiURL(ExportEndpoint(p.SearchBy)) + "?" + b.String(), nil
}

// Page limits a query to MaxRecords rows starting at FirstRecord.
type Page struct {
	FirstRecord int
	MaxRecords  int
}

// Querier runs modification queries.
type Querier interface {
	Modifications(ctx context.Context, endpoint string, params url.Values) (api.ModificationResponse, error)
}

// Query runs the search described by p. A nil page returns everything the
// backend is willing to send.
func Query(ctx context.Context, q Querier, p Parameters, page *Page, sort []SortMeta) (api.ModificationResponse, error) {
	r, err := NewRequest(p, sort)
	if err != nil {
		return api.ModificationResponse{}, err
	}
	if page != nil {
		r.FirstRecord = &page.FirstRecord
		r.MaxRecords = &page.MaxRecords
	}
	values, err := r.Values()
	if err != nil {
		return api.ModificationResponse{}, err
	}
	return q.Modifications(ctx, Endpoint(p.SearchBy), values)
}
