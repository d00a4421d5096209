// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
)

// Assemblies lists the assemblies known for taxaID.
func (c *Client) Assemblies(ctx context.Context, taxaID int) ([]Assembly, error) {
	var out []Assembly
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("assembly/%d", taxaID),
		errCtx:   fmt.Sprintf("Failed to load assemblies for Taxa ID %d", taxaID),
		report:   true,
	}, &out)
	return out, err
}

// Chroms lists the chromosomes of the current assembly of taxaID.
func (c *Client) Chroms(ctx context.Context, taxaID int) ([]Chrom, error) {
	var out []Chrom
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("chroms/%d", taxaID),
		errCtx:   "Failed to load chromes",
		report:   true,
	}, &out)
	return out, err
}

// BioTypes lists the gene biotypes for rnaType.
func (c *Client) BioTypes(ctx context.Context, rnaType string) ([]string, error) {
	var out struct {
		Biotypes []string `json:"biotypes"`
	}
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "biotypes/" + url.PathEscape(rnaType),
		errCtx:   fmt.Sprintf("Failed to load biotypes (rnaType %q)", rnaType),
		report:   true,
	}, &out)
	return out.Biotypes, err
}

// Features lists the genomic features for rnaType.
func (c *Client) Features(ctx context.Context, rnaType string) ([]string, error) {
	var out struct {
		Features []string `json:"features"`
	}
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "features/" + url.PathEscape(rnaType),
		errCtx:   fmt.Sprintf("Failed to load features (rnaType: %q)", rnaType),
		report:   true,
	}, &out)
	return out.Features, err
}

// Genes lists the genes with data in any of the selections, sorted.
func (c *Client) Genes(ctx context.Context, selectionIDs []int) ([]string, error) {
	params := url.Values{}
	for _, id := range selectionIDs {
		params.Add("selection", strconv.Itoa(id))
	}
	var out []string
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "genes",
		params:   params,
		errCtx:   "Failed to load genes",
		report:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
