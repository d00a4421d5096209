// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Modifications runs a modification query against endpoint, which is either
// modification/query or modification/query/gene.
func (c *Client) Modifications(ctx context.Context, endpoint string, params url.Values) (ModificationResponse, error) {
	var out ModificationResponse
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		params:   params,
		errCtx:   "Failed to load modifications",
		report:   true,
	}, &out)
	return out, err
}

// TargetSites lists the predicted target sites of type target (e.g. "MIRNA")
// around m.
func (c *Client) TargetSites(ctx context.Context, m Modification, target string) ([]Bed6Record, error) {
	var out recordsResponse[Bed6Record]
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "modification/target/" + url.PathEscape(target),
		params:   SiteParamsOf(m),
		errCtx:   fmt.Sprintf("Failed to load sites for target '%s' for modification %d", target, m.ID),
		report:   true,
	}, &out)
	return out.Records, err
}

// GenomicContext returns the sequence within n bases around m.
func (c *Client) GenomicContext(ctx context.Context, m Modification, n int) (string, error) {
	var out struct {
		Context string `json:"context"`
	}
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("modification/genomic-context/%d", n),
		params:   SiteParamsOf(m),
		errCtx:   fmt.Sprintf("Failed to get context '%d' for modification %d", n, m.ID),
		report:   true,
	}, &out)
	return out.Context, err
}

// SiteWise lists what all datasets report for the site of m.
func (c *Client) SiteWise(ctx context.Context, m Modification) ([]SiteWiseInfo, error) {
	var out recordsResponse[SiteWiseInfo]
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "modification/sitewise",
		params:   SiteParamsOf(m),
		errCtx:   fmt.Sprintf("Failed to get site info for modification %d", m.ID),
		report:   true,
	}, &out)
	return out.Records, err
}
