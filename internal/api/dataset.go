// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func compare[T any](ctx context.Context, c *Client, operation string, params ComparisonParams) ([]T, error) {
	var out recordsResponse[T]
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "dataset/" + operation,
		params:   params,
		errCtx:   fmt.Sprintf("Comparison failed (%s)", operation),
		report:   true,
	}, &out)
	return out.Records, err
}

// Subtract returns the reference records without a match in the comparison.
func (c *Client) Subtract(ctx context.Context, params ComparisonParams) ([]EufRecord, error) {
	return compare[EufRecord](ctx, c, "subtract", params)
}

// Intersect returns pairs of overlapping records.
func (c *Client) Intersect(ctx context.Context, params ComparisonParams) ([]IntersectRecord, error) {
	return compare[IntersectRecord](ctx, c, "intersect", params)
}

// Closest returns each reference record with its nearest comparison record.
func (c *Client) Closest(ctx context.Context, params ComparisonParams) ([]ClosestRecord, error) {
	return compare[ClosestRecord](ctx, c, "closest", params)
}

// MayChangeDataset tells whether the logged-in user has write access.
func (c *Client) MayChangeDataset(ctx context.Context, datasetID string) (bool, error) {
	var out struct {
		WriteAccess bool `json:"write_access"`
	}
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "user/may_change_dataset/" + url.PathEscape(datasetID),
		secure:   true,
		errCtx:   fmt.Sprintf("Failed to determine if logged-in user may change dataset '%s'", datasetID),
		report:   true,
	}, &out)
	return out.WriteAccess, err
}
