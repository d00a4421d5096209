// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
)

// PostDataset adds a dataset from a temporary upload.
func (c *Client) PostDataset(ctx context.Context, req DatasetPostRequest) error {
	return c.run(ctx, call{
		method:   http.MethodPost,
		endpoint: "management/dataset",
		body:     req,
		secure:   true,
		errCtx:   "Failed to post dataset",
		report:   true,
	}, nil)
}

// PostProject submits a project request.
func (c *Client) PostProject(ctx context.Context, req ProjectPostRequest) error {
	return c.run(ctx, call{
		method:   http.MethodPost,
		endpoint: "management/project",
		body:     req,
		secure:   true,
		errCtx:   "Failed to post project",
		report:   true,
	}, nil)
}
