// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
)

// The list endpoints below back the catalog caches. They do not report to
// the dialog state; the caches return the error to whoever asked.

func list[T any](ctx context.Context, c *Client, endpoint string, secure bool, errCtx string) ([]T, error) {
	var out []T
	err := c.run(ctx, call{
		method:    http.MethodGet,
		endpoint:  endpoint,
		secure:    secure,
		errCtx:    errCtx,
		cacheable: !secure,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Selections lists every modification/organism/technology combination.
func (c *Client) Selections(ctx context.Context) ([]Selection, error) {
	return list[Selection](ctx, c, "selections", false, "Failed to fetch selections")
}

// AllDatasets lists the public datasets.
func (c *Client) AllDatasets(ctx context.Context) ([]Dataset, error) {
	return list[Dataset](ctx, c, "dataset/list_all", false, "Failed to fetch all datasets")
}

// MyDatasets lists the datasets the logged-in user may change.
func (c *Client) MyDatasets(ctx context.Context) ([]Dataset, error) {
	return list[Dataset](ctx, c, "dataset/list_mine", true, "Failed to fetch MY datasets")
}

// AllProjects lists the public projects.
func (c *Client) AllProjects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, c, "project/list_all", false, "Failed to fetch all projects")
}

// MyProjects lists the projects of the logged-in user.
func (c *Client) MyProjects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, c, "project/list_mine", true, "Failed to fetch MY projects")
}

// Taxa lists all taxa.
func (c *Client) Taxa(ctx context.Context) ([]Taxa, error) {
	return list[Taxa](ctx, c, "taxa", false, "Failed to fetch Taxa")
}

// Modomics lists the MODOMICS reference.
func (c *Client) Modomics(ctx context.Context) ([]Modomics, error) {
	return list[Modomics](ctx, c, "modomics", false, "Failed to fetch all Modomics")
}

// RnaTypes lists the RNA types.
func (c *Client) RnaTypes(ctx context.Context) ([]RnaType, error) {
	return list[RnaType](ctx, c, "rna_types", false, "Failed to fetch all RNA types")
}

// DetectionMethods lists the detection methods.
func (c *Client) DetectionMethods(ctx context.Context) ([]DetectionMethod, error) {
	return list[DetectionMethod](ctx, c, "methods", false, "Failed to fetch all detection methods")
}
