// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/staranto/smctl/internal/dialog"
)

// MaxTemporaryUploadSize is the largest file accepted as temporary dataset.
const MaxTemporaryUploadSize = 50 * 1024 * 1024

var ErrDatasetTooLarge = errors.New("dataset too large")

// UploadedFile is a temporary upload the backend knows by ID.
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostTemporaryFile uploads p to the temporary area and returns its file ID.
func (c *Client) PostTemporaryFile(ctx context.Context, p *Payload) (string, error) {
	var out fileResponse
	err := c.run(ctx, call{
		method:   http.MethodPost,
		endpoint: "transfer/tmp_upload",
		body:     p,
		secure:   true,
		errCtx:   fmt.Sprintf("Failed to upload '%s'", p.Name),
		report:   true,
	}, &out)
	return out.FileID, err
}

// UploadTemporaryDataset is PostTemporaryFile with the temporary dataset
// size limit checked before anything is sent.
func (c *Client) UploadTemporaryDataset(ctx context.Context, p *Payload) (UploadedFile, error) {
	if p.Size > MaxTemporaryUploadSize {
		c.dialog.Show(dialog.Alert,
			fmt.Sprintf("This file is to large (%d bytes, max %d)", p.Size, MaxTemporaryUploadSize))
		return UploadedFile{}, fmt.Errorf("%w: %s is %d bytes", ErrDatasetTooLarge, p.Name, p.Size)
	}
	id, err := c.PostTemporaryFile(ctx, p)
	if err != nil {
		return UploadedFile{}, err
	}
	return UploadedFile{ID: id, Name: p.Name}, nil
}

// PostFile posts p to endpoint without reporting. The upload manager keeps
// its own per-job error message.
func (c *Client) PostFile(ctx context.Context, endpoint string, p *Payload) error {
	return c.run(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		body:     p,
		secure:   true,
	}, nil)
}
