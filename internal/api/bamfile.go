// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// BamFiles lists the BAM files of a dataset.
func (c *Client) BamFiles(ctx context.Context, datasetID string) ([]BamFile, error) {
	var out []BamFile
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "bam_file/all/" + url.PathEscape(datasetID),
		errCtx:   fmt.Sprintf("Failed to load bam files for dataset '%s'", datasetID),
		report:   true,
	}, &out)
	return out, err
}

// DeleteBamFile removes a BAM file from a dataset.
func (c *Client) DeleteBamFile(ctx context.Context, datasetID, name string) error {
	return c.run(ctx, call{
		method:   http.MethodDelete,
		endpoint: bamFilePath(datasetID, name),
		secure:   true,
		errCtx:   fmt.Sprintf("Failed to delete BAM file '%s' (dataset %s)", name, datasetID),
		report:   true,
	}, nil)
}

// BamFileURL is where a BAM file can be downloaded.
func (c *Client) BamFileURL(datasetID, name string) string {
	return c.URL(bamFilePath(datasetID, name))
}

// BamFileUploadEndpoint is the endpoint a BAM file is posted to.
func BamFileUploadEndpoint(datasetID, name string) string {
	return bamFilePath(datasetID, name)
}

func bamFilePath(datasetID, name string) string {
	return "bam_file/" + url.PathEscape(datasetID) + "/" + url.PathEscape(name)
}
