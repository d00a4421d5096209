// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/staranto/smctl/internal/api"
	"github.com/staranto/smctl/internal/aws"
)

// FromFile returns a payload reading the local file at path.
func FromFile(path string) (*api.Payload, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &api.Payload{
		Name: filepath.Base(path),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// Opener resolves an upload source to a payload.
type Opener struct {
	// S3 builds the S3 client on first use. Nil disables s3:// sources.
	S3 func(ctx context.Context) (aws.ObjectAPI, error)
}

// Open accepts a local path or an s3://bucket/key URI.
func (o Opener) Open(ctx context.Context, src string) (*api.Payload, error) {
	if !aws.IsURI(src) {
		return FromFile(src)
	}
	if o.S3 == nil {
		return nil, fmt.Errorf("S3 sources are not enabled: %s", src)
	}
	client, err := o.S3(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to set up S3: %w", err)
	}
	return aws.Payload(ctx, client, src)
}
