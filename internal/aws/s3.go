// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/smctl/internal/api"
)

// Scheme prefixes S3 upload sources.
const Scheme = "s3://"

var ErrBadURI = errors.New("malformed S3 URI")

// ObjectAPI is the part of the S3 client used for reading objects.
type ObjectAPI interface {
	HeadObject(ctx context.Context, in *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// IsURI reports whether src names an S3 object.
func IsURI(src string) bool {
	return strings.HasPrefix(src, Scheme)
}

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("%w: %s", ErrBadURI, uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, Scheme), "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %s", ErrBadURI, uri)
	}
	return bucket, key, nil
}

// Payload returns an upload body reading the object at uri. The object size
// is looked up once; each Open starts a new GetObject under ctx.
func Payload(ctx context.Context, client ObjectAPI, uri string) (*api.Payload, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	head, err := client.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", uri, err)
	}

	return &api.Payload{
		Name: path.Base(key),
		Size: awsv2.ToInt64(head.ContentLength),
		Open: func() (io.ReadCloser, error) {
			out, err := client.GetObject(ctx, &s3v2.GetObjectInput{
				Bucket: awsv2.String(bucket),
				Key:    awsv2.String(key),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", uri, err)
			}
			return out.Body, nil
		},
	}, nil
}
