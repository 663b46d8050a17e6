// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectConfig describes an S3-compatible bucket holding artifacts in
// the Maven repository layout.
type ObjectConfig struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ObjectRepository serves artifacts from object storage. Objects are
// streamed straight from the bucket without local caching.
type ObjectRepository struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectRepository connects to the bucket described by config. No
// request is made until the first Open.
func NewObjectRepository(config ObjectConfig) (*ObjectRepository, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("object repository endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("object repository bucket is required")
	}

	options := &minio.Options{
		Secure: config.UseSSL,
		Region: config.Region,
	}
	if config.AccessKey != "" || config.SecretKey != "" {
		options.Creds = credentials.NewStaticV4(config.AccessKey, config.SecretKey, "")
	}
	client, err := minio.New(config.Endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("creating object storage client for %s: %w", config.Endpoint, err)
	}
	return &ObjectRepository{
		client: client,
		bucket: config.Bucket,
		prefix: strings.Trim(config.Prefix, "/"),
	}, nil
}

// Key returns the object key for coordinate.
func (r *ObjectRepository) Key(coordinate Coordinate) string {
	return objectKey(r.prefix, coordinate)
}

func objectKey(prefix string, coordinate Coordinate) string {
	if prefix == "" {
		return coordinate.Path()
	}
	return path.Join(prefix, coordinate.Path())
}

// Open streams the object. GetObject is lazy, so the object is
// stat'ed first to surface a missing key here rather than on the
// first Read.
func (r *ObjectRepository) Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error) {
	if err := coordinate.Validate(); err != nil {
		return nil, err
	}
	key := r.Key(coordinate)
	object, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, r.translate(err, coordinate, key)
	}
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, r.translate(err, coordinate, key)
	}
	return object, nil
}

func (r *ObjectRepository) translate(err error, coordinate Coordinate, key string) error {
	if isMissingObject(err) {
		return fmt.Errorf("%w: %s in s3://%s/%s", ErrNotFound, coordinate, r.bucket, key)
	}
	return fmt.Errorf("fetching s3://%s/%s: %w", r.bucket, key, err)
}

func isMissingObject(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}
