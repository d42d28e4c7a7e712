// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCSBaseURL is the public origin of Google Cloud Storage objects.
const GCSBaseURL = "https://storage.googleapis.com"

// GCSBucket stores objects in a Google Cloud Storage bucket.
// Credentials come from Application Default Credentials.
type GCSBucket struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSBucket opens a client for the named bucket.
func NewGCSBucket(ctx context.Context, name string) (*GCSBucket, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSBucket{client: client, bucket: client.Bucket(name), name: name}, nil
}

// Name returns the bucket name.
func (b *GCSBucket) Name() string { return b.name }

// Put streams data to the object.
func (b *GCSBucket) Put(ctx context.Context, key, contentType string, data []byte) error {
	w := b.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing object %s: %w", key, err)
	}
	return nil
}

// MakePublic grants allUsers read access to the object.
func (b *GCSBucket) MakePublic(ctx context.Context, key string) error {
	if err := b.bucket.Object(key).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("making object %s public: %w", key, err)
	}
	return nil
}

// Delete removes the object.
func (b *GCSBucket) Delete(ctx context.Context, key string) error {
	if err := b.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns https://storage.googleapis.com/<bucket>/<key>.
func (b *GCSBucket) PublicURL(key string) string {
	return publicURL(GCSBaseURL, b.name, key)
}

// Close releases the client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}
