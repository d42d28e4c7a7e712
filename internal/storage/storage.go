// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage abstracts the object bucket that holds uploaded images.
// Objects are addressed by slash-separated keys and exposed at
// <base URL>/<bucket>/<key>.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrObjectNotFound is returned when deleting or reading a missing object.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or escape the bucket.
var ErrInvalidKey = errors.New("invalid object key")

// Bucket is an object store bucket.
type Bucket interface {
	// Name returns the bucket name.
	Name() string
	// Put writes data under key with the given content type.
	Put(ctx context.Context, key, contentType string, data []byte) error
	// MakePublic grants anonymous read access to key.
	MakePublic(ctx context.Context, key string) error
	// Delete removes key. Missing keys return ErrObjectNotFound.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the public URL of key.
	PublicURL(key string) string
}

// publicURL joins base, bucket and key.
func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

// KeyFromURL extracts the object key from a public URL of b. It returns false
// when rawURL does not point into the bucket.
func KeyFromURL(b Bucket, rawURL string) (string, bool) {
	prefix := b.PublicURL("")
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" {
		return "", false
	}
	return key, true
}

// LastSegment returns the final path segment of rawURL. Used for URLs that
// do not belong to the configured bucket.
func LastSegment(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		rawURL = u.Path
	}
	rawURL = strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		return rawURL[i+1:]
	}
	return rawURL
}
