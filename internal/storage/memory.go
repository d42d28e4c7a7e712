// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"sync"
)

// MemoryBucket keeps objects in memory. It backs tests and can inject
// failures for a chosen key.
type MemoryBucket struct {
	mu      sync.Mutex
	name    string
	baseURL string
	objects map[string]MemoryObject
	public  map[string]bool

	// FailPut, when set, is consulted before every Put.
	FailPut func(key string) error
}

// MemoryObject is a stored object.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// NewMemoryBucket creates an empty in-memory bucket.
func NewMemoryBucket(name, baseURL string) *MemoryBucket {
	return &MemoryBucket{
		name:    name,
		baseURL: baseURL,
		objects: make(map[string]MemoryObject),
		public:  make(map[string]bool),
	}
}

// Name returns the bucket name.
func (b *MemoryBucket) Name() string { return b.name }

// Put stores data under key.
func (b *MemoryBucket) Put(_ context.Context, key, contentType string, data []byte) error {
	if b.FailPut != nil {
		if err := b.FailPut(key); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = MemoryObject{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

// MakePublic marks key as public.
func (b *MemoryBucket) MakePublic(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return ErrObjectNotFound
	}
	b.public[key] = true
	return nil
}

// Delete removes key.
func (b *MemoryBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(b.objects, key)
	delete(b.public, key)
	return nil
}

// PublicURL returns <base>/<bucket>/<key>.
func (b *MemoryBucket) PublicURL(key string) string {
	return publicURL(b.baseURL, b.name, key)
}

// Get returns the stored object.
func (b *MemoryBucket) Get(key string) (MemoryObject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[key]
	return o, ok
}

// IsPublic reports whether MakePublic was called for key.
func (b *MemoryBucket) IsPublic(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.public[key]
}

// Len returns the number of stored objects.
func (b *MemoryBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
