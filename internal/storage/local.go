// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olegiv/turismo-admin/internal/util"
)

// LocalURLPrefix is the path under which the application serves local objects.
const LocalURLPrefix = "/storage"

// LocalBucket stores objects on the local filesystem under <root>/<bucket>.
// Objects are served by the application, so MakePublic is a no-op.
type LocalBucket struct {
	root    string
	name    string
	baseURL string
}

// NewLocalBucket creates the bucket directory if needed.
// baseURL is the externally visible origin of the application.
func NewLocalBucket(root, name, baseURL string) (*LocalBucket, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bucket directory: %w", err)
	}
	return &LocalBucket{root: root, name: name, baseURL: baseURL + LocalURLPrefix}, nil
}

// Name returns the bucket name.
func (b *LocalBucket) Name() string { return b.name }

// Dir returns the directory holding the bucket's objects.
func (b *LocalBucket) Dir() string { return filepath.Join(b.root, b.name) }

func (b *LocalBucket) path(key string) (string, error) {
	if !util.ValidObjectKey(key) {
		return "", ErrInvalidKey
	}
	p, err := util.SafeJoinPath(b.Dir(), filepath.FromSlash(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return p, nil
}

// Put writes data atomically via a temp file and rename.
func (b *LocalBucket) Put(ctx context.Context, key, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing object: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting object mode: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming object: %w", err)
	}
	return nil
}

// MakePublic checks the object exists.
func (b *LocalBucket) MakePublic(_ context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// Delete removes the object file.
func (b *LocalBucket) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// PublicURL returns <base>/storage/<bucket>/<key>.
func (b *LocalBucket) PublicURL(key string) string {
	return publicURL(b.baseURL, b.name, key)
}
