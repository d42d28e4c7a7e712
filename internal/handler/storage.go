// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/storage"
)

// storageCacheMaxAge is the Cache-Control max-age of served objects (7 days).
const storageCacheMaxAge = 604800

// StorageHandler serves the objects of a local bucket under
// /storage/<bucket>/. Directories and temp files are never listed or served.
func StorageHandler(bucket *storage.LocalBucket) http.Handler {
	prefix := storage.LocalURLPrefix + "/" + bucket.Name() + "/"
	files := http.FileServer(http.FS(objectFS{fsys: os.DirFS(bucket.Dir())}))
	return middleware.StaticCache(storageCacheMaxAge)(http.StripPrefix(prefix, files))
}

// objectFS hides directories and dot files of the wrapped filesystem.
type objectFS struct {
	fsys fs.FS
}

func (o objectFS) Open(name string) (fs.File, error) {
	if name == "." || strings.HasPrefix(path.Base(name), ".") {
		return nil, fs.ErrNotExist
	}
	f, err := o.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
