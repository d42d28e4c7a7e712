// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/storage"
	"github.com/olegiv/turismo-admin/internal/testutil"
)

const testBucket = "turismo-curitiba"

// testClock advances one second per call so records get distinct timestamps.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db      *sql.DB
	bucket  *storage.MemoryBucket
	media   *MediaService
	content *ContentService
	clock   *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	logger := testutil.TestLoggerSilent()
	clock := newTestClock()

	bucket := storage.NewMemoryBucket(testBucket, storage.GCSBaseURL)
	media := NewMediaService(db, bucket, logger)
	media.now = clock.now
	content := NewContentService(db, media, logger)
	content.now = clock.now

	return &fixture{db: db, bucket: bucket, media: media, content: content, clock: clock}
}

func pngFile(t *testing.T, name string) UploadFile {
	t.Helper()
	return UploadFile{Filename: name, ContentType: model.MimeTypePNG, Data: testutil.PNG(t, 4, 3)}
}

func minimalPoint(name string) TouristPointInput {
	return TouristPointInput{
		Name:        model.Localized{PT: name},
		Description: model.Localized{PT: "Descrição de " + name},
		Address:     model.Localized{PT: "Rua " + name},
		Latitude:    "-25.44",
		Longitude:   "-49.23",
		Category:    "parque",
	}
}

func strPtr(s string) *string { return &s }
