// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/turismo-admin/internal/geoip"
	"github.com/olegiv/turismo-admin/internal/service"
)

// Job names.
const (
	JobMediaReconcile = "media-reconcile"
	JobAuditRetention = "audit-retention"
	JobGeoIPReload    = "geoip-reload"
)

// Defaults for the maintenance jobs.
const (
	OrphanMediaAge     = 24 * time.Hour
	orphanMediaBatch   = 100
	AuditRetentionDays = 90
)

// MediaReconcileJob deletes uploaded images that were never attached to a
// tourist point or event, such as those left behind by a failed create.
func MediaReconcileJob(media *service.MediaService, logger *slog.Logger) Job {
	return Job{
		Name:        JobMediaReconcile,
		Description: "Remove unattached uploaded images older than 24 hours",
		Schedule:    "@hourly",
		Run: func(ctx context.Context) error {
			n, err := media.PurgeOrphans(ctx, OrphanMediaAge, orphanMediaBatch)
			if n > 0 {
				logger.Info("removed orphaned media objects", "count", n)
			}
			return err
		},
	}
}

// AuditRetentionJob purges audit entries older than the retention period.
func AuditRetentionJob(audit *service.AuditService, logger *slog.Logger) Job {
	return Job{
		Name:        JobAuditRetention,
		Description: "Delete audit log entries older than 90 days",
		Schedule:    "0 3 * * *",
		Run: func(ctx context.Context) error {
			n, err := audit.Purge(ctx, AuditRetentionDays*24*time.Hour)
			if n > 0 {
				logger.Info("purged audit log entries", "count", n)
			}
			return err
		},
	}
}

// GeoIPReloadJob picks up a replaced GeoIP database file.
func GeoIPReloadJob(resolver *geoip.Resolver) Job {
	return Job{
		Name:        JobGeoIPReload,
		Description: "Reload the GeoIP country database if it changed",
		Schedule:    "30 4 * * *",
		Run: func(context.Context) error {
			return resolver.Reload()
		},
	}
}
