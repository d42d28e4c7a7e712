// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

// imageTables maps owner collections to the tables holding an image_urls column.
var imageTables = map[string]string{
	model.CollectionTouristPoints: "tourist_points",
	model.CollectionEvents:        "events",
}

func imageTable(collection string) (string, error) {
	table, ok := imageTables[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return table, nil
}

// GetImageURLs returns the image list of a record.
func (q *Queries) GetImageURLs(ctx context.Context, collection, id string) (model.StringList, error) {
	table, err := imageTable(collection)
	if err != nil {
		return nil, err
	}
	var urls model.StringList
	err = q.db.QueryRowContext(ctx, `SELECT image_urls FROM `+table+` WHERE id = ?`, id).Scan(&urls)
	return urls, err
}

// SetImageURLs replaces the image list of a record.
func (q *Queries) SetImageURLs(ctx context.Context, collection, id string, urls model.StringList, at time.Time) error {
	table, err := imageTable(collection)
	if err != nil {
		return err
	}
	return requireAffected(q.db.ExecContext(ctx,
		`UPDATE `+table+` SET image_urls = ?, updated_at = ? WHERE id = ?`, urls, at, id))
}
