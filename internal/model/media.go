// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Supported image MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Upload folders inside the bucket.
const (
	FolderTouristPoints = "tourist-points"
	FolderEvents        = "events"
)

// MediaObject tracks an uploaded object and the record that references it.
// OwnerCollection and OwnerID are empty until the upload is attached.
type MediaObject struct {
	Key             string
	URL             string
	ContentType     string
	Size            int64
	OwnerCollection sql.NullString
	OwnerID         sql.NullString
	UploadedBy      string
	CreatedAt       time.Time
}

// IsImageMimeType returns true if the MIME type is an allowed image type.
func IsImageMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}
