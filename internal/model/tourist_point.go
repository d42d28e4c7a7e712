// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Collection names used for media ownership and audit metadata.
const (
	CollectionTouristPoints = "tourist_points"
	CollectionEvents        = "events"
)

// TouristPoint is a place of interest shown in the public app.
// Records are never hard-deleted; deletion clears IsActive.
type TouristPoint struct {
	ID           string     `json:"id"`
	Name         Localized  `json:"name"`
	Description  Localized  `json:"description"`
	Address      Localized  `json:"address"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Category     string     `json:"category"`
	Phone        *string    `json:"phone"`
	Website      *string    `json:"website"`
	OpeningHours *Localized `json:"openingHours"`
	ImageURLs    StringList `json:"imageUrls"`
	Rating       float64    `json:"rating"`
	ReviewCount  int64      `json:"reviewCount"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CreatedBy    string     `json:"createdBy"`
	UpdatedBy    *string    `json:"updatedBy,omitempty"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	DeletedBy    *string    `json:"deletedBy,omitempty"`
}

// TouristPointCategories are the categories offered by the admin forms.
var TouristPointCategories = []string{
	"parque",
	"museu",
	"monumento",
	"igreja",
	"mirante",
	"gastronomia",
	"compras",
	"cultura",
	"natureza",
	"outro",
}
