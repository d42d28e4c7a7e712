// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event is a dated happening promoted in the public app.
type Event struct {
	ID          string     `json:"id"`
	Title       Localized  `json:"title"`
	Description Localized  `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Location    *string    `json:"location"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Category    string     `json:"category"`
	IsFeatured  bool       `json:"isFeatured"`
	TicketURL   *string    `json:"ticketUrl"`
	ImageURLs   StringList `json:"imageUrls"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CreatedBy   string     `json:"createdBy"`
}

// EventCategories are the categories offered by the admin forms.
var EventCategories = []string{
	"cultura",
	"musica",
	"esporte",
	"gastronomia",
	"feira",
	"festival",
	"teatro",
	"exposicao",
	"outro",
}
