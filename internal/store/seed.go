// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/olegiv/turismo-admin/internal/model"
)

// NewID returns a new sortable record id.
func NewID() string {
	return ulid.Make().String()
}

// SeedActor is recorded as creator of seeded content.
const SeedActor = "seed"

// Seed inserts sample Curitiba content into an empty database.
// It is a no-op when any tourist point already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	q := New(db)

	n, err := q.CountTouristPoints(ctx, ContentFilter{})
	if err != nil {
		return fmt.Errorf("checking for content: %w", err)
	}
	if n > 0 {
		slog.Info("content already exists, skipping seed")
		return nil
	}

	now := time.Now().UTC()
	hours := model.NewLocalized("Ter a dom, 6h às 20h", "Tue to Sun, 6am to 8pm", "Mar a dom, 6h a 20h")
	website := "https://www.curitiba.pr.gov.br"

	points := []model.TouristPoint{
		{
			Name:         model.NewLocalized("Jardim Botânico", "Botanical Garden", "Jardín Botánico"),
			Description:  model.NewLocalized("Estufa de vidro e jardins franceses, cartão-postal da cidade.", "", ""),
			Address:      model.NewLocalized("R. Engo. Ostoja Roguski, s/n - Jardim Botânico", "", ""),
			Latitude:     -25.4431,
			Longitude:    -49.2383,
			Category:     "parque",
			Website:      &website,
			OpeningHours: &hours,
		},
		{
			Name:        model.NewLocalized("Museu Oscar Niemeyer", "Oscar Niemeyer Museum", "Museo Oscar Niemeyer"),
			Description: model.NewLocalized("Museu de arte conhecido como Museu do Olho.", "", ""),
			Address:     model.NewLocalized("R. Mal. Hermes, 999 - Centro Cívico", "", ""),
			Latitude:    -25.4103,
			Longitude:   -49.2670,
			Category:    "museu",
		},
		{
			Name:        model.NewLocalized("Ópera de Arame", "Wire Opera House", "Ópera de Alambre"),
			Description: model.NewLocalized("Teatro de estrutura tubular cercado por lago e mata.", "", ""),
			Address:     model.NewLocalized("R. João Gava, 970 - Abranches", "", ""),
			Latitude:    -25.3847,
			Longitude:   -49.2763,
			Category:    "cultura",
		},
	}

	return InTx(ctx, db, func(q *Queries) error {
		for i := range points {
			p := &points[i]
			p.ID = NewID()
			p.ImageURLs = model.StringList{}
			p.IsActive = true
			p.CreatedAt = now.Add(time.Duration(i) * time.Second)
			p.UpdatedAt = p.CreatedAt
			p.CreatedBy = SeedActor
			if err := q.CreateTouristPoint(ctx, *p); err != nil {
				return err
			}
		}

		start := now.AddDate(0, 1, 0).Truncate(24 * time.Hour)
		event := model.Event{
			ID:          NewID(),
			Title:       model.NewLocalized("Festival de Teatro de Curitiba", "Curitiba Theatre Festival", "Festival de Teatro de Curitiba"),
			Description: model.NewLocalized("Mostra anual de artes cênicas em palcos por toda a cidade.", "", ""),
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 10),
			Category:    "teatro",
			IsFeatured:  true,
			ImageURLs:   model.StringList{},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   SeedActor,
		}
		if err := q.CreateEvent(ctx, event); err != nil {
			return err
		}

		slog.Info("seeded sample content", "tourist_points", len(points), "events", 1)
		return nil
	})
}
