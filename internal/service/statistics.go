// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

// StatisticsService computes the dashboard counters.
type StatisticsService struct {
	queries *store.Queries
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(db *sql.DB) *StatisticsService {
	return &StatisticsService{queries: store.New(db)}
}

// GetStatistics runs the four counts concurrently. The counts are not taken
// from a single snapshot.
func (s *StatisticsService) GetStatistics(ctx context.Context) (model.Statistics, error) {
	var stats model.Statistics
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.queries.CountActiveTouristPoints(ctx)
		if err != nil {
			return fmt.Errorf("counting tourist points: %w", err)
		}
		stats.TouristPoints = n
		return nil
	})
	g.Go(func() error {
		n, err := s.queries.CountActiveEvents(ctx)
		if err != nil {
			return fmt.Errorf("counting events: %w", err)
		}
		stats.Events = n
		return nil
	})
	g.Go(func() error {
		n, err := s.queries.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		stats.Users = n
		return nil
	})
	g.Go(func() error {
		n, err := s.queries.CountReviews(ctx)
		if err != nil {
			return fmt.Errorf("counting reviews: %w", err)
		}
		stats.Reviews = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Statistics{}, err
	}
	return stats, nil
}
