// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
	"github.com/olegiv/turismo-admin/internal/util"
)

// ContentService manages tourist points and events.
type ContentService struct {
	db      *sql.DB
	queries *store.Queries
	media   *MediaService
	logger  *slog.Logger
	now     func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(db *sql.DB, media *MediaService, logger *slog.Logger) *ContentService {
	return &ContentService{
		db:      db,
		queries: store.New(db),
		media:   media,
		logger:  logger,
		now:     time.Now,
	}
}

// listPage runs a listing. Without a search term the store pages the result.
// With one, the whole filtered set is read in order, matched against text,
// and paged afterwards, so the total is the number of matches. A zero Limit
// on the filter makes list return the whole filtered set.
func listPage[T any](
	ctx context.Context,
	p model.ListParams,
	list func(context.Context, store.ContentFilter) ([]T, error),
	count func(context.Context, store.ContentFilter) (int64, error),
	text func(T) []string,
) ([]T, model.Pagination, error) {
	p = p.Normalize()
	filter := store.ContentFilter{Category: p.Category, Active: p.Active}

	matcher := util.NewMatcher(p.Search)
	if matcher.Empty() {
		total, err := count(ctx, filter)
		if err != nil {
			return nil, model.Pagination{}, err
		}
		pg := model.NewPagination(p.Page, p.Limit, total)
		if int64(p.Offset()) >= total {
			return []T{}, pg, nil
		}
		filter.Limit = p.Limit
		filter.Offset = p.Offset()
		items, err := list(ctx, filter)
		if err != nil {
			return nil, model.Pagination{}, err
		}
		return items, pg, nil
	}

	all, err := list(ctx, filter)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	matched := make([]T, 0, len(all))
	for _, item := range all {
		if matcher.MatchAny(text(item)...) {
			matched = append(matched, item)
		}
	}

	total := int64(len(matched))
	start := min(p.Offset(), len(matched))
	end := min(start+p.Limit, len(matched))
	return matched[start:end], model.NewPagination(p.Page, p.Limit, total), nil
}

func touristPointText(tp model.TouristPoint) []string {
	return append(tp.Name.Values(), tp.Description.Values()...)
}

func eventText(e model.Event) []string {
	return append(e.Title.Values(), e.Description.Values()...)
}

// ListTouristPoints returns a page of tourist points, newest first.
func (s *ContentService) ListTouristPoints(ctx context.Context, p model.ListParams) ([]model.TouristPoint, model.Pagination, error) {
	return listPage(ctx, p, s.queries.ListTouristPoints, s.queries.CountTouristPoints, touristPointText)
}

// ListEvents returns a page of events, latest start date first.
func (s *ContentService) ListEvents(ctx context.Context, p model.ListParams) ([]model.Event, model.Pagination, error) {
	return listPage(ctx, p, s.queries.ListEvents, s.queries.CountEvents, eventText)
}

// GetTouristPoint returns a tourist point, including soft-deleted ones.
func (s *ContentService) GetTouristPoint(ctx context.Context, id string) (model.TouristPoint, error) {
	tp, err := s.queries.GetTouristPoint(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TouristPoint{}, ErrNotFound
	}
	return tp, err
}

// GetEvent returns an event.
func (s *ContentService) GetEvent(ctx context.Context, id string) (model.Event, error) {
	e, err := s.queries.GetEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// CreateTouristPoint validates the input, uploads the images and stores a new
// active tourist point.
func (s *ContentService) CreateTouristPoint(ctx context.Context, in TouristPointInput, files []UploadFile, actor string) (model.TouristPoint, error) {
	if in.Name.PT == "" || in.Description.PT == "" || in.Address.PT == "" ||
		in.Latitude == "" || in.Longitude == "" || in.Category == "" {
		return model.TouristPoint{}, validationError(MsgTouristPointRequired)
	}
	lat, lng, err := parseLatLng(in.Latitude, in.Longitude)
	if err != nil {
		return model.TouristPoint{}, err
	}
	var phone, website *string
	if in.Phone != nil {
		phone = optionalString(*in.Phone)
	}
	if in.Website != nil {
		website = optionalString(*in.Website)
	}
	if err := checkWebsite(website); err != nil {
		return model.TouristPoint{}, err
	}

	uploaded, err := s.media.Upload(ctx, files, model.FolderTouristPoints, actor)
	if err != nil {
		return model.TouristPoint{}, err
	}

	now := s.now().UTC()
	tp := model.TouristPoint{
		ID:          store.NewID(),
		Name:        model.NewLocalized(in.Name.PT, in.Name.EN, in.Name.ES),
		Description: model.NewLocalized(in.Description.PT, in.Description.EN, in.Description.ES),
		Address:     model.NewLocalized(in.Address.PT, in.Address.EN, in.Address.ES),
		Latitude:    lat,
		Longitude:   lng,
		Category:    in.Category,
		Phone:       phone,
		Website:     website,
		ImageURLs:   objectURLs(uploaded),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor,
	}
	if !in.OpeningHours.IsZero() {
		hours := in.OpeningHours
		tp.OpeningHours = &hours
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.CreateTouristPoint(ctx, tp); err != nil {
			return err
		}
		return Attach(ctx, q, uploaded, model.CollectionTouristPoints, tp.ID)
	})
	if err != nil {
		s.media.Discard(ctx, uploaded)
		return model.TouristPoint{}, fmt.Errorf("creating tourist point: %w", err)
	}
	return tp, nil
}

// UpdateTouristPoint merges the input into the stored tourist point. Fields
// left empty keep their current value and new images are appended. The merge
// runs in one transaction so concurrent appends are not lost.
func (s *ContentService) UpdateTouristPoint(ctx context.Context, id string, in TouristPointInput, files []UploadFile, actor string) (model.TouristPoint, error) {
	if _, err := s.GetTouristPoint(ctx, id); err != nil {
		return model.TouristPoint{}, err
	}

	var lat, lng *float64
	if in.Latitude != "" {
		v, ok := parseCoordinate(in.Latitude, 90)
		if !ok {
			return model.TouristPoint{}, validationError(MsgInvalidCoordinates)
		}
		lat = &v
	}
	if in.Longitude != "" {
		v, ok := parseCoordinate(in.Longitude, 180)
		if !ok {
			return model.TouristPoint{}, validationError(MsgInvalidCoordinates)
		}
		lng = &v
	}
	if in.Website != nil {
		if err := checkWebsite(optionalString(*in.Website)); err != nil {
			return model.TouristPoint{}, err
		}
	}

	uploaded, err := s.media.Upload(ctx, files, model.FolderTouristPoints, actor)
	if err != nil {
		return model.TouristPoint{}, err
	}

	var updated model.TouristPoint
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		now := s.now().UTC()
		// Take the write lock before reading so the merge sees the latest images.
		if err := q.TouchTouristPoint(ctx, id, now); err != nil {
			return err
		}
		current, err := q.GetTouristPoint(ctx, id)
		if err != nil {
			return err
		}
		updated = mergeTouristPoint(current, in, lat, lng, objectURLs(uploaded), actor, now)
		if err := q.UpdateTouristPoint(ctx, updated); err != nil {
			return err
		}
		return Attach(ctx, q, uploaded, model.CollectionTouristPoints, id)
	})
	if err != nil {
		s.media.Discard(ctx, uploaded)
		if errors.Is(err, sql.ErrNoRows) {
			return model.TouristPoint{}, ErrNotFound
		}
		return model.TouristPoint{}, fmt.Errorf("updating tourist point: %w", err)
	}
	return updated, nil
}

// mergeTouristPoint applies an update submission to the current record.
func mergeTouristPoint(cur model.TouristPoint, in TouristPointInput, lat, lng *float64, newImages model.StringList, actor string, now time.Time) model.TouristPoint {
	out := cur
	out.Name = mergeLocalized(cur.Name, in.Name)
	out.Description = mergeLocalized(cur.Description, in.Description)
	out.Address = mergeLocalized(cur.Address, in.Address)
	if lat != nil {
		out.Latitude = *lat
	}
	if lng != nil {
		out.Longitude = *lng
	}
	if in.Category != "" {
		out.Category = in.Category
	}
	if in.Phone != nil {
		out.Phone = optionalString(*in.Phone)
	}
	if in.Website != nil {
		out.Website = optionalString(*in.Website)
	}
	if !in.OpeningHours.IsZero() {
		var prev model.Localized
		if cur.OpeningHours != nil {
			prev = *cur.OpeningHours
		}
		out.OpeningHours = &model.Localized{
			PT: firstNonEmpty(in.OpeningHours.PT, prev.PT),
			EN: firstNonEmpty(in.OpeningHours.EN, prev.EN),
			ES: firstNonEmpty(in.OpeningHours.ES, prev.ES),
		}
	}
	if in.IsActive != nil {
		out.IsActive = *in.IsActive == "true"
	}

	images := make(model.StringList, 0, len(cur.ImageURLs)+len(newImages))
	images = append(images, cur.ImageURLs...)
	out.ImageURLs = append(images, newImages...)

	out.UpdatedAt = now
	out.UpdatedBy = &actor
	return out
}

// DeleteTouristPoint soft-deletes a tourist point. Its images are kept.
func (s *ContentService) DeleteTouristPoint(ctx context.Context, id, actor string) error {
	err := s.queries.SoftDeleteTouristPoint(ctx, id, actor, s.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateEvent validates the input, uploads the images and stores a new active event.
func (s *ContentService) CreateEvent(ctx context.Context, in EventInput, files []UploadFile, actor string) (model.Event, error) {
	if in.Title.PT == "" || in.Description.PT == "" || in.StartDate == "" || in.EndDate == "" || in.Category == "" {
		return model.Event{}, validationError(MsgEventRequired)
	}
	start, ok1 := parseEventDate(in.StartDate)
	end, ok2 := parseEventDate(in.EndDate)
	if !ok1 || !ok2 {
		return model.Event{}, validationError(MsgInvalidDates)
	}
	if end.Before(start) {
		return model.Event{}, validationError(MsgEndBeforeStart)
	}

	var lat, lng *float64
	if in.Latitude != "" {
		v, ok := parseCoordinate(in.Latitude, 90)
		if !ok {
			return model.Event{}, validationError(MsgInvalidCoordinates)
		}
		lat = &v
	}
	if in.Longitude != "" {
		v, ok := parseCoordinate(in.Longitude, 180)
		if !ok {
			return model.Event{}, validationError(MsgInvalidCoordinates)
		}
		lng = &v
	}
	if in.TicketURL != "" {
		if err := util.ValidateHTTPURL(in.TicketURL); err != nil {
			return model.Event{}, validationError(MsgInvalidTicketURL)
		}
	}

	uploaded, err := s.media.Upload(ctx, files, model.FolderEvents, actor)
	if err != nil {
		return model.Event{}, err
	}

	now := s.now().UTC()
	e := model.Event{
		ID:          store.NewID(),
		Title:       model.NewLocalized(in.Title.PT, in.Title.EN, in.Title.ES),
		Description: model.NewLocalized(in.Description.PT, in.Description.EN, in.Description.ES),
		StartDate:   start,
		EndDate:     end,
		Location:    optionalString(in.Location),
		Latitude:    lat,
		Longitude:   lng,
		Category:    in.Category,
		IsFeatured:  in.IsFeatured == "true",
		TicketURL:   optionalString(in.TicketURL),
		ImageURLs:   objectURLs(uploaded),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor,
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.CreateEvent(ctx, e); err != nil {
			return err
		}
		return Attach(ctx, q, uploaded, model.CollectionEvents, e.ID)
	})
	if err != nil {
		s.media.Discard(ctx, uploaded)
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return e, nil
}

// DeleteImage removes an image from storage and from the record that owns it.
func (s *ContentService) DeleteImage(ctx context.Context, imageURL string) (string, error) {
	return s.media.DeleteByURL(ctx, imageURL)
}

func checkWebsite(website *string) error {
	if website == nil {
		return nil
	}
	if err := util.ValidateHTTPURL(*website); err != nil {
		return validationError(MsgInvalidWebsite)
	}
	return nil
}
