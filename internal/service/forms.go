// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/turismo-admin/internal/model"
)

// textPolicy strips all markup from free-text fields.
var textPolicy = bluemonday.StrictPolicy()

// TouristPointInput carries the submitted tourist point fields as typed by the
// admin. Localized values are raw: no fallback to pt has been applied yet.
// Nil pointers mark fields absent from the submission.
type TouristPointInput struct {
	Name         model.Localized
	Description  model.Localized
	Address      model.Localized
	OpeningHours model.Localized
	Latitude     string
	Longitude    string
	Category     string
	Phone        *string
	Website      *string
	IsActive     *string
}

// EventInput carries the submitted event fields.
type EventInput struct {
	Title       model.Localized
	Description model.Localized
	StartDate   string
	EndDate     string
	Location    string
	Latitude    string
	Longitude   string
	Category    string
	IsFeatured  string
	TicketURL   string
}

// ParseTouristPointForm reads a tourist point submission.
func ParseTouristPointForm(form url.Values) TouristPointInput {
	return TouristPointInput{
		Name:         localizedField(form, "name"),
		Description:  localizedField(form, "description"),
		Address:      localizedField(form, "address"),
		OpeningHours: localizedField(form, "opening_hours"),
		Latitude:     strings.TrimSpace(form.Get("latitude")),
		Longitude:    strings.TrimSpace(form.Get("longitude")),
		Category:     strings.TrimSpace(form.Get("category")),
		Phone:        presentField(form, "phone"),
		Website:      presentField(form, "website"),
		IsActive:     presentField(form, "isActive"),
	}
}

// ParseEventForm reads an event submission.
func ParseEventForm(form url.Values) EventInput {
	return EventInput{
		Title:       localizedField(form, "title"),
		Description: localizedField(form, "description"),
		StartDate:   strings.TrimSpace(form.Get("startDate")),
		EndDate:     strings.TrimSpace(form.Get("endDate")),
		Location:    plainText(form.Get("location")),
		Latitude:    strings.TrimSpace(form.Get("latitude")),
		Longitude:   strings.TrimSpace(form.Get("longitude")),
		Category:    strings.TrimSpace(form.Get("category")),
		IsFeatured:  form.Get("isFeatured"),
		TicketURL:   strings.TrimSpace(form.Get("ticketUrl")),
	}
}

func localizedField(form url.Values, prefix string) model.Localized {
	return model.Localized{
		PT: plainText(form.Get(prefix + "_pt")),
		EN: plainText(form.Get(prefix + "_en")),
		ES: plainText(form.Get(prefix + "_es")),
	}
}

// plainText removes HTML tags, keeping the text as typed.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func presentField(form url.Values, key string) *string {
	if _, ok := form[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(form.Get(key))
	return &v
}

// parseCoordinate parses a coordinate and checks it against limit.
func parseCoordinate(raw string, limit float64) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < -limit || f > limit {
		return 0, false
	}
	return f, true
}

func parseLatLng(lat, lng string) (float64, float64, error) {
	la, ok1 := parseCoordinate(lat, 90)
	lo, ok2 := parseCoordinate(lng, 180)
	if !ok1 || !ok2 {
		return 0, 0, validationError(MsgInvalidCoordinates)
	}
	return la, lo, nil
}

// eventDateLayouts are the accepted event date formats: RFC 3339, the HTML
// datetime-local value and a plain date.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseEventDate parses an event date. Values without a zone are read as UTC.
func parseEventDate(raw string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// mergeLocalized applies the update rule: a submitted value wins, then the
// current value, then the submitted pt value.
func mergeLocalized(cur, in model.Localized) model.Localized {
	return model.Localized{
		PT: firstNonEmpty(in.PT, cur.PT),
		EN: firstNonEmpty(in.EN, cur.EN, in.PT),
		ES: firstNonEmpty(in.ES, cur.ES, in.PT),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
