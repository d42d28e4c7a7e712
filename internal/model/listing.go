// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "math"

// Listing defaults. MaxPage keeps Offset from overflowing at MaxLimit.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = math.MaxInt / MaxLimit
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// ListParams are the filters and paging options of a content listing.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Active   *bool
	Search   string
}

// Normalize applies defaults and bounds to the paging fields.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Category == CategoryAll {
		p.Category = ""
	}
	return p
}

// Offset returns the number of records to skip. It is never negative.
func (p ListParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes page metadata; Pages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Statistics are the dashboard counters.
type Statistics struct {
	TouristPoints int64 `json:"touristPoints"`
	Events        int64 `json:"events"`
	Users         int64 `json:"users"`
	Reviews       int64 `json:"reviews"`
}
