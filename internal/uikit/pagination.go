// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/turismo-admin/internal/model"
)

// pageWindow is the number of page links around the current page.
const pageWindow = 5

// PageLinks is the navigation bar of a paginated dashboard list.
type PageLinks struct {
	model.Pagination
	Links []PageLink

	path  string
	query url.Values
}

// PageLink is one entry of the navigation bar. Gap entries render as "…".
type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

// NewPageLinks builds the navigation for p. Filters in query are kept in
// every link; the page parameter is replaced.
func NewPageLinks(p model.Pagination, path string, query url.Values) PageLinks {
	kept := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			kept[k] = v
		}
	}

	pl := PageLinks{Pagination: p, path: path, query: kept}
	for _, n := range pageNumbers(p.Page, pl.LastPage()) {
		if n == 0 {
			pl.Links = append(pl.Links, PageLink{Gap: true})
			continue
		}
		pl.Links = append(pl.Links, PageLink{Number: n, URL: pl.URL(n), Current: n == p.Page})
	}
	return pl
}

// LastPage is the number of the last page, at least 1.
func (p PageLinks) LastPage() int {
	return max(int(p.Pages), 1)
}

// URL returns the link to page n.
func (p PageLinks) URL(n int) string {
	q := make(url.Values, len(p.query)+1)
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return p.path + "?" + q.Encode()
}

// HasPrev reports whether a previous page exists.
func (p PageLinks) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageLinks) HasNext() bool { return p.Page < p.LastPage() }

// PrevURL returns the link to the previous page.
func (p PageLinks) PrevURL() string { return p.URL(p.Page - 1) }

// NextURL returns the link to the next page.
func (p PageLinks) NextURL() string { return p.URL(p.Page + 1) }

// Visible reports whether there is more than one page to navigate.
func (p PageLinks) Visible() bool { return p.Pages > 1 }

// Range describes the items on the current page, e.g. "11-20", or "0".
func (p PageLinks) Range() string {
	if p.Total == 0 || p.Limit <= 0 {
		return "0"
	}
	first := int64((p.Page-1)*p.Limit + 1)
	last := min(int64(p.Page*p.Limit), p.Total)
	if first > last {
		return "0"
	}
	return strconv.FormatInt(first, 10) + "-" + strconv.FormatInt(last, 10)
}

// pageNumbers returns the page numbers to link, with 0 marking a gap. The
// first and last pages are always present.
func pageNumbers(current, last int) []int {
	start := max(current-pageWindow/2, 1)
	end := start + pageWindow - 1
	if end > last {
		end = last
		start = max(end-pageWindow+1, 1)
	}

	var nums []int
	if start > 1 {
		nums = append(nums, 1)
		if start > 2 {
			nums = append(nums, 0)
		}
	}
	for i := start; i <= end; i++ {
		nums = append(nums, i)
	}
	if end < last {
		if end < last-1 {
			nums = append(nums, 0)
		}
		nums = append(nums, last)
	}
	return nums
}

// ParsePageParam parses the "page" query parameter from the request.
// Returns 1 if the parameter is missing, empty, or invalid.
func ParsePageParam(r *http.Request) int {
	return ParseIntParam(r, "page", model.DefaultPage, 1, model.MaxPage)
}

// ParseIntParam parses an integer query parameter from the request.
// Returns defaultVal if the parameter is missing, empty, or invalid.
// If minVal > 0, values below minVal return defaultVal.
// If maxVal > 0, values above maxVal are clamped to maxVal.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if minVal > 0 && val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return maxVal
	}
	return val
}
