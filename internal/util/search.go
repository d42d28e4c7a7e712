// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher performs case-insensitive substring matching using Unicode case folding.
type Matcher struct {
	term   string
	folder cases.Caser
}

// NewMatcher prepares a matcher for term. An empty term matches everything.
func NewMatcher(term string) *Matcher {
	folder := cases.Fold()
	return &Matcher{term: folder.String(strings.TrimSpace(term)), folder: folder}
}

// Empty reports whether the matcher has no term.
func (m *Matcher) Empty() bool {
	return m.term == ""
}

// MatchAny reports whether any of values contains the term.
func (m *Matcher) MatchAny(values ...string) bool {
	if m.term == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(m.folder.String(v), m.term) {
			return true
		}
	}
	return false
}
