// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by the service layer: object
// names for uploads, path containment checks, URL checks and search matching.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches anything outside the slug alphabet.
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches runs of hyphens.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxObjectNameLen bounds the readable part of an object name.
const maxObjectNameLen = 80

// Slugify converts a string to a lowercase ASCII slug.
// Accents are stripped and other scripts are transliterated.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = strings.ReplaceAll(result, "_", "-")
	result = slugRegex.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ObjectName turns an uploaded file's original name into a safe object name:
// directory parts dropped, base slugified, extension lower-cased.
func ObjectName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := filepath.Ext(base)
	name := Slugify(strings.TrimSuffix(base, ext))
	if len(name) > maxObjectNameLen {
		name = strings.Trim(name[:maxObjectNameLen], "-")
	}
	if name == "" {
		name = "image"
	}
	return name + strings.ToLower(ext)
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
