// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides the template helpers and pagination view models
// used by the admin panel templates.
package uikit

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MonthsPt contains Brazilian Portuguese month names.
var MonthsPt = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Display location for dates shown in the panel.
var displayLocation = loadLocation("America/Sao_Paulo")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// TemplateFuncs returns a template.FuncMap with pure helper functions.
//
// Callers can merge project-specific functions on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["myFunc"] = myProjectFunc
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// String functions
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"join":      strings.Join,
		"truncate":  Truncate,
		"contains": func(collection, element any) bool {
			if slice, ok := collection.([]string); ok {
				if elem, ok := element.(string); ok {
					for _, s := range slice {
						if s == elem {
							return true
						}
					}
				}
				return false
			}
			if s, ok := collection.(string); ok {
				if substr, ok := element.(string); ok {
					return strings.Contains(s, substr)
				}
			}
			return false
		},

		// Math
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		// Time
		"now":            time.Now,
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"formatDateLong": FormatDateLong,
		"formatDateAny": func(t any) string {
			return ApplyTimeFormatter(t, FormatDateTime)
		},
		"inputDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02T15:04")
		},

		// JSON
		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},
		"prettyJSON": func(s string) string {
			var data any
			if err := json.Unmarshal([]byte(s), &data); err != nil {
				return s
			}
			pretty, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return s
			}
			return string(pretty)
		},

		// Formatting
		"formatBytes":  FormatBytes,
		"formatNumber": FormatNumber,
		"formatCoord": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
		"formatRating": func(f float64) string {
			return strings.Replace(strconv.FormatFloat(f, 'f', 1, 64), ".", ",", 1)
		},

		// Pointers
		"derefString": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"derefFloat": func(p *float64) string {
			if p == nil {
				return ""
			}
			return strconv.FormatFloat(*p, 'f', -1, 64)
		},

		// Data structures
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to at most length runes, appending "..." when cut.
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:length]), " ") + "..."
}

// FormatDate formats a date as dd/mm/yyyy in the panel's time zone.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(displayLocation).Format("02/01/2006")
}

// FormatDateTime formats a timestamp as dd/mm/yyyy hh:mm in the panel's time zone.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(displayLocation).Format("02/01/2006 15:04")
}

// FormatDateLong formats a date as "15 de março de 2025".
func FormatDateLong(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(displayLocation)
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthsPt[t.Month()-1], t.Year())
}

// ApplyTimeFormatter applies a formatter to a time.Time or *time.Time.
// Returns an empty string for nil pointers or unsupported types.
func ApplyTimeFormatter(t any, formatter func(time.Time) string) string {
	switch v := t.(type) {
	case time.Time:
		return formatter(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatter(*v)
	default:
		return ""
	}
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatNumber groups thousands with dots, as in pt-BR.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune('.')
		}
		result.WriteRune(c)
	}
	return result.String()
}
