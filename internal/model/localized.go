// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Supported content languages. Portuguese is the primary language.
const (
	LangPT = "pt"
	LangEN = "en"
	LangES = "es"
)

// Languages lists the content languages in display order.
var Languages = []string{LangPT, LangEN, LangES}

// Localized holds a text value per content language.
type Localized struct {
	PT string `json:"pt"`
	EN string `json:"en"`
	ES string `json:"es"`
}

// NewLocalized builds a Localized value where missing en/es fall back to pt.
func NewLocalized(pt, en, es string) Localized {
	l := Localized{PT: pt, EN: en, ES: es}
	if l.EN == "" {
		l.EN = pt
	}
	if l.ES == "" {
		l.ES = pt
	}
	return l
}

// Get returns the value for lang, or the Portuguese value for unknown languages.
func (l Localized) Get(lang string) string {
	switch lang {
	case LangEN:
		return l.EN
	case LangES:
		return l.ES
	default:
		return l.PT
	}
}

// Values returns all language variants in display order.
func (l Localized) Values() []string {
	return []string{l.PT, l.EN, l.ES}
}

// IsZero reports whether every language is empty.
func (l Localized) IsZero() bool {
	return l.PT == "" && l.EN == "" && l.ES == ""
}

// Value implements driver.Valuer, storing the value as a JSON object.
func (l Localized) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON text columns.
func (l *Localized) Scan(src any) error {
	return scanJSON(src, l)
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src any) error {
	if err := scanJSON(src, (*[]string)(s)); err != nil {
		return err
	}
	if *s == nil {
		*s = StringList{}
	}
	return nil
}

// Contains reports whether v is in the list.
func (s StringList) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of v removed.
func (s StringList) Without(v string) StringList {
	out := make(StringList, 0, len(s))
	for _, item := range s {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported type %T for JSON column", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
