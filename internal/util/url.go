// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"net/url"
)

// MaxURLLength is the maximum accepted length for website and ticket URLs.
const MaxURLLength = 2048

// ValidateHTTPURL checks that rawURL is an absolute http or https URL with a host.
func ValidateHTTPURL(rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	if parsed.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	return nil
}
