// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging keeps credentials out of anything shown or written. It
// masks bearer tokens, OAuth client secrets, query-string codes and card
// numbers in free-form text before that text reaches a log line or an error
// message on screen.
package logging

import (
	"regexp"
	"strings"
)

var (
	reBearer = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._-]+)`)
	reToken  = regexp.MustCompile(`(?i)((?:access_token|refresh_token|session_token|token|code)=)([^\s&;]+)`)
	reSecret = regexp.MustCompile(`(?i)(client_secret=)([^\s&;]+)`)
	// 13 to 19 digit runs, with optional space or dash groups, as they appear
	// in pasted card numbers.
	rePAN = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
)

// Mask replaces sensitive values in the input with "***". Card numbers keep
// their last four digits so the user can still tell cards apart.
func Mask(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reSecret.ReplaceAllString(out, "$1***")
	out = rePAN.ReplaceAllStringFunc(out, maskPAN)
	for _, k := range []string{"CARDLINE_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"} {
		out = maskEnvPair(out, k)
	}
	return out
}

func maskPAN(pan string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, pan)
	if len(digits) < 4 {
		return "****"
	}
	return "**** " + digits[len(digits)-4:]
}

func maskEnvPair(s, key string) string {
	idx := strings.Index(s, key+"=")
	if idx < 0 {
		return s
	}
	start := idx + len(key) + 1
	end := start
	for end < len(s) && s[end] != ' ' && s[end] != '\n' {
		end++
	}
	return s[:start] + "***" + s[end:]
}
