// Copyright (c) 2026 Worklane. All rights reserved.

// Package normalize canonicalizes user-supplied identifiers into a stable
// ASCII form.
//
// # Usage
//
// Usernames are normalized once at registration so that "José" and "jose"
// resolve to the same unique handle. The canonical form is what the unique
// index in PostgreSQL is built on.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Username converts an arbitrary Unicode handle into its canonical ASCII form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Drops anything outside [a-z0-9._-].
// 5. Trims leading/trailing separators.
func Username(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Keep only the allowed handle alphabet
	var builder strings.Builder
	builder.Grow(len(result))
	for _, r := range result {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			builder.WriteRune(r)
		}
	}

	// 4. Trim separators left at the edges
	return strings.Trim(builder.String(), "._-")
}

// Email lowercases the domain part of an address while preserving the local
// part as given. Addresses are stored case-sensitive (local part), but domain
// comparison is case-insensitive per RFC 5321.
func Email(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return s
	}
	return s[:at+1] + strings.ToLower(s[at+1:])
}
