// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Package textfold normalizes Unicode strings for accent-insensitive matching.
//
// # Usage
//
// The convocatoria and solicitud list filters compare user search terms against
// Spanish-language names and descriptions. Folding both sides lets "diseno"
// match "Diseño" and "PATENTE" match "patente".
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder decomposes accented characters and strips the combining marks.
// Built once; Transformers are safe for concurrent use via transform.String.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritical marks (é → e, ñ → n).
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Recomposes to NFC and lowercases.
func Fold(s string) string {
	folded, _, err := transform.String(folder, s)
	if err != nil {
		// Malformed UTF-8 input: fall back to plain lowercasing.
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// ContainsFold reports whether the folded form of s contains the folded form
// of substr.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}
