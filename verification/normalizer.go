// Package verification contains the medicine-name verification core: the name
// normalizer that turns noisy OCR lines into canonical lookup keys, and the
// resolver that reconciles canonical names against the reference catalog with a
// tiered matching strategy and a category-based alternatives fallback.
package verification

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxCanonicalLen bounds the canonical name length
const maxCanonicalLen = 100

// Pre-compiled patterns, applied in the documented order.
var (
	// Instruction boundary: everything from the first instruction keyword,
	// tablet-count marker (x20, x1x3) or duration (14 days) onward is dosage
	// instruction, not part of the name.
	instructionPattern = regexp.MustCompile(`(?i)\b(three|twice|once|take|daily|days|morning|evening|night)\b|\bx\d|\b\d+\s*days?\b`)

	// Parenthesized alternate names / brand clarifications
	parenthesesPattern = regexp.MustCompile(`\([^)]*\)`)

	// Dosage tokens: number + unit, optionally followed by a bare multiplier
	dosagePattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:mg|g|ml|mcg|iu|tabs?|tablets?|caps?|capsules?)\b(?:\s*x\d*)?`)

	// Anything outside the canonical charset becomes a space before collapsing
	charsetPattern    = regexp.MustCompile(`[^a-zA-Z0-9\s\-\+]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// asciiFold strips combining diacritical marks so accented brand names match
// their ASCII catalog spelling.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps one raw text line (OCR output or manual input) to a canonical
// candidate medicine name. It is pure and never fails: malformed input degrades
// to an empty string, which callers must treat as "no name extracted" and skip.
//
// The ordered rules:
//  1. truncate at the first comma or instruction-keyword boundary
//  2. remove parenthesized content
//  3. strip dosage tokens (number + unit, optional multiplier)
//  4. fold diacritics, restrict to letters/digits/space/hyphen/plus,
//     collapse whitespace, trim, cap at 100 characters
//  5. reject results that are purely numeric or shorter than 3 usable characters
func Normalize(raw string) string {
	line := raw

	// Rule 1: cut at the first comma or instruction boundary
	if idx := strings.Index(line, ","); idx != -1 {
		line = line[:idx]
	}
	if loc := instructionPattern.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}

	// Rule 2: parenthesized clarifications are not part of the canonical key
	line = parenthesesPattern.ReplaceAllString(line, " ")

	// Rule 3: dosage noise
	line = dosagePattern.ReplaceAllString(line, " ")

	// Rule 4: fold accents, restrict charset, collapse whitespace
	if folded, _, err := transform.String(asciiFold, line); err == nil {
		line = folded
	}
	line = charsetPattern.ReplaceAllString(line, " ")
	line = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))

	if len(line) > maxCanonicalLen {
		line = strings.TrimSpace(line[:maxCanonicalLen])
	}

	// Rule 5: reject lines with no usable name left
	if !hasUsableName(line) {
		return ""
	}

	return line
}

// BrandKey derives the short brand-name key from a canonical name: the first
// three whitespace-separated tokens longer than two characters. This is the
// secondary search view used by the resolver, not the canonical output.
func BrandKey(canonical string) string {
	var kept []string
	for _, token := range strings.Fields(canonical) {
		if len(token) > 2 {
			kept = append(kept, token)
			if len(kept) == 3 {
				break
			}
		}
	}
	return strings.Join(kept, " ")
}

// hasUsableName reports whether a cleaned line still carries a plausible name:
// at least 3 usable characters, at least one of them a letter.
func hasUsableName(line string) bool {
	usable := 0
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			usable++
		} else if unicode.IsDigit(r) {
			usable++
		}
	}
	return usable >= 3 && letters > 0
}
