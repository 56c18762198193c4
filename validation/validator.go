// Package validation provides user-input validation for the verification API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medverify/medverify-api/interfaces"
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Search input: alphanumeric + safe punctuation
	searchRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.,\+'()/]+$`)

	// Barcodes: EAN-8 through EAN-14 style numeric codes
	barcodeRegex = regexp.MustCompile(`^\d{8,14}$`)

	// Image payloads must be base64 data URLs of a supported format
	imageDataRegex = regexp.MustCompile(`^data:image/(jpeg|jpg|png|webp);base64,`)

	// Dangerous patterns as plain substrings; strings.Contains is much faster
	// than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

// maxImageBytes bounds decoded OCR uploads at 10MB
const maxImageBytes = 10 * 1024 * 1024

// Compile-time check to ensure InputValidator implements Validator
var _ interfaces.Validator = (*InputValidator)(nil)

// InputValidator implements the interfaces.Validator interface
type InputValidator struct{}

// NewValidator creates a new input validator
func NewValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateSearchTerm validates free-text search input
func (v *InputValidator) ValidateSearchTerm(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 200 {
		return fmt.Errorf("input too long: maximum 200 characters")
	}

	// Word count bound prevents DoS with many short tokens
	words := strings.Fields(input)
	if len(words) > 20 {
		return fmt.Errorf("search query too complex: maximum 20 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !searchRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, commas, parentheses, slashes and plus sign are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateBarcode validates a scanned barcode and returns its canonical form.
// Barcodes are numeric identifiers 8 to 14 digits long.
func (v *InputValidator) ValidateBarcode(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("barcode cannot be empty")
	}

	if !barcodeRegex.MatchString(trimmed) {
		return "", fmt.Errorf("barcode must be 8 to 14 digits")
	}

	return trimmed, nil
}

// ValidateImageData validates a base64 image data URL for OCR
func (v *InputValidator) ValidateImageData(input string) error {
	if input == "" {
		return fmt.Errorf("image data is required")
	}

	if !imageDataRegex.MatchString(input) {
		return fmt.Errorf("invalid image format, upload JPEG, PNG, or WebP")
	}

	// base64 expands data by 4/3, so decoded size is roughly len*3/4
	estimatedSize := (len(input) * 3) / 4
	if estimatedSize > maxImageBytes {
		return fmt.Errorf("image too large, maximum size is 10MB")
	}

	return nil
}

// hasExcessiveRepetition checks for DoS patterns with long runs of one character
func hasExcessiveRepetition(input string) bool {
	// Same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
