// Package interfaces defines core abstractions for the medicine verification API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/medverify/medverify-api/catalog"
)

// CatalogStore defines the contract for catalog storage operations.
// It provides thread-safe access to the registered-medicines data
// with atomic operations for zero-downtime updates.
type CatalogStore interface {
	// Data retrieval methods
	GetMedicines() []catalog.MedicineRecord
	GetMedicinesMap() map[string]catalog.MedicineRecord
	GetBarcodeMap() map[string]catalog.MedicineRecord
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(medicines []catalog.MedicineRecord,
		medicinesMap map[string]catalog.MedicineRecord,
		barcodeMap map[string]catalog.MedicineRecord)
	BeginUpdate() bool
	EndUpdate()
}

// CatalogReader is the query surface the resolver depends on. Search performs a
// case-insensitive substring match of term against the given field, returning at
// most limit records in catalog order.
type CatalogReader interface {
	Search(ctx context.Context, field catalog.SearchField, term string, limit int) ([]catalog.MedicineRecord, error)

	// Sample returns up to limit records from the head of the catalog,
	// used as the general fallback when a category slice is empty.
	Sample(ctx context.Context, limit int) ([]catalog.MedicineRecord, error)

	// FindByBarcode performs an exact barcode equality lookup.
	FindByBarcode(code string) (catalog.MedicineRecord, bool)
}

// Importer defines the contract for loading the reference catalog from an
// external source (local JSON file or HTTP endpoint).
type Importer interface {
	ImportCatalog(ctx context.Context) ([]catalog.MedicineRecord, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated catalog refreshes and stale-data checks.
type Scheduler interface {
	Start() error
	Stop()
}

// Validator defines the contract for user-input validation.
type Validator interface {
	// ValidateSearchTerm validates free-text search input
	ValidateSearchTerm(input string) error

	// ValidateBarcode validates a scanned barcode and returns its canonical form
	ValidateBarcode(input string) (string, error)

	// ValidateImageData validates a base64 image data URL for OCR
	ValidateImageData(input string) error
}

// TextGateway is the OCR/LLM collaborator. Both calls are best-effort from the
// verification flow's point of view; the resolver itself never uses them.
type TextGateway interface {
	// ExtractText runs OCR over a prescription or package photo and returns
	// one medicine name per line.
	ExtractText(ctx context.Context, imageDataURL string) (string, error)

	// SuggestAlternatives produces a short explanation of why the given
	// same-category alternatives are reasonable substitutes.
	SuggestAlternatives(ctx context.Context, medicineName, category string, alternatives []catalog.MedicineRecord) (string, error)
}
