package verification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medverify/medverify-api/catalog"
)

// fakeReader is an in-memory CatalogReader with controllable failures
type fakeReader struct {
	medicines []catalog.MedicineRecord
	searchErr error
	failField catalog.SearchField // only fail lookups against this field
	sampleErr error
}

func (f *fakeReader) Search(ctx context.Context, field catalog.SearchField, term string, limit int) ([]catalog.MedicineRecord, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.failField != "" && field == f.failField {
		return nil, errors.New("lookup failed")
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return []catalog.MedicineRecord{}, nil
	}

	results := make([]catalog.MedicineRecord, 0, limit)
	for _, med := range f.medicines {
		var haystack string
		switch field {
		case catalog.FieldName:
			haystack = med.Name
		case catalog.FieldGenericName:
			haystack = med.GenericName
		case catalog.FieldCategory:
			haystack = med.Category
		}
		if strings.Contains(strings.ToLower(haystack), term) {
			results = append(results, med)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (f *fakeReader) Sample(ctx context.Context, limit int) ([]catalog.MedicineRecord, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	if limit > len(f.medicines) {
		limit = len(f.medicines)
	}
	return f.medicines[:limit], nil
}

func (f *fakeReader) FindByBarcode(code string) (catalog.MedicineRecord, bool) {
	for _, med := range f.medicines {
		if med.Barcode == code {
			return med, true
		}
	}
	return catalog.MedicineRecord{}, false
}

func testCatalog() []catalog.MedicineRecord {
	return []catalog.MedicineRecord{
		{ID: "M1", Name: "Panadol Extra", GenericName: "Paracetamol", Category: "Analgesic", WhoApproved: true},
		{ID: "M2", Name: "Panadol", GenericName: "Paracetamol", Category: "Analgesic", WhoApproved: true},
		{ID: "M3", Name: "Brufen", GenericName: "Ibuprofen", Category: "Analgesic", WhoApproved: false},
		{ID: "M4", Name: "Amoxil", GenericName: "Amoxicillin", Category: "Antibiotic", WhoApproved: true},
		{ID: "M5", Name: "Glucophage", GenericName: "Metformin", Category: "Antidiabetic", WhoApproved: false},
	}
}

func newTestResolver(reader *fakeReader) *Resolver {
	return NewResolver(reader, 500*time.Millisecond)
}

func TestResolveExactMatchWins(t *testing.T) {
	// "Panadol Extra" precedes "Panadol" in catalog order, but the exact
	// match must win over the longer prefix candidate
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	result, err := resolver.Resolve(context.Background(), "panadol", "Panadol 500mg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeMatched {
		t.Fatalf("Expected outcome matched, got %s", result.Outcome)
	}
	if result.Record == nil || result.Record.ID != "M2" {
		t.Errorf("Expected exact match M2 (Panadol), got %+v", result.Record)
	}
	if result.SafetyScore != 95 {
		t.Errorf("Expected safety score 95 for WHO-approved match, got %d", result.SafetyScore)
	}
}

func TestResolveGenericNameExactMatch(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	result, err := resolver.Resolve(context.Background(), "ibuprofen", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeMatched {
		t.Fatalf("Expected outcome matched, got %s", result.Outcome)
	}
	if result.Record.ID != "M3" {
		t.Errorf("Expected generic-name match M3 (Brufen), got %s", result.Record.ID)
	}
	if result.SafetyScore != 75 {
		t.Errorf("Expected safety score 75 for non-WHO match, got %d", result.SafetyScore)
	}
}

func TestResolvePrefixMatch(t *testing.T) {
	medicines := []catalog.MedicineRecord{
		{ID: "M1", Name: "Panadol Extra", GenericName: "Paracetamol", Category: "Analgesic", WhoApproved: true},
	}
	resolver := newTestResolver(&fakeReader{medicines: medicines})

	result, err := resolver.Resolve(context.Background(), "panadol", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeMatched {
		t.Fatalf("Expected outcome matched, got %s", result.Outcome)
	}
	if result.Record.ID != "M1" {
		t.Errorf("Expected prefix match M1 (Panadol Extra), got %s", result.Record.ID)
	}
}

func TestResolveContainmentScoring(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	// Neither an exact nor a first-token match; "amoxicillin" is contained in
	// the query so Amoxil scores through containment
	result, err := resolver.Resolve(context.Background(), "amoxicillin trihydrate", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeMatched {
		t.Fatalf("Expected outcome matched, got %s", result.Outcome)
	}
	if result.Record.ID != "M4" {
		t.Errorf("Expected containment match M4 (Amoxil), got %s", result.Record.ID)
	}
}

func TestResolveNotFoundInfersCategory(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	result, err := resolver.Resolve(context.Background(), "unknownium", "Unknownium for pain 500mg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeNotFound {
		t.Fatalf("Expected outcome not_found, got %s", result.Outcome)
	}
	if result.Record != nil {
		t.Error("Expected no record on a not_found outcome")
	}
	if result.InferredCategory != "Analgesic" {
		t.Errorf("Expected inferred category Analgesic from raw context, got %q", result.InferredCategory)
	}

	if len(result.Alternatives) == 0 || len(result.Alternatives) > 3 {
		t.Fatalf("Expected 1 to 3 alternatives, got %d", len(result.Alternatives))
	}
	for _, alt := range result.Alternatives {
		if alt.Record.Category != "Analgesic" {
			t.Errorf("Expected same-category alternative, got category %q", alt.Record.Category)
		}
		if alt.SafetyScore != 95 && alt.SafetyScore != 75 {
			t.Errorf("Expected safety score 95 or 75, got %d", alt.SafetyScore)
		}
	}
}

func TestResolveNotFoundFallsBackToSample(t *testing.T) {
	// No record matches the inferred category, so alternatives come from the
	// general sample
	medicines := []catalog.MedicineRecord{
		{ID: "M1", Name: "Glucophage", GenericName: "Metformin", Category: "Antidiabetic"},
		{ID: "M2", Name: "Amoxil", GenericName: "Amoxicillin", Category: "Antibiotic"},
	}
	resolver := newTestResolver(&fakeReader{medicines: medicines})

	result, err := resolver.Resolve(context.Background(), "unknownium", "unknownium")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Outcome != OutcomeNotFound {
		t.Fatalf("Expected outcome not_found, got %s", result.Outcome)
	}
	if result.InferredCategory != DefaultCategory {
		t.Errorf("Expected default category, got %q", result.InferredCategory)
	}
	if len(result.Alternatives) != 2 {
		t.Errorf("Expected 2 sampled alternatives, got %d", len(result.Alternatives))
	}
}

func TestResolveCatalogUnavailable(t *testing.T) {
	resolver := newTestResolver(&fakeReader{searchErr: errors.New("store down")})

	_, err := resolver.Resolve(context.Background(), "panadol", "")
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Expected ErrCatalogUnavailable when every lookup fails, got %v", err)
	}
}

func TestResolveToleratesPartialFailure(t *testing.T) {
	// Generic-name lookups fail but name lookups succeed; the match must
	// still be found
	resolver := newTestResolver(&fakeReader{
		medicines: testCatalog(),
		failField: catalog.FieldGenericName,
	})

	result, err := resolver.Resolve(context.Background(), "panadol", "")
	if err != nil {
		t.Fatalf("Expected partial failure to be tolerated, got %v", err)
	}
	if result.Outcome != OutcomeMatched {
		t.Errorf("Expected outcome matched, got %s", result.Outcome)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	_, err := resolver.Resolve(context.Background(), "   ", "")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Expected ErrEmptyQuery, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	first, err := resolver.Resolve(context.Background(), "panadol", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := resolver.Resolve(context.Background(), "panadol", "")
		if err != nil {
			t.Fatalf("Expected no error on run %d, got %v", i, err)
		}
		if again.Record.ID != first.Record.ID {
			t.Fatalf("Expected deterministic selection, run %d picked %s instead of %s",
				i, again.Record.ID, first.Record.ID)
		}
	}
}

func TestNormalizeThenResolve(t *testing.T) {
	resolver := newTestResolver(&fakeReader{medicines: testCatalog()})

	raw := "Brufen 400mg x1x3"
	canonical := Normalize(raw)
	if canonical != "Brufen" {
		t.Fatalf("Expected canonical 'Brufen', got %q", canonical)
	}

	result, err := resolver.Resolve(context.Background(), canonical, raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Outcome != OutcomeMatched || result.Record.ID != "M3" {
		t.Errorf("Expected end-to-end match on M3, got outcome %s record %+v", result.Outcome, result.Record)
	}
	if result.SafetyScore != 75 {
		t.Errorf("Expected safety score 75, got %d", result.SafetyScore)
	}
}

func TestSafetyScore(t *testing.T) {
	approved := catalog.MedicineRecord{ID: "A", WhoApproved: true}
	registered := catalog.MedicineRecord{ID: "B", WhoApproved: false}

	if got := SafetyScore(approved); got != 95 {
		t.Errorf("Expected 95 for WHO-approved record, got %d", got)
	}
	if got := SafetyScore(registered); got != 75 {
		t.Errorf("Expected 75 for registered record, got %d", got)
	}
}

func TestDeriveSearchTerms(t *testing.T) {
	testCases := []struct {
		name      string
		canonical string
		expected  []string
	}{
		{"Single token", "panadol", []string{"panadol"}},
		{"Two tokens", "panadol extra", []string{"panadol extra", "panadol", "extra"}},
		{"Brand key second", "arinac forte cold flu", []string{"arinac forte cold flu", "arinac forte cold", "arinac"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveSearchTerms(tc.canonical)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %d terms, got %d: %v", len(tc.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("Term %d: expected %q, got %q", i, tc.expected[i], got[i])
				}
			}
		})
	}
}
