package catalog

import (
	"context"
	"testing"
)

func newTestReader(medicines []MedicineRecord) *Reader {
	c := NewContainer()
	deduped, medicinesMap, barcodeMap := BuildIndexes(medicines)
	c.UpdateData(deduped, medicinesMap, barcodeMap)
	return NewReader(c)
}

func readerTestCatalog() []MedicineRecord {
	return []MedicineRecord{
		{ID: "M1", Name: "Panadol Extra", GenericName: "Paracetamol", Category: "Analgesic", Barcode: "11111111"},
		{ID: "M2", Name: "Brufen", GenericName: "Ibuprofen", Category: "Analgesic"},
		{ID: "M3", Name: "Amoxil", GenericName: "Amoxicillin", Category: "Antibiotic", Barcode: "22222222"},
	}
}

func TestSearchByField(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	testCases := []struct {
		name     string
		field    SearchField
		term     string
		expected []string
	}{
		{"Name substring", FieldName, "panadol", []string{"M1"}},
		{"Name case-insensitive", FieldName, "BRUFEN", []string{"M2"}},
		{"Generic name", FieldGenericName, "amoxicillin", []string{"M3"}},
		{"Category slice", FieldCategory, "analgesic", []string{"M1", "M2"}},
		{"No match", FieldName, "unknownium", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := reader.Search(context.Background(), tc.field, tc.term, 10)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(results) != len(tc.expected) {
				t.Fatalf("Expected %d results, got %d", len(tc.expected), len(results))
			}
			for i, id := range tc.expected {
				if results[i].ID != id {
					t.Errorf("Result %d: expected %s, got %s", i, id, results[i].ID)
				}
			}
		})
	}
}

func TestSearchEmptyTermMatchesNothing(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	results, err := reader.Search(context.Background(), FieldName, "   ", 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty term to match nothing, got %d results", len(results))
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	results, err := reader.Search(context.Background(), FieldCategory, "analgesic", 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected limit of 1 result, got %d", len(results))
	}
}

func TestSearchHonorsCancellation(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reader.Search(ctx, FieldName, "panadol", 10)
	if err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestSample(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	results, err := reader.Sample(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 sampled records, got %d", len(results))
	}

	// Asking for more than the catalog holds returns the whole catalog
	results, err = reader.Sample(context.Background(), 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 records, got %d", len(results))
	}
}

func TestFindByBarcode(t *testing.T) {
	reader := newTestReader(readerTestCatalog())

	med, found := reader.FindByBarcode("11111111")
	if !found {
		t.Fatal("Expected barcode 11111111 to be found")
	}
	if med.ID != "M1" {
		t.Errorf("Expected M1, got %s", med.ID)
	}

	// Surrounding whitespace is tolerated
	if _, found := reader.FindByBarcode(" 22222222 "); !found {
		t.Error("Expected trimmed barcode lookup to succeed")
	}

	if _, found := reader.FindByBarcode("99999999"); found {
		t.Error("Expected unknown barcode to not be found")
	}
}
