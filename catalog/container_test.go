package catalog

import (
	"testing"
	"time"
)

func TestNewContainerStartsEmpty(t *testing.T) {
	c := NewContainer()

	if got := c.GetMedicines(); len(got) != 0 {
		t.Errorf("Expected empty catalog, got %d records", len(got))
	}
	if got := c.GetMedicinesMap(); len(got) != 0 {
		t.Errorf("Expected empty medicines map, got %d entries", len(got))
	}
	if got := c.GetBarcodeMap(); len(got) != 0 {
		t.Errorf("Expected empty barcode map, got %d entries", len(got))
	}
	if !c.GetLastUpdated().IsZero() {
		t.Error("Expected zero last-updated time on a fresh container")
	}
	if c.IsUpdating() {
		t.Error("Expected fresh container to not be updating")
	}
}

func TestUpdateDataSwapsSnapshot(t *testing.T) {
	c := NewContainer()

	medicines := []MedicineRecord{
		{ID: "M1", Name: "Panadol", Barcode: "12345678"},
		{ID: "M2", Name: "Brufen"},
	}
	deduped, medicinesMap, barcodeMap := BuildIndexes(medicines)

	before := time.Now()
	c.UpdateData(deduped, medicinesMap, barcodeMap)

	if got := c.GetMedicines(); len(got) != 2 {
		t.Errorf("Expected 2 records after update, got %d", len(got))
	}
	if _, ok := c.GetMedicinesMap()["M1"]; !ok {
		t.Error("Expected M1 in the medicines map")
	}
	if _, ok := c.GetBarcodeMap()["12345678"]; !ok {
		t.Error("Expected barcode 12345678 in the barcode map")
	}
	if c.GetLastUpdated().Before(before) {
		t.Error("Expected last-updated to advance on UpdateData")
	}
}

func TestBeginUpdateBlocksConcurrentImports(t *testing.T) {
	c := NewContainer()

	if !c.BeginUpdate() {
		t.Fatal("Expected first BeginUpdate to succeed")
	}
	if c.BeginUpdate() {
		t.Error("Expected second BeginUpdate to fail while an import is running")
	}
	if !c.IsUpdating() {
		t.Error("Expected IsUpdating true during an import")
	}

	c.EndUpdate()

	if c.IsUpdating() {
		t.Error("Expected IsUpdating false after EndUpdate")
	}
	if !c.BeginUpdate() {
		t.Error("Expected BeginUpdate to succeed after EndUpdate")
	}
	c.EndUpdate()
}

func TestServerStartTime(t *testing.T) {
	c := NewContainer()

	// Defaults to construction time, never the zero time
	defaulted := c.GetServerStartTime()
	if defaulted.IsZero() {
		t.Fatal("Expected a non-zero default server start time")
	}
	if time.Since(defaulted) > time.Minute {
		t.Errorf("Expected default start time near construction, got %v ago", time.Since(defaulted))
	}

	start := time.Now()
	c.SetServerStartTime(start)
	if !c.GetServerStartTime().Equal(start) {
		t.Error("Expected stored server start time to round-trip")
	}
}

func TestBuildIndexesUpsertsDuplicates(t *testing.T) {
	medicines := []MedicineRecord{
		{ID: "M1", Name: "Panadol", Barcode: "11111111"},
		{ID: "M2", Name: "Brufen"},
		{ID: "M1", Name: "Panadol Extra", Barcode: "22222222"},
	}

	deduped, medicinesMap, barcodeMap := BuildIndexes(medicines)

	if len(deduped) != 2 {
		t.Fatalf("Expected 2 deduplicated records, got %d", len(deduped))
	}

	// Later record wins, original position preserved
	if deduped[0].Name != "Panadol Extra" {
		t.Errorf("Expected upserted record at position 0, got %q", deduped[0].Name)
	}
	if deduped[1].ID != "M2" {
		t.Errorf("Expected M2 at position 1, got %q", deduped[1].ID)
	}

	if medicinesMap["M1"].Name != "Panadol Extra" {
		t.Errorf("Expected map entry to hold the later record, got %q", medicinesMap["M1"].Name)
	}

	// Both barcodes still resolve; the replaced record's barcode was never
	// removed by the upsert
	if len(barcodeMap) != 2 {
		t.Errorf("Expected 2 barcode entries, got %d", len(barcodeMap))
	}
}

func TestBuildIndexesDropsRecordsWithoutID(t *testing.T) {
	medicines := []MedicineRecord{
		{ID: "", Name: "Nameless"},
		{ID: "   ", Name: "Whitespace ID"},
		{ID: "M1", Name: "Panadol"},
	}

	deduped, medicinesMap, _ := BuildIndexes(medicines)

	if len(deduped) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(deduped))
	}
	if len(medicinesMap) != 1 {
		t.Errorf("Expected 1 map entry, got %d", len(medicinesMap))
	}
}

func TestBuildIndexesSanitizesRecords(t *testing.T) {
	medicines := []MedicineRecord{
		{ID: " M1 ", Name: "  Panadol  "},
	}

	deduped, _, _ := BuildIndexes(medicines)

	if len(deduped) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(deduped))
	}
	if deduped[0].ID != "M1" || deduped[0].Name != "Panadol" {
		t.Errorf("Expected trimmed fields, got ID %q Name %q", deduped[0].ID, deduped[0].Name)
	}
	if deduped[0].Strength == nil || deduped[0].SideEffects == nil || deduped[0].Alternatives == nil {
		t.Error("Expected nil slices replaced with empty slices")
	}
}
