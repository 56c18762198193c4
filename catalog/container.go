package catalog

import (
	"sync/atomic"
	"time"

	"github.com/medverify/medverify-api/logging"
)

// Container holds the catalog with atomic pointers for zero-downtime updates.
// Readers always see either the previous or the new snapshot, never a mix.
type Container struct {
	medicines       atomic.Value // []MedicineRecord
	medicinesMap    atomic.Value // map[string]MedicineRecord, keyed by ID
	barcodeMap      atomic.Value // map[string]MedicineRecord, keyed by barcode
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a new Container with empty data
func NewContainer() *Container {
	c := &Container{}
	c.medicines.Store(make([]MedicineRecord, 0))
	c.medicinesMap.Store(make(map[string]MedicineRecord))
	c.barcodeMap.Store(make(map[string]MedicineRecord))
	c.lastUpdated.Store(time.Time{})
	// Construction time is the start-time default so uptime reads sanely
	// even if SetServerStartTime is never called
	c.serverStartTime.Store(time.Now())
	return c
}

// Thread-safe getters with type check

// GetMedicines returns the current catalog snapshot
func (c *Container) GetMedicines() []MedicineRecord {
	if v := c.medicines.Load(); v != nil {
		if medicines, ok := v.([]MedicineRecord); ok {
			return medicines
		}
	}

	logging.Warn("Medicine list is empty or invalid")
	return []MedicineRecord{}
}

// GetMedicinesMap returns the ID-keyed map for O(1) lookups
func (c *Container) GetMedicinesMap() map[string]MedicineRecord {
	if v := c.medicinesMap.Load(); v != nil {
		if medicinesMap, ok := v.(map[string]MedicineRecord); ok {
			return medicinesMap
		}
	}

	logging.Warn("MedicinesMap is empty or invalid")
	return make(map[string]MedicineRecord)
}

// GetBarcodeMap returns the barcode-keyed map for exact scan lookups
func (c *Container) GetBarcodeMap() map[string]MedicineRecord {
	if v := c.barcodeMap.Load(); v != nil {
		if barcodeMap, ok := v.(map[string]MedicineRecord); ok {
			return barcodeMap
		}
	}

	logging.Warn("BarcodeMap is empty or invalid")
	return make(map[string]MedicineRecord)
}

// GetLastUpdated returns the timestamp of the last catalog import
func (c *Container) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a catalog import is currently in progress
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// SetServerStartTime sets the server start time
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically swaps in a new catalog snapshot
func (c *Container) UpdateData(medicines []MedicineRecord,
	medicinesMap map[string]MedicineRecord, barcodeMap map[string]MedicineRecord) {

	// Atomic swap (zero downtime replacement)
	c.medicines.Store(medicines)
	c.medicinesMap.Store(medicinesMap)
	c.barcodeMap.Store(barcodeMap)
	c.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a catalog import.
// Returns true if the import can proceed, false if another import is in progress.
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a catalog import
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}

// BuildIndexes builds the ID and barcode maps for a catalog slice. Records are
// upserted by ID: a later record with a duplicate ID replaces the earlier one in
// both the maps and the returned slice, so re-imports never duplicate entries.
func BuildIndexes(medicines []MedicineRecord) ([]MedicineRecord, map[string]MedicineRecord, map[string]MedicineRecord) {
	deduped := make([]MedicineRecord, 0, len(medicines))
	medicinesMap := make(map[string]MedicineRecord, len(medicines))
	position := make(map[string]int, len(medicines))
	barcodeMap := make(map[string]MedicineRecord)

	for i := range medicines {
		med := medicines[i]
		med.Sanitize()
		if med.ID == "" {
			continue
		}

		if pos, seen := position[med.ID]; seen {
			deduped[pos] = med
		} else {
			position[med.ID] = len(deduped)
			deduped = append(deduped, med)
		}
		medicinesMap[med.ID] = med

		if med.Barcode != "" {
			barcodeMap[med.Barcode] = med
		}
	}

	return deduped, medicinesMap, barcodeMap
}
