package catalog

import (
	"context"
	"strings"
)

// SearchField selects which catalog column a Search call matches against.
type SearchField string

const (
	FieldName        SearchField = "name"
	FieldGenericName SearchField = "generic_name"
	FieldCategory    SearchField = "category"
)

// Reader implements case-insensitive substring search over a Container snapshot.
// Each call operates on whatever snapshot is current; there is no locking because
// snapshots are immutable once swapped in.
type Reader struct {
	store *Container
}

// NewReader creates a Reader over the given container
func NewReader(store *Container) *Reader {
	return &Reader{store: store}
}

// Search returns up to limit records whose field contains term, case-insensitive,
// in catalog order. An empty term matches nothing rather than everything.
func (r *Reader) Search(ctx context.Context, field SearchField, term string, limit int) ([]MedicineRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return []MedicineRecord{}, nil
	}

	medicines := r.store.GetMedicines()
	results := make([]MedicineRecord, 0, limit)

	for i := range medicines {
		// Honor cancellation on large catalogs
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var haystack string
		switch field {
		case FieldName:
			haystack = medicines[i].Name
		case FieldGenericName:
			haystack = medicines[i].GenericName
		case FieldCategory:
			haystack = medicines[i].Category
		default:
			haystack = medicines[i].Name
		}

		if strings.Contains(strings.ToLower(haystack), term) {
			results = append(results, medicines[i])
			if len(results) >= limit {
				break
			}
		}
	}

	return results, nil
}

// Sample returns up to limit records from the head of the catalog
func (r *Reader) Sample(ctx context.Context, limit int) ([]MedicineRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []MedicineRecord{}, nil
	}

	medicines := r.store.GetMedicines()
	if limit > len(medicines) {
		limit = len(medicines)
	}

	results := make([]MedicineRecord, limit)
	copy(results, medicines[:limit])
	return results, nil
}

// FindByBarcode performs an exact barcode equality lookup
func (r *Reader) FindByBarcode(code string) (MedicineRecord, bool) {
	med, ok := r.store.GetBarcodeMap()[strings.TrimSpace(code)]
	return med, ok
}
