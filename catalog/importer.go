package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medverify/medverify-api/logging"
)

// importBatchSize controls progress-log granularity during bulk imports
const importBatchSize = 100

// importFile is the on-disk layout of the registry export
type importFile struct {
	Medicines []MedicineRecord `json:"medicines"`
}

// Importer loads the reference catalog from a JSON source, either a local file
// path or an http(s) URL pointing at a registry export.
type Importer struct {
	source string
	client *http.Client
}

// NewImporter creates an importer for the given source
func NewImporter(source string) *Importer {
	return &Importer{
		source: source,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ImportCatalog reads and parses the full catalog from the configured source.
// Records without an ID are dropped; duplicate IDs are upserted (last wins).
func (imp *Importer) ImportCatalog(ctx context.Context) ([]MedicineRecord, error) {
	raw, err := imp.readSource(ctx)
	if err != nil {
		return nil, err
	}

	var parsed importFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog source %s: %w", imp.source, err)
	}

	if len(parsed.Medicines) == 0 {
		return nil, fmt.Errorf("catalog source %s contains no medicines", imp.source)
	}

	imported := make([]MedicineRecord, 0, len(parsed.Medicines))
	dropped := 0

	for i := range parsed.Medicines {
		med := parsed.Medicines[i]
		med.Sanitize()
		if med.ID == "" {
			dropped++
			continue
		}
		imported = append(imported, med)

		if len(imported)%importBatchSize == 0 {
			logging.Debug("Catalog import progress", "imported", len(imported), "total", len(parsed.Medicines))
		}
	}

	if dropped > 0 {
		logging.Warn("Dropped catalog records without an ID", "count", dropped)
	}

	logging.Info("Catalog import parsed", "source", imp.source, "medicine_count", len(imported))
	return imported, nil
}

// readSource fetches the raw bytes from a URL or local file
func (imp *Importer) readSource(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(imp.source, "http://") || strings.HasPrefix(imp.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imp.source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog request: %w", err)
		}

		resp, err := imp.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download catalog from %s: %w", imp.source, err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logging.Warn("Failed to close catalog response body", "error", err)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog download returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog response: %w", err)
		}
		return body, nil
	}

	cleanPath := filepath.Clean(imp.source)
	body, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", cleanPath, err)
	}
	return body, nil
}
