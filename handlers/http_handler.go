// Package handlers provides HTTP request handlers for the verification API
// endpoints. It includes handlers for name and barcode verification, OCR-based
// prescription checks, catalog search and pagination, health checks, and
// response formatting with proper input validation and error handling.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/health"
	"github.com/medverify/medverify-api/interfaces"
	"github.com/medverify/medverify-api/logging"
	"github.com/medverify/medverify-api/metrics"
	"github.com/medverify/medverify-api/verification"
)

// maxOCRLines bounds how many extracted lines one OCR request may verify
const maxOCRLines = 20

// searchResultLimit bounds plain catalog searches
const searchResultLimit = 50

// Handler implements the HTTP endpoints with injected dependencies
type Handler struct {
	store     interfaces.CatalogStore
	reader    interfaces.CatalogReader
	resolver  *verification.Resolver
	gateway   interfaces.TextGateway // nil when no gateway key is configured
	validator interfaces.Validator
	checker   *health.HealthChecker
}

// NewHandler creates a new HTTP handler with injected dependencies
func NewHandler(store interfaces.CatalogStore, reader interfaces.CatalogReader,
	resolver *verification.Resolver, gw interfaces.TextGateway,
	validator interfaces.Validator) *Handler {

	return &Handler{
		store:     store,
		reader:    reader,
		resolver:  resolver,
		gateway:   gw,
		validator: validator,
		checker:   health.NewHealthChecker(store),
	}
}

// RespondWithJSON writes a JSON response
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

type verifyRequest struct {
	MedicineName string `json:"medicineName"`
}

type verifyResponse struct {
	Found      bool                 `json:"found"`
	Verified   bool                 `json:"verified"`
	Message    string               `json:"message,omitempty"`
	Attempt    verification.Attempt `json:"attempt"`
	AIAnalysis string               `json:"ai_analysis,omitempty"`
}

// VerifyMedicine normalizes one free-text medicine name and resolves it
// against the catalog. A catalog failure answers 503, never "not found".
func (h *Handler) VerifyMedicine(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.MedicineName) == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Medicine name is required")
		return
	}

	if err := h.validator.ValidateSearchTerm(req.MedicineName); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	canonical := verification.Normalize(req.MedicineName)
	if canonical == "" {
		metrics.VerificationTotals.WithLabelValues("skipped").Inc()
		h.RespondWithError(w, http.StatusUnprocessableEntity, "No usable medicine name could be extracted from the input")
		return
	}

	resp, code, err := h.verifyOne(r.Context(), req.MedicineName, canonical)
	if err != nil {
		h.RespondWithError(w, code, err.Error())
		return
	}
	h.RespondWithJSON(w, code, resp)
}

// verifyOne runs the resolve flow for one canonical name and builds the
// response payload shared by the single-name and OCR endpoints.
func (h *Handler) verifyOne(ctx context.Context, rawQuery, canonical string) (*verifyResponse, int, error) {
	lookupStart := time.Now()
	result, err := h.resolver.Resolve(ctx, canonical, rawQuery)
	metrics.CatalogLookupDuration.Observe(time.Since(lookupStart).Seconds())

	if err != nil {
		metrics.VerificationTotals.WithLabelValues("failed").Inc()
		if errors.Is(err, verification.ErrCatalogUnavailable) {
			logging.Error("Catalog unavailable during verification", "query", rawQuery)
			return nil, http.StatusServiceUnavailable, errors.New("verification is temporarily unavailable, please retry")
		}
		return nil, http.StatusInternalServerError, err
	}

	attempt := verification.NewAttempt(rawQuery, canonical, result)

	if result.Outcome == verification.OutcomeMatched {
		metrics.VerificationTotals.WithLabelValues("matched").Inc()
		return &verifyResponse{
			Found:    true,
			Verified: true,
			Attempt:  attempt,
		}, http.StatusOK, nil
	}

	metrics.VerificationTotals.WithLabelValues("not_found").Inc()

	resp := &verifyResponse{
		Found:    false,
		Verified: false,
		Message:  "Medicine not found in the registered-medicines database",
		Attempt:  attempt,
	}

	// The suggestion explanation is best-effort: a gateway failure never
	// degrades the verification outcome itself.
	if h.gateway != nil && len(result.Alternatives) > 0 {
		records := make([]catalog.MedicineRecord, 0, len(result.Alternatives))
		for _, alt := range result.Alternatives {
			records = append(records, alt.Record)
		}

		analysis, err := h.gateway.SuggestAlternatives(ctx, canonical, result.InferredCategory, records)
		if err != nil {
			logging.Warn("Alternative-suggestion call failed", "error", err, "query", rawQuery)
		} else {
			resp.AIAnalysis = analysis
		}
	}

	return resp, http.StatusOK, nil
}

type ocrRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type ocrResponse struct {
	ExtractedText string           `json:"extracted_text"`
	Results       []verifyResponse `json:"results"`
	SkippedLines  int              `json:"skipped_lines"`
}

// VerifyFromImage extracts medicine names from a prescription or package
// photo via the OCR gateway and verifies every extracted line.
func (h *Handler) VerifyFromImage(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "OCR service is not configured")
		return
	}

	var req ocrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateImageData(req.ImageBase64); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	extracted, err := h.gateway.ExtractText(r.Context(), req.ImageBase64)
	if err != nil {
		logging.Error("OCR extraction failed", "error", err)
		h.RespondWithError(w, http.StatusBadGateway, "Unable to process image, please try again")
		return
	}

	results := make([]verifyResponse, 0)
	skipped := 0

	lines := strings.Split(extracted, "\n")
	if len(lines) > maxOCRLines {
		lines = lines[:maxOCRLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		canonical := verification.Normalize(line)
		if canonical == "" {
			// Purely numeric or instruction-only lines carry no name
			metrics.VerificationTotals.WithLabelValues("skipped").Inc()
			skipped++
			continue
		}

		resp, code, err := h.verifyOne(r.Context(), line, canonical)
		if err != nil {
			if code == http.StatusServiceUnavailable {
				h.RespondWithError(w, code, err.Error())
				return
			}
			logging.Warn("Line verification failed", "line", line, "error", err)
			skipped++
			continue
		}
		results = append(results, *resp)
	}

	h.RespondWithJSON(w, http.StatusOK, ocrResponse{
		ExtractedText: extracted,
		Results:       results,
		SkippedLines:  skipped,
	})
}

// FindMedicine searches for medicines by name or generic name
func (h *Handler) FindMedicine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	if err := h.validator.ValidateSearchTerm(name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	byName, err := h.reader.Search(r.Context(), catalog.FieldName, name, searchResultLimit)
	if err != nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog search failed")
		return
	}
	byGeneric, err := h.reader.Search(r.Context(), catalog.FieldGenericName, name, searchResultLimit)
	if err != nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog search failed")
		return
	}

	seen := make(map[string]bool, len(byName))
	results := make([]catalog.MedicineRecord, 0, len(byName)+len(byGeneric))
	for _, med := range append(byName, byGeneric...) {
		if seen[med.ID] {
			continue
		}
		seen[med.ID] = true
		results = append(results, med)
	}

	// Always return 200 with results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, results)
}

// FindMedicineByID finds a medicine by its catalog ID
func (h *Handler) FindMedicineByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing medicine ID")
		return
	}

	med, exists := h.store.GetMedicinesMap()[id]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Medicine not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, med)
}

type barcodeResponse struct {
	Status   string                  `json:"status"`
	Message  string                  `json:"message"`
	Medicine *catalog.MedicineRecord `json:"medicine,omitempty"`
}

// FindMedicineByBarcode performs an exact barcode lookup. A missing barcode is
// a counterfeit signal, not an error, so it answers 404 with a warning body.
func (h *Handler) FindMedicineByBarcode(w http.ResponseWriter, r *http.Request) {
	code, err := h.validator.ValidateBarcode(chi.URLParam(r, "barcode"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	med, found := h.reader.FindByBarcode(code)
	if !found {
		h.RespondWithJSON(w, http.StatusNotFound, barcodeResponse{
			Status:  "unregistered",
			Message: "This barcode is not registered in the reference database. The product may be counterfeit or unregistered.",
		})
		return
	}

	h.RespondWithJSON(w, http.StatusOK, barcodeResponse{
		Status:   "authentic",
		Message:  "Medicine verified against the registered-medicines database",
		Medicine: &med,
	})
}

// ServeAllMedicines returns the full catalog
func (h *Handler) ServeAllMedicines(w http.ResponseWriter, r *http.Request) {
	medicines := h.store.GetMedicines()
	h.RespondWithJSON(w, http.StatusOK, medicines)
}

// ServePagedMedicines returns paginated catalog records
func (h *Handler) ServePagedMedicines(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "pageNumber")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "pageNumber", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	medicines := h.store.GetMedicines()
	pageSize := 10
	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(medicines) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	if end > len(medicines) {
		end = len(medicines)
	}

	pagedMedicines := medicines[start:end]
	totalItems := len(medicines)
	maxPage := (totalItems + pageSize - 1) / pageSize

	response := map[string]interface{}{
		"data":       pagedMedicines,
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// HealthCheck returns server health information
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.store.GetServerStartTime())

	status, data, httpStatus := h.checker.HealthCheck()

	response := map[string]interface{}{
		"status":         status,
		"uptime_seconds": uptime.Seconds(),
		"data":           data,
		"system": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
