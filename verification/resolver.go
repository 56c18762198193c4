package verification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/interfaces"
	"github.com/medverify/medverify-api/logging"
)

// Tuning constants for candidate retrieval and the alternatives fallback
const (
	maxSearchTerms     = 3
	perLookupLimit     = 10
	maxAlternatives    = 3
	categorySliceLimit = 10

	defaultLookupTimeout = 2 * time.Second
)

// Containment scores for the third match tier, higher is better. The length bonus prefers
// specific records over bloated ones ("Panadol" over "Panadol Extra Cold & Flu").
const (
	scoreNameContainsQuery    = 10
	scoreGenericContainsQuery = 8
	scoreQueryContainsName    = 7
	scoreQueryContainsGeneric = 6
	scoreLengthBonus          = 2
)

// Safety scores derived on match: WHO-approved registrations score higher.
// One deterministic rule, applied everywhere a score is surfaced.
const (
	safetyScoreWhoApproved = 95
	safetyScoreRegistered  = 75
)

// ErrCatalogUnavailable reports that every catalog lookup failed. Callers must
// surface this as a retryable failure, never as "not found".
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ErrEmptyQuery reports that the canonical name was empty. The normalizer
// already signals this with an empty string; resolving one is a caller bug.
var ErrEmptyQuery = errors.New("empty canonical name")

// Outcome tags a verification result
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeNotFound Outcome = "not_found"
)

// Alternative is one ranked same-category suggestion
type Alternative struct {
	Record      catalog.MedicineRecord `json:"record"`
	SafetyScore int                    `json:"safety_score"`
}

// Result is the outcome of resolving one canonical name. Exactly one of the
// Matched fields (Record, SafetyScore) or the NotFound fields (InferredCategory,
// Alternatives) is populated, selected by Outcome.
type Result struct {
	Outcome          Outcome                 `json:"outcome"`
	Record           *catalog.MedicineRecord `json:"record,omitempty"`
	SafetyScore      int                     `json:"safety_score,omitempty"`
	InferredCategory string                  `json:"inferred_category,omitempty"`
	Alternatives     []Alternative           `json:"alternatives,omitempty"`
}

// Resolver reconciles canonical medicine names against the reference catalog.
// It is stateless: each Resolve call operates on the current catalog snapshot.
type Resolver struct {
	catalog       interfaces.CatalogReader
	lookupTimeout time.Duration
}

// NewResolver creates a resolver over the given catalog reader. A non-positive
// lookupTimeout falls back to the default per-lookup bound.
func NewResolver(reader interfaces.CatalogReader, lookupTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Resolver{
		catalog:       reader,
		lookupTimeout: lookupTimeout,
	}
}

// Resolve finds the best catalog match for a canonical name. When no acceptable
// match exists it infers a therapeutic category from the raw query context and
// gathers ranked same-category alternatives. It returns ErrCatalogUnavailable
// only when every retrieval lookup failed; callers must keep "we checked and it
// is absent" distinct from "we could not check".
func (r *Resolver) Resolve(ctx context.Context, canonicalName, rawContext string) (Result, error) {
	canonical := strings.ToLower(strings.TrimSpace(canonicalName))
	if canonical == "" {
		return Result{}, ErrEmptyQuery
	}

	candidates, err := r.retrieveCandidates(ctx, canonical)
	if err != nil {
		return Result{}, err
	}

	if best := selectBestMatch(canonical, candidates); best != nil {
		return Result{
			Outcome:     OutcomeMatched,
			Record:      best,
			SafetyScore: SafetyScore(*best),
		}, nil
	}

	queryText := rawContext
	if strings.TrimSpace(queryText) == "" {
		queryText = canonical
	}
	category := InferCategory(queryText)

	alternatives := r.gatherAlternatives(ctx, category)

	return Result{
		Outcome:          OutcomeNotFound,
		InferredCategory: category,
		Alternatives:     alternatives,
	}, nil
}

// SafetyScore derives the deterministic safety score for a catalog record
func SafetyScore(med catalog.MedicineRecord) int {
	if med.WhoApproved {
		return safetyScoreWhoApproved
	}
	return safetyScoreRegistered
}

// deriveSearchTerms builds the retrieval term set: the full canonical name, the
// brand key when it differs, the first token, and remaining tokens longer than
// 3 characters, capped at maxSearchTerms to bound catalog load.
func deriveSearchTerms(canonical string) []string {
	terms := []string{canonical}
	seen := map[string]bool{canonical: true}

	if brand := BrandKey(canonical); brand != "" && !seen[brand] {
		terms = append(terms, brand)
		seen[brand] = true
	}

	tokens := strings.Fields(canonical)
	if len(tokens) > 1 && len(terms) < maxSearchTerms && !seen[tokens[0]] {
		terms = append(terms, tokens[0])
		seen[tokens[0]] = true
	}

	for _, token := range tokens {
		if len(terms) >= maxSearchTerms {
			break
		}
		if len(token) > 3 && !seen[token] {
			terms = append(terms, token)
			seen[token] = true
		}
	}

	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}
	return terms
}

// lookupResult carries one fan-out lookup outcome to the join step
type lookupResult struct {
	records []catalog.MedicineRecord
	err     error
}

// retrieveCandidates fans out one catalog lookup per term and field, joins the
// results, and merges them into a deduplicated candidate list in retrieval
// order. Individual lookup failures degrade to empty results; only a full
// failure of every lookup reports ErrCatalogUnavailable.
func (r *Resolver) retrieveCandidates(ctx context.Context, canonical string) ([]catalog.MedicineRecord, error) {
	terms := deriveSearchTerms(canonical)
	fields := []catalog.SearchField{catalog.FieldName, catalog.FieldGenericName}

	results := make([]lookupResult, len(terms)*len(fields))

	var wg sync.WaitGroup
	for i, term := range terms {
		for j, field := range fields {
			wg.Add(1)
			go func(slot int, field catalog.SearchField, term string) {
				defer wg.Done()

				lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
				defer cancel()

				records, err := r.catalog.Search(lookupCtx, field, term, perLookupLimit)
				results[slot] = lookupResult{records: records, err: err}
			}(i*len(fields)+j, field, term)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := 0
	seen := make(map[string]bool)
	var candidates []catalog.MedicineRecord

	for _, res := range results {
		if res.err != nil {
			failures++
			continue
		}
		for _, med := range res.records {
			if med.ID == "" || seen[med.ID] {
				continue
			}
			seen[med.ID] = true
			candidates = append(candidates, med)
		}
	}

	if failures == len(results) {
		return nil, ErrCatalogUnavailable
	}
	if failures > 0 {
		logging.Warn("Partial catalog retrieval failure", "failed_lookups", failures, "total_lookups", len(results))
	}

	return candidates, nil
}

// selectBestMatch applies the tiered match strategy: exact name or generic-name
// match first, then a first-token exact/prefix match, then containment scoring.
// Returns nil when no candidate is acceptable. Ties keep the candidate seen
// first in retrieval order, so selection is deterministic.
func selectBestMatch(canonical string, candidates []catalog.MedicineRecord) *catalog.MedicineRecord {
	// Tier 1: exact match
	for i := range candidates {
		name := strings.ToLower(candidates[i].Name)
		generic := strings.ToLower(candidates[i].GenericName)
		if name == canonical || generic == canonical {
			return &candidates[i]
		}
	}

	// Tier 2: first-token exact or prefix match, so canonical "panadol" still
	// matches the catalog entry "Panadol Extra"
	firstToken := canonical
	if idx := strings.IndexByte(canonical, ' '); idx != -1 {
		firstToken = canonical[:idx]
	}
	for i := range candidates {
		name := strings.ToLower(candidates[i].Name)
		if name == firstToken || strings.HasPrefix(name, firstToken+" ") {
			return &candidates[i]
		}
	}

	// Tier 3: containment scoring
	bestScore := 0
	var best *catalog.MedicineRecord
	for i := range candidates {
		score := containmentScore(canonical, &candidates[i])
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}

// containmentScore computes the tier-three score for one candidate
func containmentScore(canonical string, med *catalog.MedicineRecord) int {
	name := strings.ToLower(med.Name)
	generic := strings.ToLower(med.GenericName)

	score := 0
	if strings.Contains(name, canonical) {
		score += scoreNameContainsQuery
	}
	if generic != "" && strings.Contains(generic, canonical) {
		score += scoreGenericContainsQuery
	}
	if strings.Contains(canonical, name) {
		score += scoreQueryContainsName
	}
	if generic != "" && strings.Contains(canonical, generic) {
		score += scoreQueryContainsGeneric
	}
	if score > 0 && float64(len(name)) < 1.5*float64(len(canonical)) {
		score += scoreLengthBonus
	}
	return score
}

// gatherAlternatives queries the catalog for same-category records, falling
// back to a general sample when the category slice is empty. Failures here
// never mask the not-found outcome; they only shrink the suggestion list.
func (r *Resolver) gatherAlternatives(ctx context.Context, category string) []Alternative {
	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	records, err := r.catalog.Search(lookupCtx, catalog.FieldCategory, category, categorySliceLimit)
	if err != nil {
		logging.Warn("Category lookup failed, falling back to general sample", "category", category, "error", err)
		records = nil
	}

	if len(records) < maxAlternatives {
		sampleCtx, cancelSample := context.WithTimeout(ctx, r.lookupTimeout)
		defer cancelSample()

		sample, err := r.catalog.Sample(sampleCtx, maxAlternatives)
		if err != nil {
			logging.Warn("General sample lookup failed", "error", err)
		} else {
			records = append(records, sample...)
		}
	}

	seen := make(map[string]bool)
	alternatives := make([]Alternative, 0, maxAlternatives)
	for _, med := range records {
		if med.ID == "" || seen[med.ID] {
			continue
		}
		seen[med.ID] = true
		alternatives = append(alternatives, Alternative{
			Record:      med,
			SafetyScore: SafetyScore(med),
		})
		if len(alternatives) == maxAlternatives {
			break
		}
	}

	return alternatives
}
