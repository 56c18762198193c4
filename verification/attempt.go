package verification

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is the ephemeral record of one verification call. The core never
// persists it; history storage belongs to the caller.
type Attempt struct {
	ID            string    `json:"id"`
	RawQuery      string    `json:"raw_query"`
	CanonicalName string    `json:"canonical_name"`
	Result        Result    `json:"result"`
	CheckedAt     time.Time `json:"checked_at"`
}

// NewAttempt builds an attempt for a completed resolve call
func NewAttempt(rawQuery, canonicalName string, result Result) Attempt {
	return Attempt{
		ID:            uuid.NewString(),
		RawQuery:      rawQuery,
		CanonicalName: canonicalName,
		Result:        result,
		CheckedAt:     time.Now().UTC(),
	}
}
