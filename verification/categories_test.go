package verification

import "testing"

func TestInferCategory(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected string
	}{
		{"Analgesic brand", "panadol 500mg", "Analgesic"},
		{"Analgesic generic", "Ibuprofen 200mg", "Analgesic"},
		{"Analgesic symptom", "something for pain relief", "Analgesic"},
		{"Antibiotic brand", "Augmentin 625mg", "Antibiotic"},
		{"Antibiotic symptom", "chest infection tablets", "Antibiotic"},
		{"Antimicrobial", "Flagyl 400mg", "Antimicrobial"},
		{"Antacid", "omeprazole for heartburn", "Antacid"},
		{"Antihistamine", "Zyrtec allergy", "Antihistamine"},
		{"Cough and cold", "cough syrup for kids", "Cough and Cold"},
		{"Antidiabetic", "Glucophage 500mg", "Antidiabetic"},
		{"Antihypertensive", "blood pressure medicine", "Antihypertensive"},
		{"Vitamin", "folic acid tablets", "Vitamin Supplement"},
		{"Unknown medicine", "Unknownium Forte", DefaultCategory},
		{"Empty query", "", DefaultCategory},
		{"Whitespace query", "   ", DefaultCategory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := InferCategory(tc.query)
			if got != tc.expected {
				t.Errorf("InferCategory(%q) = %q, expected %q", tc.query, got, tc.expected)
			}
		})
	}
}

// The rule table is ordered; when keywords from several categories appear in
// one query the first table entry wins.
func TestInferCategoryPrecedence(t *testing.T) {
	got := InferCategory("paracetamol cough and cold")
	if got != "Analgesic" {
		t.Errorf("Expected first matching rule 'Analgesic' to win, got %q", got)
	}
}
