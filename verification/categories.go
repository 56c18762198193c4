package verification

import "strings"

// DefaultCategory is returned when no keyword rule matches the query text.
const DefaultCategory = "general medicine"

// categoryRule maps a therapeutic category to the keywords that imply it.
type categoryRule struct {
	tag      string
	keywords []string
}

// categoryRules is evaluated top to bottom; the first rule whose keyword set
// intersects the query wins. Extending the table never changes the algorithm.
var categoryRules = []categoryRule{
	{"Analgesic", []string{
		"paracetamol", "panadol", "ibuprofen", "brufen", "aspirin", "disprin",
		"diclofenac", "pain", "ache", "fever", "analgesic",
	}},
	{"Antibiotic", []string{
		"antibiotic", "amoxicillin", "augmentin", "azithromycin", "ciprofloxacin",
		"cephalosporin", "penicillin", "erythromycin", "infection",
	}},
	{"Antimicrobial", []string{
		"metronidazole", "flagyl", "antifungal", "fluconazole", "parasite", "amoebic",
	}},
	{"Antacid", []string{
		"antacid", "omeprazole", "esomeprazole", "risek", "nexium",
		"acidity", "heartburn", "reflux", "ulcer",
	}},
	{"Antihistamine", []string{
		"antihistamine", "cetirizine", "zyrtec", "loratadine", "chlorpheniramine",
		"allergy", "allergic", "itching",
	}},
	{"Cough and Cold", []string{
		"cough", "cold", "flu", "arinac", "pseudoephedrine", "decongestant", "syrup",
	}},
	{"Antidiabetic", []string{
		"metformin", "glucophage", "insulin", "glibenclamide", "diabetes", "diabetic",
	}},
	{"Antihypertensive", []string{
		"amlodipine", "norvasc", "losartan", "atenolol", "blood pressure", "hypertension",
	}},
	{"Vitamin Supplement", []string{
		"vitamin", "folic", "calcium", "iron", "zinc", "multivitamin", "supplement",
	}},
}

// InferCategory scans the raw query text against the keyword table and returns
// the first matching therapeutic category, or DefaultCategory when nothing hits.
func InferCategory(rawQuery string) string {
	query := strings.ToLower(rawQuery)
	if strings.TrimSpace(query) == "" {
		return DefaultCategory
	}

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(query, keyword) {
				return rule.tag
			}
		}
	}

	return DefaultCategory
}
