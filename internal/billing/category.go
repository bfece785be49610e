// Package billing holds shared domain vocabulary for bill records.
package billing

import "strings"

// CategoryOther is assigned to providers with no mapping.
const CategoryOther = "Other"

var categoryByProvider = map[string]string{
	"epcg":               "Electricity",
	"vodovod":            "Water",
	"telemach":           "Internet",
	"crnogorski telekom": "Phone",
	"m:tel":              "Phone",
	"cistoca":            "Utilities",
	"stambena uprava":    "Housing",
}

// Classify maps a provider or beneficiary name to its coarse spending
// category. Matching is exact after trimming and case folding.
func Classify(provider string) string {
	key := strings.ToLower(strings.TrimSpace(provider))
	if category, ok := categoryByProvider[key]; ok {
		return category
	}
	return CategoryOther
}
