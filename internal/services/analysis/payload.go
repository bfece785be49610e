package analysis

import (
	"encoding/json"
	"strings"
)

// MonthlyBreakdownItem is one bill line inside a monthly insight payload.
type MonthlyBreakdownItem struct {
	Provider string  `json:"provider"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

// MonthlyInsights is the canonical payload for the monthly analysis kind.
type MonthlyInsights struct {
	Summary         string                 `json:"summary"`
	TotalAmount     float64                `json:"total_amount"`
	Breakdown       []MonthlyBreakdownItem `json:"breakdown"`
	Recommendations []string               `json:"recommendations"`
}

// CategoryInsight is one spending category inside a category insight payload.
type CategoryInsight struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
	Percentage  float64 `json:"percentage"`
	Insight     string  `json:"insight"`
}

// CategoryInsights is the canonical payload for the category analysis kind.
type CategoryInsights struct {
	Summary         string            `json:"summary"`
	Categories      []CategoryInsight `json:"categories"`
	Recommendations []string          `json:"recommendations"`
}

// Model output occasionally uses "name"/"total" where the canonical schema
// says "category"/"total_amount"; the wire structs accept both spellings.
type categoryInsightWire struct {
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	TotalAmount *float64 `json:"total_amount"`
	Total       *float64 `json:"total"`
	Percentage  float64  `json:"percentage"`
	Insight     string   `json:"insight"`
}

type categoryInsightsWire struct {
	Summary         string                `json:"summary"`
	Categories      []categoryInsightWire `json:"categories"`
	Recommendations []string              `json:"recommendations"`
}

func parseMonthlyInsights(raw []byte) (MonthlyInsights, bool) {
	var payload MonthlyInsights
	if err := json.Unmarshal(raw, &payload); err != nil {
		return MonthlyInsights{}, false
	}
	if strings.TrimSpace(payload.Summary) == "" || len(payload.Recommendations) == 0 {
		return MonthlyInsights{}, false
	}
	return payload, true
}

func parseCategoryInsights(raw []byte) (CategoryInsights, bool) {
	var wire categoryInsightsWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return CategoryInsights{}, false
	}
	if strings.TrimSpace(wire.Summary) == "" || len(wire.Categories) == 0 || len(wire.Recommendations) == 0 {
		return CategoryInsights{}, false
	}

	payload := CategoryInsights{
		Summary:         wire.Summary,
		Categories:      make([]CategoryInsight, 0, len(wire.Categories)),
		Recommendations: wire.Recommendations,
	}
	for _, item := range wire.Categories {
		normalized := CategoryInsight{
			Category:   item.Category,
			Percentage: item.Percentage,
			Insight:    item.Insight,
		}
		if normalized.Category == "" {
			normalized.Category = item.Name
		}
		switch {
		case item.TotalAmount != nil:
			normalized.TotalAmount = *item.TotalAmount
		case item.Total != nil:
			normalized.TotalAmount = *item.Total
		}
		if normalized.Category == "" {
			return CategoryInsights{}, false
		}
		payload.Categories = append(payload.Categories, normalized)
	}
	return payload, true
}

// cleanModelJSON strips Markdown fences and surrounding prose the model may
// wrap around its JSON object despite the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
