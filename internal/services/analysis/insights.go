package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/ai"
	"github.com/mvucinic/billsight/internal/timeutil"
)

// AIMetrics records generation attempts for the metrics pipeline.
type AIMetrics interface {
	RecordAICall(model string, duration time.Duration, tokens int, fallback bool)
}

// Generator turns aggregated bills into a structured insight payload. It makes
// a single attempt against the model and silently falls back to a local,
// deterministic computation on any failure: generation always produces an
// answer once bills exist.
type Generator struct {
	model   ai.TextGenerator
	metrics AIMetrics
	logger  *slog.Logger
}

func NewGenerator(model ai.TextGenerator, metrics AIMetrics, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{model: model, metrics: metrics, logger: logger}
}

// Insights is the outcome of one generation: the payload that will be
// persisted plus bookkeeping about how it was produced.
type Insights struct {
	Payload    json.RawMessage
	Prompt     string
	ModelUsed  string
	TokensUsed *int
	Fallback   bool
}

var monthlyFallbackRecommendations = []string{
	"Review your bills for savings opportunities",
	"Consider bundling services with a single provider",
	"Check whether you are on the best available tariff",
}

var categoryFallbackRecommendations = []string{
	"Review the largest spending categories first",
	"Look for cheaper alternatives to expensive services",
	"Consider negotiating with your providers",
}

// Generate builds the insight payload for the requested kind. bills is
// expected to be non-empty; a zero-bill input produces an empty-period
// payload rather than an error.
func (g *Generator) Generate(ctx context.Context, kind Kind, items []CategorizedBill, window timeutil.Window) Insights {
	switch kind {
	case KindCategory:
		return g.generateCategory(ctx, items)
	default:
		return g.generateMonthly(ctx, items, window)
	}
}

func (g *Generator) generateMonthly(ctx context.Context, items []CategorizedBill, window timeutil.Window) Insights {
	breakdown := make([]MonthlyBreakdownItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
		breakdown = append(breakdown, MonthlyBreakdownItem{
			Provider: item.BeneficiaryName,
			Amount:   item.Amount.InexactFloat64(),
			Date:     item.ReferenceDate.Format("2006-01-02"),
		})
	}
	totalAmount := total.InexactFloat64()

	fallback := MonthlyInsights{
		Summary:         monthlySummary(len(items), window.Days()),
		TotalAmount:     totalAmount,
		Breakdown:       breakdown,
		Recommendations: monthlyFallbackRecommendations,
	}

	if len(items) == 0 {
		return marshalInsights(fallback, "", g.modelName(), nil, true)
	}

	prompt := buildMonthlyPrompt(breakdown, totalAmount, window.Days())
	raw, tokens, ok := g.complete(ctx, prompt)
	if ok {
		if payload, parsed := parseMonthlyInsights(raw); parsed {
			// The model's arithmetic is never authoritative.
			payload.TotalAmount = totalAmount
			return marshalInsights(payload, prompt, g.modelName(), &tokens, false)
		}
		g.logger.Warn("monthly insight response malformed, using fallback")
	}
	return marshalInsights(fallback, prompt, g.modelName(), nil, true)
}

func (g *Generator) generateCategory(ctx context.Context, items []CategorizedBill) Insights {
	type group struct {
		total decimal.Decimal
		count int
	}
	groups := map[string]*group{}
	grand := decimal.Zero
	details := make([]billDetailLine, 0, len(items))

	for _, item := range items {
		entry, ok := groups[item.Category]
		if !ok {
			entry = &group{}
			groups[item.Category] = entry
		}
		entry.total = entry.total.Add(item.Amount)
		entry.count++
		grand = grand.Add(item.Amount)
		details = append(details, billDetailLine{
			Provider: item.BeneficiaryName,
			Category: item.Category,
			Amount:   item.Amount.InexactFloat64(),
			Date:     item.ReferenceDate.Format("2006-01-02"),
		})
	}

	grandAmount := grand.InexactFloat64()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := groups[names[i]], groups[names[j]]
		if !a.total.Equal(b.total) {
			return a.total.GreaterThan(b.total)
		}
		return names[i] < names[j]
	})

	summaryLines := make([]categorySummaryLine, 0, len(names))
	categories := make([]CategoryInsight, 0, len(names))
	for _, name := range names {
		entry := groups[name]
		amount := entry.total.InexactFloat64()
		percentage := 0.0
		if grand.IsPositive() {
			percentage = roundToTenth(amount / grandAmount * 100)
		}
		summaryLines = append(summaryLines, categorySummaryLine{
			Category:    name,
			TotalAmount: amount,
			Percentage:  percentage,
			Count:       entry.count,
		})
		categories = append(categories, CategoryInsight{
			Category:    name,
			TotalAmount: amount,
			Percentage:  percentage,
			Insight:     categoryInsightLine(name, amount, percentage),
		})
	}

	fallback := CategoryInsights{
		Summary:         categorySummary(grandAmount, len(names)),
		Categories:      categories,
		Recommendations: categoryFallbackRecommendations,
	}

	if len(items) == 0 {
		return marshalInsights(fallback, "", g.modelName(), nil, true)
	}

	prompt := buildCategoryPrompt(summaryLines, details, grandAmount)
	raw, tokens, ok := g.complete(ctx, prompt)
	if ok {
		if payload, parsed := parseCategoryInsights(raw); parsed {
			return marshalInsights(payload, prompt, g.modelName(), &tokens, false)
		}
		g.logger.Warn("category insight response malformed, using fallback")
	}
	return marshalInsights(fallback, prompt, g.modelName(), nil, true)
}

// complete runs the single model attempt; ok is false on transport failure.
func (g *Generator) complete(ctx context.Context, prompt string) ([]byte, int, bool) {
	if g.model == nil {
		return nil, 0, false
	}

	start := time.Now()
	completion, err := g.model.Complete(ctx, prompt)
	duration := time.Since(start)
	if err != nil {
		g.logger.Warn("insight generation failed, using fallback", "error", err)
		if g.metrics != nil {
			g.metrics.RecordAICall(g.modelName(), duration, 0, true)
		}
		return nil, 0, false
	}
	if g.metrics != nil {
		g.metrics.RecordAICall(g.modelName(), duration, completion.TokensUsed, false)
	}
	return []byte(cleanModelJSON(completion.Text)), completion.TokensUsed, true
}

func (g *Generator) modelName() string {
	if g.model == nil {
		return "local-fallback"
	}
	return g.model.Model()
}

func marshalInsights(payload any, prompt, model string, tokens *int, fallback bool) Insights {
	raw, _ := json.Marshal(payload)
	return Insights{
		Payload:    raw,
		Prompt:     prompt,
		ModelUsed:  model,
		TokensUsed: tokens,
		Fallback:   fallback,
	}
}

func monthlySummary(billCount, days int) string {
	if billCount == 0 {
		return "No bills found for this period"
	}
	return fmt.Sprintf("Analysis of %d bills over the last %d days", billCount, days)
}

func categorySummary(total float64, categoryCount int) string {
	if categoryCount == 0 {
		return "No bills found for this period"
	}
	return fmt.Sprintf("Total €%.2f across %d categories", total, categoryCount)
}

func categoryInsightLine(name string, amount, percentage float64) string {
	return fmt.Sprintf("%s is €%.2f (%.1f%%)", name, amount, percentage)
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
