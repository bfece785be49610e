package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

type categorySummaryLine struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
	Percentage  float64 `json:"percentage"`
	Count       int     `json:"count"`
}

type billDetailLine struct {
	Provider string  `json:"provider"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

func buildMonthlyPrompt(breakdown []MonthlyBreakdownItem, total float64, days int) string {
	billsJSON, _ := json.Marshal(breakdown)

	var b strings.Builder
	b.WriteString("You are a personal finance advisor. Analyze these household bills for the period and give a detailed spending analysis.\n")
	b.WriteString("Respond with a JSON object containing exactly these fields:\n")
	b.WriteString("- summary: short analysis (text)\n")
	b.WriteString("- total_amount: total amount (number)\n")
	b.WriteString("- breakdown: list of {provider, amount, date}\n")
	b.WriteString("- recommendations: list of strings (minimum 3)\n\n")
	fmt.Fprintf(&b, "BILLS (last %d days):\n%s\n\n", days, billsJSON)
	fmt.Fprintf(&b, "TOTAL: €%.2f\n\n", total)
	b.WriteString("Give specific recommendations on how to reduce these costs.\n")
	b.WriteString("Return ONLY JSON, no additional text.")
	return b.String()
}

func buildCategoryPrompt(summary []categorySummaryLine, details []billDetailLine, total float64) string {
	summaryJSON, _ := json.Marshal(summary)
	detailsJSON, _ := json.Marshal(details)

	var b strings.Builder
	b.WriteString("You are a financial analyst. Analyze these expenses grouped by spending category and give a detailed analysis.\n")
	b.WriteString("Respond with a JSON object containing exactly these fields:\n")
	b.WriteString("- summary: short analysis (text)\n")
	b.WriteString("- categories: list of {category, total_amount, percentage, insight}\n")
	b.WriteString("- recommendations: list of strings (minimum 3)\n\n")
	fmt.Fprintf(&b, "EXPENSES BY CATEGORY:\n%s\n\n", summaryJSON)
	fmt.Fprintf(&b, "DETAILED EXPENSES:\n%s\n\n", detailsJSON)
	fmt.Fprintf(&b, "TOTAL: €%.2f\n\n", total)
	b.WriteString("Give specific recommendations on how to reduce costs per category.\n")
	b.WriteString("Return ONLY JSON, no additional text.")
	return b.String()
}
