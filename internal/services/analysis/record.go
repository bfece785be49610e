package analysis

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind selects the analysis variant.
type Kind string

const (
	KindMonthly  Kind = "monthly"
	KindCategory Kind = "category"
)

// ParseKind validates a caller-supplied analysis type.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindMonthly:
		return KindMonthly, nil
	case KindCategory:
		return KindCategory, nil
	default:
		return "", ErrInvalidKind
	}
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is a persisted analysis. Immutable after creation except for deletion.
type Record struct {
	ID           uuid.UUID       `json:"analysis_id"`
	UserID       uuid.UUID       `json:"-"`
	Kind         Kind            `json:"analysis_type"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	BillsCount   int             `json:"bills_count"`
	Prompt       string          `json:"-"`
	AIResponse   json.RawMessage `json:"insights"`
	ModelUsed    string          `json:"model_used"`
	TokensUsed   *int            `json:"tokens_used,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
