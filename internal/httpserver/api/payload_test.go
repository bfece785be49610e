package api

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBillPayloadValidation(t *testing.T) {
	valid := billPayload{
		Amount:          decimal.RequireFromString("45.50"),
		BeneficiaryName: "EPCG",
		ReferenceDate:   "2025-06-01",
	}
	params, err := valid.toWriteParams()
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if params.Status != "paid" {
		t.Errorf("default status = %q, want paid", params.Status)
	}
	if params.ReferenceDate.Year() != 2025 || params.ReferenceDate.Month() != 6 {
		t.Errorf("reference date parsed as %s", params.ReferenceDate)
	}

	cases := map[string]billPayload{
		"missing beneficiary": {Amount: valid.Amount, ReferenceDate: "2025-06-01"},
		"bad date":            {Amount: valid.Amount, BeneficiaryName: "EPCG", ReferenceDate: "01.06.2025"},
		"negative amount":     {Amount: decimal.RequireFromString("-1"), BeneficiaryName: "EPCG", ReferenceDate: "2025-06-01"},
	}
	for name, payload := range cases {
		if _, err := payload.toWriteParams(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestTransactionPayloadDefaultsStatus(t *testing.T) {
	payload := transactionPayload{
		Amount:          decimal.RequireFromString("12.00"),
		MerchantName:    "Voli Market",
		TransactionDate: "2025-06-02",
	}
	params, err := payload.toWriteParams()
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if params.Status != "completed" {
		t.Errorf("default status = %q, want completed", params.Status)
	}
}
