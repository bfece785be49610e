package billing

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"EPCG", "Electricity"},
		{"  EPCG  ", "Electricity"},
		{"epcg", "Electricity"},
		{"Vodovod", "Water"},
		{"Telemach", "Internet"},
		{"Crnogorski Telekom", "Phone"},
		{"M:tel", "Phone"},
		{"Ribarnica Lira", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		if got := Classify(tt.provider); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Classify("Telemach"); got != "Internet" {
			t.Fatalf("iteration %d: got %q", i, got)
		}
	}
}
