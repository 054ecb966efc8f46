package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPlanJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		plan Plan
		want string
	}{
		{"discounted", Plan{ID: 1, PriceINR: 800, DiscountPercent: 20}, `"original_price_inr":1000`},
		{"full price", Plan{ID: 2, PriceINR: 800}, ""},
		{"bogus discount", Plan{ID: 3, PriceINR: 800, DiscountPercent: 100}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.plan)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got := string(b)
			if tt.want == "" && strings.Contains(got, "original_price_inr") {
				t.Fatalf("expected no original price, got %s", got)
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Fatalf("expected %s in %s", tt.want, got)
			}

			var back Plan
			if err := json.Unmarshal(b, &back); err != nil || back != tt.plan {
				t.Fatalf("expected %+v back, got %+v (%v)", tt.plan, back, err)
			}
		})
	}
}
