package chain

import (
	"testing"

	"donationagent/internal/domain"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"eth fraction", "0.001", domain.CurrencyETH, "1000000000000000"},
		{"one eth", "1", domain.CurrencyETH, "1000000000000000000"},
		{"smallest eth", "0.000000000000000001", domain.CurrencyETH, "1"},
		{"usdc whole", "10", domain.CurrencyUSDC, "10000000"},
		{"usdt fraction", "0.1", domain.CurrencyUSDT, "100000"},
		{"usdc truncates past decimals", "1.00000099", domain.CurrencyUSDC, "1000000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToBaseUnits(tc.amount, tc.currency)
			if err != nil {
				t.Fatalf("ToBaseUnits(%q, %s) returned error: %v", tc.amount, tc.currency, err)
			}
			if got.String() != tc.want {
				t.Fatalf("ToBaseUnits(%q, %s) = %s, want %s", tc.amount, tc.currency, got, tc.want)
			}
		})
	}
}

func TestToBaseUnitsRejectsBadInput(t *testing.T) {
	if _, err := ToBaseUnits("1", domain.Currency("DOGE")); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
	if _, err := ToBaseUnits("abc", domain.CurrencyETH); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
	if _, err := ToBaseUnits("0", domain.CurrencyETH); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestTokenContract(t *testing.T) {
	if got := TokenContract(domain.CurrencyETH); got != "" {
		t.Fatalf("TokenContract(ETH) = %q, want empty", got)
	}
	if got := TokenContract(domain.CurrencyUSDC); got != USDCContract {
		t.Fatalf("TokenContract(USDC) = %q, want %q", got, USDCContract)
	}
	if got := TokenContract(domain.CurrencyUSDT); got != USDTContract {
		t.Fatalf("TokenContract(USDT) = %q, want %q", got, USDTContract)
	}
}
