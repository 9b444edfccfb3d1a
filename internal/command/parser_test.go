package command

import (
	"testing"

	"donationagent/internal/cause"
	"donationagent/internal/domain"
)

func testRegistry() *cause.Registry {
	return cause.Default()
}

func TestParseRegisteredCause(t *testing.T) {
	p := NewParser(testRegistry())
	tests := []struct {
		name        string
		command     string
		wantAmount  string
		wantCur     domain.Currency
		wantAddress string
		wantCause   string
	}{
		{
			name:        "eth to education",
			command:     "Donate 0.001 ETH to education",
			wantAmount:  "0.001",
			wantCur:     domain.CurrencyETH,
			wantAddress: "0xCaE3E92B39a1965A4B988bE34470Fdc1f49279e6",
			wantCause:   "education",
		},
		{
			name:        "usdc to health",
			command:     "Donate 10 USDC to health",
			wantAmount:  "10",
			wantCur:     domain.CurrencyUSDC,
			wantAddress: "0x02dE0627054cC5c59821B4Ea2cCE448f64284290",
			wantCause:   "health",
		},
		{
			name:        "case-insensitive keywords",
			command:     "donate 5 usdt TO Environment",
			wantAmount:  "5",
			wantCur:     domain.CurrencyUSDT,
			wantAddress: "0x40Af88bA3D3554e0cCb9Ca3EDc72EbEe4e4C7ae5",
			wantCause:   "environment",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Parse(tc.command)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.command, err)
			}
			if got.Amount != tc.wantAmount || got.Currency != tc.wantCur ||
				got.ToAddress != tc.wantAddress || got.Cause != tc.wantCause {
				t.Fatalf("Parse(%q) = %+v", tc.command, got)
			}
		})
	}
}

func TestParseLiteralAddressTarget(t *testing.T) {
	p := NewParser(testRegistry())
	address := "0x175C000000000000000000000000000000000000"
	got, err := p.Parse("Donate 10 USDC to " + address)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got.ToAddress != address {
		t.Fatalf("ToAddress = %q, want %q", got.ToAddress, address)
	}
	if got.Cause != domain.CauseCustom {
		t.Fatalf("Cause = %q, want %q", got.Cause, domain.CauseCustom)
	}
}

func TestParseFailureKinds(t *testing.T) {
	p := NewParser(testRegistry())
	tests := []struct {
		name     string
		command  string
		wantKind domain.ErrorKind
	}{
		{"empty", "", domain.KindInvalidFormat},
		{"missing donate keyword", "Send 1 ETH to education", domain.KindInvalidFormat},
		{"missing to keyword", "Donate 1 ETH education", domain.KindInvalidFormat},
		{"missing amount", "Donate ETH to education", domain.KindInvalidFormat},
		{"unsupported currency", "Donate 5 DOGE to education", domain.KindUnsupportedCurrency},
		{"unknown cause", "Donate 1 ETH to charity", domain.KindUnknownTarget},
		{"short address", "Donate 1 ETH to 0x175C0000", domain.KindUnknownTarget},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(tc.command)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %s", tc.command, tc.wantKind)
			}
			if kind := domain.KindOf(err); kind != tc.wantKind {
				t.Fatalf("Parse(%q) kind = %s, want %s", tc.command, kind, tc.wantKind)
			}
		})
	}
}

func TestParseHasNoSideEffects(t *testing.T) {
	p := NewParser(testRegistry())
	first, err := p.Parse("Donate 0.5 ETH to health")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := p.Parse("Donate 0.5 ETH to health")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if first != second {
		t.Fatalf("repeated parse differs: %+v vs %+v", first, second)
	}
}
