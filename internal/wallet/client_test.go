package wallet

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"donationagent/internal/domain"
	"donationagent/internal/pipeline"
)

func TestBalancesParsesKnownCurrencies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/balances/0x9999999999999999999999999999999999999999" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"balances": map[string]string{
				"ETH":  "1.5",
				"usdc": "30",
				"DOGE": "9000",
				"USDT": "not-a-number",
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	balances, err := client.Balances(context.Background(), "0x9999999999999999999999999999999999999999")
	if err != nil {
		t.Fatalf("Balances returned error: %v", err)
	}
	eth := balances.For(domain.CurrencyETH)
	if !eth.Known || eth.Amount.String() != "1.5" {
		t.Fatalf("ETH balance = %+v", eth)
	}
	usdc := balances.For(domain.CurrencyUSDC)
	if !usdc.Known || usdc.Amount.String() != "30" {
		t.Fatalf("USDC balance = %+v", usdc)
	}
	// Unsupported and unparsable entries stay unknown, never zero.
	if balances.For(domain.CurrencyUSDT).Known {
		t.Fatal("unparsable USDT balance must stay unknown")
	}
	if len(balances) != 2 {
		t.Fatalf("balances = %+v", balances)
	}
}

func TestTransferSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transfers" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["amount_base_units"] != "1000000000000000" {
			t.Fatalf("amount_base_units = %v", req["amount_base_units"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0xtxhash"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL, AuthToken: "secret"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	hash, err := client.Transfer(context.Background(), pipeline.TransferRequest{
		From:            "0x9999999999999999999999999999999999999999",
		To:              "0xCaE3E92B39a1965A4B988bE34470Fdc1f49279e6",
		AmountBaseUnits: big.NewInt(1000000000000000),
		Currency:        domain.CurrencyETH,
	})
	if err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}
	if hash != "0xtxhash" {
		t.Fatalf("tx hash = %q", hash)
	}
}

func TestTransferRejectionSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "signature declined"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Transfer(context.Background(), pipeline.TransferRequest{
		AmountBaseUnits: big.NewInt(1),
		Currency:        domain.CurrencyETH,
	})
	if err == nil {
		t.Fatal("expected transfer error")
	}
	if got := err.Error(); got != "wallet: transfer rejected: signature declined" {
		t.Fatalf("error = %q", got)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
