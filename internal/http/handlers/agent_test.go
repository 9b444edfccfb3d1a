package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"donationagent/internal/domain"
)

type stubResolver struct {
	resolved domain.ResolvedDonation
	err      error
	commands []string
}

func (s *stubResolver) Resolve(_ context.Context, rawText string) (domain.ResolvedDonation, error) {
	s.commands = append(s.commands, rawText)
	return s.resolved, s.err
}

func TestAgentResolveSuccess(t *testing.T) {
	resolver := &stubResolver{resolved: domain.ResolvedDonation{
		Amount:    "0.001",
		Currency:  domain.CurrencyETH,
		ToAddress: "0xCaE3E92B39a1965A4B988bE34470Fdc1f49279e6",
		Cause:     "education",
	}}
	app := &App{Resolver: resolver, Logger: zerolog.Nop()}

	req := httptest.NewRequest("POST", "/v1/agent",
		strings.NewReader(`{"command":"Donate 0.001 ETH to education","donate_to_dev":false}`))
	rr := httptest.NewRecorder()
	app.AgentResolve(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["value"] != "0.001" || out["currency"] != "ETH" ||
		out["to_address"] != "0xCaE3E92B39a1965A4B988bE34470Fdc1f49279e6" {
		t.Fatalf("response = %#v", out)
	}
	if len(resolver.commands) != 1 || resolver.commands[0] != "Donate 0.001 ETH to education" {
		t.Fatalf("resolver commands = %v", resolver.commands)
	}
}

func TestAgentResolveRejectsBadCommand(t *testing.T) {
	resolver := &stubResolver{err: domain.NewError(domain.KindInvalidFormat,
		"Invalid command format. Use: Donate [amount] [ETH|USDC|USDT] to [cause/address].")}
	app := &App{Resolver: resolver, Logger: zerolog.Nop()}

	req := httptest.NewRequest("POST", "/v1/agent", strings.NewReader(`{"command":"hello"}`))
	rr := httptest.NewRecorder()
	app.AgentResolve(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(out["error"], "Invalid command format") {
		t.Fatalf("error = %q", out["error"])
	}
}

func TestAgentResolveRejectsBadPayload(t *testing.T) {
	app := &App{Resolver: &stubResolver{}, Logger: zerolog.Nop()}
	req := httptest.NewRequest("POST", "/v1/agent", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	app.AgentResolve(rr, req)
	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
