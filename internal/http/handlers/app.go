// Package handlers exposes the donation pipeline over HTTP. Every failure it
// reports is a single {"error": "..."} object carrying a message from the
// pipeline's taxonomy.
package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"donationagent/internal/cause"
	"donationagent/internal/domain"
	"donationagent/internal/infra/geoip"
	"donationagent/internal/pipeline"
)

// DonationReader is the query side of the donation store.
type DonationReader interface {
	ListByUser(ctx context.Context, userAddress string) ([]domain.DonationRecord, error)
	Stats(ctx context.Context, causeFilter, currencyFilter string) ([]domain.CauseStat, error)
}

// App carries the handler dependencies.
type App struct {
	Pipeline  *pipeline.Pipeline
	Resolver  pipeline.CommandResolver
	Donations DonationReader
	Registry  *cause.Registry
	GeoIP     geoip.CountryResolver
	Logger    zerolog.Logger
	// SubmitEnabled is false when no wallet executor is configured; the
	// server-side submit endpoint then reports that dispatch is unavailable.
	SubmitEnabled bool
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

// pipelineError maps a pipeline failure onto an HTTP status and writes it.
func (a *App) pipelineError(w http.ResponseWriter, err error) {
	a.error(w, statusForKind(domain.KindOf(err)), err.Error())
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidFormat, domain.KindUnsupportedCurrency,
		domain.KindUnknownTarget, domain.KindInvalidAddress,
		domain.KindInvalidAmount, domain.KindInsufficientBalance:
		return http.StatusBadRequest
	case domain.KindResolverUnavailable, domain.KindDispatchFailed:
		return http.StatusBadGateway
	case domain.KindRecordFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// countryFor resolves the donor country from the request IP, best effort.
func (a *App) countryFor(r *http.Request) string {
	if a.GeoIP == nil {
		return ""
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	code, err := a.GeoIP.CountryCode(ip)
	if err != nil {
		return ""
	}
	return code
}
