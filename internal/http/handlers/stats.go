package handlers

import (
	"net/http"
	"strings"
)

// DonationsStats aggregates donation totals per cause and currency. Optional
// cause/currency query filters narrow the aggregation.
func (a *App) DonationsStats(w http.ResponseWriter, r *http.Request) {
	causeFilter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("cause")))
	currencyFilter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))

	stats, err := a.Donations.Stats(r.Context(), causeFilter, currencyFilter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to load donation stats")
		a.error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	items := make([]map[string]any, 0, len(stats))
	for _, stat := range stats {
		items = append(items, map[string]any{
			"cause":        stat.Cause,
			"cause_name":   a.Registry.DisplayName(stat.Cause),
			"currency":     string(stat.Currency),
			"total_amount": stat.Total,
			"count":        stat.Count,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
