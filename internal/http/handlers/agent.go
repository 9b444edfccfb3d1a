package handlers

import (
	"encoding/json"
	"net/http"
)

type agentRequest struct {
	Command     string `json:"command"`
	DonateToDev bool   `json:"donate_to_dev"`
}

type agentResponse struct {
	Value     string `json:"value"`
	ToAddress string `json:"to_address"`
	Currency  string `json:"currency"`
}

// AgentResolve interprets a free-text donation command and returns the
// resolved {value, to_address, currency} tuple. The resolver already falls
// back to the deterministic parser internally, so an error here means both
// paths rejected the input.
func (a *App) AgentResolve(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	resolved, err := a.Resolver.Resolve(r.Context(), req.Command)
	if err != nil {
		a.Logger.Debug().Err(err).Str("command", req.Command).Msg("command rejected")
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, agentResponse{
		Value:     resolved.Amount,
		ToAddress: resolved.ToAddress,
		Currency:  string(resolved.Currency),
	})
}
