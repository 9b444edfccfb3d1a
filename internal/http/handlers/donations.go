package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"donationagent/internal/chain"
	"donationagent/internal/domain"
	"donationagent/internal/pipeline"
)

type prepareRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Cause    string `json:"cause"`
}

type prepareResponse struct {
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	AmountInWei string `json:"amount_in_wei,omitempty"`
}

// DonationsPrepare validates a structured submission and returns the transfer
// tuple for the caller's wallet to execute. Structured input skips the parser
// and resolver entirely but still passes the validation gate.
func (a *App) DonationsPrepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	resolved, err := a.Pipeline.ResolveStructured(req.Amount, req.Currency, req.Cause)
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	if err := pipeline.Validate(resolved, nil); err != nil {
		a.pipelineError(w, err)
		return
	}
	out := prepareResponse{
		ToAddress: resolved.ToAddress,
		Amount:    resolved.Amount,
		Currency:  string(resolved.Currency),
	}
	if resolved.Currency == domain.CurrencyETH {
		wei, err := chain.ToBaseUnits(resolved.Amount, resolved.Currency)
		if err != nil {
			a.error(w, http.StatusBadRequest, "Invalid amount.")
			return
		}
		out.AmountInWei = wei.String()
	}
	a.json(w, http.StatusOK, out)
}

type recordRequest struct {
	Command    string `json:"command"`
	SignerData struct {
		Address string `json:"address"`
	} `json:"signer_data"`
	DonateToDev bool   `json:"donate_to_dev"`
	TxHash      string `json:"tx_hash"`
}

// DonationsRecord appends a record for a transfer the caller's wallet already
// executed. The command is re-parsed and validated server-side before
// anything is written.
func (a *App) DonationsRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	record, err := a.Pipeline.RecordCompleted(r.Context(), req.SignerData.Address,
		req.Command, req.TxHash, a.countryFor(r), req.DonateToDev)
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"to_address": record.ToAddress,
		"amount":     record.Amount,
		"currency":   string(record.Currency),
		"cause":      record.Cause,
	})
}

type submitRequest struct {
	UserAddress string `json:"user_address"`
	Command     string `json:"command"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Cause       string `json:"cause"`
	DonateToDev bool   `json:"donate_to_dev"`
	DevAmount   string `json:"dev_amount"`
}

type submitResponse struct {
	TxHash    string          `json:"tx_hash"`
	ToAddress string          `json:"to_address"`
	Amount    string          `json:"amount"`
	Currency  string          `json:"currency"`
	Cause     string          `json:"cause"`
	Dev       *submitResponse `json:"dev_donation,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// DonationsSubmit runs the full pipeline server-side through the configured
// wallet executor. The optional developer follow-up runs only after an ETH
// primary donation succeeds; its failure is reported as a warning and never
// rolls back the primary.
func (a *App) DonationsSubmit(w http.ResponseWriter, r *http.Request) {
	if !a.SubmitEnabled {
		a.error(w, http.StatusServiceUnavailable, "transfer dispatch is not configured")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	country := a.countryFor(r)
	result, err := a.Pipeline.Submit(r.Context(), pipeline.SubmitRequest{
		UserAddress: req.UserAddress,
		Command:     req.Command,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Cause:       req.Cause,
		CountryCode: country,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindRecordFailed && result != nil {
			// Funds moved; tell the caller exactly that.
			a.json(w, http.StatusOK, submitResponse{
				TxHash:    result.TxHash,
				ToAddress: result.Resolved.ToAddress,
				Amount:    result.Resolved.Amount,
				Currency:  string(result.Resolved.Currency),
				Cause:     result.Resolved.Cause,
				Warning:   err.Error(),
			})
			return
		}
		a.pipelineError(w, err)
		return
	}

	out := submitResponse{
		TxHash:    result.TxHash,
		ToAddress: result.Resolved.ToAddress,
		Amount:    result.Resolved.Amount,
		Currency:  string(result.Resolved.Currency),
		Cause:     result.Resolved.Cause,
	}
	if req.DonateToDev && result.Resolved.Currency == domain.CurrencyETH {
		devResult, devErr := a.Pipeline.SubmitDev(r.Context(), req.UserAddress,
			req.DevAmount, result.Resolved.Amount, country)
		if devErr != nil {
			a.Logger.Warn().Err(devErr).Msg("developer follow-up donation failed")
			out.Warning = devErr.Error()
		} else {
			out.Dev = &submitResponse{
				TxHash:    devResult.TxHash,
				ToAddress: devResult.Resolved.ToAddress,
				Amount:    devResult.Resolved.Amount,
				Currency:  string(devResult.Resolved.Currency),
				Cause:     devResult.Resolved.Cause,
			}
		}
	}
	a.json(w, http.StatusOK, out)
}

type donationItem struct {
	UserAddress string    `json:"user_address"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	ToAddress   string    `json:"to_address"`
	Cause       string    `json:"cause"`
	DevDonation string    `json:"dev_donation"`
	TxHash      string    `json:"tx_hash"`
	CountryCode string    `json:"country_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DonationsHistory lists a user's donations, newest first.
func (a *App) DonationsHistory(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if !chain.IsWellFormedAddress(address) {
		a.error(w, http.StatusBadRequest, "Invalid address.")
		return
	}
	records, err := a.Donations.ListByUser(r.Context(), address)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to load donation history")
		a.error(w, http.StatusInternalServerError, "failed to load donations")
		return
	}
	items := make([]donationItem, 0, len(records))
	for _, rec := range records {
		items = append(items, donationItem{
			UserAddress: rec.UserAddress,
			Amount:      rec.Amount,
			Currency:    string(rec.Currency),
			ToAddress:   rec.ToAddress,
			Cause:       rec.Cause,
			DevDonation: rec.DevDonation,
			TxHash:      rec.TxHash,
			CountryCode: rec.CountryCode,
			CreatedAt:   rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
