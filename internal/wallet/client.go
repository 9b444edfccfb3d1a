// Package wallet is the HTTP client for the external wallet service that
// holds keys and broadcasts transactions. The pipeline only ever hands it an
// already-validated instruction; everything else about signing stays on the
// other side of this boundary.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"donationagent/internal/domain"
	"donationagent/internal/pipeline"
)

const defaultTimeout = 60 * time.Second

// Options configures the wallet service client.
type Options struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

// Client talks to the wallet service. It implements both the balance source
// and transfer executor contracts of the pipeline.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
}

type balancesResponse struct {
	Balances map[string]string `json:"balances"`
}

type transferRequestBody struct {
	From            string `json:"from"`
	To              string `json:"to"`
	AmountBaseUnits string `json:"amount_base_units"`
	Currency        string `json:"currency"`
	TokenContract   string `json:"token_contract,omitempty"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error"`
}

// NewClient builds a wallet service client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("wallet service base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, authToken: opts.AuthToken, client: client}, nil
}

// Balances fetches the per-currency balances for an address. Currencies the
// service does not report stay unknown rather than being treated as zero.
func (c *Client) Balances(ctx context.Context, userAddress string) (domain.Balances, error) {
	endpoint := fmt.Sprintf("%s/v1/balances/%s", c.baseURL, url.PathEscape(userAddress))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("wallet: build balances request: %w", err)
	}
	c.authorize(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wallet: balances request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("wallet: balances status %d", resp.StatusCode)
	}
	var out balancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("wallet: decode balances: %w", err)
	}
	balances := make(domain.Balances, len(out.Balances))
	for code, raw := range out.Balances {
		currency, ok := domain.ParseCurrency(code)
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		balances[currency] = domain.KnownBalance(amount)
	}
	return balances, nil
}

// Transfer submits a validated instruction for signing and broadcast and
// returns the transaction hash. A non-2xx response is surfaced verbatim with
// the service's error message; nothing is retried here.
func (c *Client) Transfer(ctx context.Context, treq pipeline.TransferRequest) (string, error) {
	body := transferRequestBody{
		From:            treq.From,
		To:              treq.To,
		AmountBaseUnits: treq.AmountBaseUnits.String(),
		Currency:        string(treq.Currency),
		TokenContract:   treq.TokenContract,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("wallet: encode transfer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", &buf)
	if err != nil {
		return "", fmt.Errorf("wallet: build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet: transfer request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("wallet: decode transfer response: %w", err)
	}
	if resp.StatusCode >= 300 || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("wallet: transfer rejected: %s", msg)
	}
	if out.TxHash == "" {
		return "", errors.New("wallet: transfer response missing tx hash")
	}
	return out.TxHash, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

var (
	_ pipeline.BalanceSource    = (*Client)(nil)
	_ pipeline.TransferExecutor = (*Client)(nil)
)
