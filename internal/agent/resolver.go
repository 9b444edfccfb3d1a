// Package agent implements the assisted donation command resolver: a
// chat-completion call constrained to a fixed JSON schema, with the
// deterministic parser as its ground truth and fallback. The completion
// output is untrusted input; every field is re-validated against the same
// grammar rules as any other source before it can influence a transfer.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"donationagent/internal/cause"
	"donationagent/internal/chain"
	"donationagent/internal/command"
	"donationagent/internal/domain"
)

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"
	defaultTimeout = 30 * time.Second
)

// Options configures the resolver.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Registry   *cause.Registry
	// OnFallback is invoked whenever the completion output is discarded and
	// the deterministic parse is used instead.
	OnFallback func(reason string, err error)
}

// Resolver turns a free-text donation command into a validated transfer
// instruction. When the completion capability fails or returns something the
// validators reject, the deterministic parse of the same text is used; only
// when both fail does the caller see an error.
type Resolver struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	client     *http.Client
	registry   *cause.Registry
	parser     *command.Parser
	onFallback func(reason string, err error)
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// completionPayload is the exact record shape the instruction template
// demands from the model.
type completionPayload struct {
	Value     string `json:"value"`
	ToAddress string `json:"toAddress"`
	Currency  string `json:"currency"`
}

// NewResolver builds a resolver over the given registry. An empty API key is
// allowed: every Resolve call then degrades to the deterministic parser.
func NewResolver(opts Options) *Resolver {
	registry := opts.Registry
	if registry == nil {
		registry = cause.Default()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Resolver{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		timeout:    timeout,
		client:     client,
		registry:   registry,
		parser:     command.NewParser(registry),
		onFallback: opts.OnFallback,
	}
}

// Resolve interprets rawText as a donation command. The deterministic parse
// runs first; when it succeeds its result wins over anything the completion
// returns. The completion result is accepted only when it validates field by
// field and the rigid grammar could not handle the input.
func (r *Resolver) Resolve(ctx context.Context, rawText string) (domain.ResolvedDonation, error) {
	det, detErr := r.parser.Parse(rawText)

	if r.apiKey == "" {
		return det, detErr
	}

	assisted, err := r.complete(ctx, rawText)
	if err != nil {
		return r.useFallback(det, detErr, "completion", err)
	}

	resolved, err := r.validatePayload(assisted)
	if err != nil {
		return r.useFallback(det, detErr, "malformed_response", err)
	}

	if detErr == nil {
		// Deterministic result wins; the completion only corroborates.
		if !strings.EqualFold(resolved.ToAddress, det.ToAddress) ||
			resolved.Amount != det.Amount || resolved.Currency != det.Currency {
			r.fellBack("disagreement", nil)
		}
		return det, nil
	}
	return resolved, nil
}

func (r *Resolver) useFallback(det domain.ResolvedDonation, detErr error, reason string, err error) (domain.ResolvedDonation, error) {
	r.fellBack(reason, err)
	if detErr != nil {
		return domain.ResolvedDonation{}, detErr
	}
	return det, nil
}

func (r *Resolver) fellBack(reason string, err error) {
	if r.onFallback != nil {
		r.onFallback(reason, err)
	}
}

func (r *Resolver) complete(ctx context.Context, rawText string) (completionPayload, error) {
	var zero completionPayload
	payload := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.systemPrompt()},
			{Role: "user", Content: rawText},
		},
		MaxTokens: 200,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return zero, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", &buf)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("completion request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return zero, fmt.Errorf("completion status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return zero, errors.New("no choices in response")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return zero, errors.New("empty completion content")
	}

	cleaned := extractJSONFragment(content)
	if cleaned == "" {
		return zero, errors.New("no JSON object in completion")
	}
	var decoded completionPayload
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return decoded, nil
}

// validatePayload re-checks every completion field against the same grammar
// used for direct input. A field's presence is never taken as proof of
// validity.
func (r *Resolver) validatePayload(p completionPayload) (domain.ResolvedDonation, error) {
	currency, ok := domain.ParseCurrency(p.Currency)
	if !ok {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindResolverUnavailable,
			"Invalid response from model.")
	}
	if !chain.IsWellFormedAddress(p.ToAddress) || !chain.IsPositiveAmount(p.Value) {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindResolverUnavailable,
			"Invalid response from model.")
	}
	causeID := domain.CauseCustom
	if id, ok := r.registry.ReverseLookup(p.ToAddress); ok {
		causeID = id
	}
	return domain.ResolvedDonation{
		Amount:    p.Value,
		Currency:  currency,
		ToAddress: p.ToAddress,
		Cause:     causeID,
	}, nil
}

func (r *Resolver) systemPrompt() string {
	sb := &strings.Builder{}
	sb.WriteString(`You are an onchain donation agent. Your task is to interpret donation commands and return exclusively a valid JSON object. The JSON must contain:
- "value": the amount in ETH, USDC, or USDT (string, e.g., "0.001").
- "toAddress": the Ethereum address (0x... format) provided or corresponding to the cause.
- "currency": the currency (ETH, USDC, or USDT) from the command.
The command will be in the format "Donate <amount> <currency> to <cause/address>", where <cause> can be `)
	entries := r.registry.Entries()
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.CauseID)
	}
	sb.WriteString(" or a 0x... address. Return the amount, currency, and address without modifications.\n\nExamples of output:\n")
	for _, e := range entries {
		fmt.Fprintf(sb, "- \"Donate 0.5 ETH to %s\" -> {\"value\": \"0.5\", \"toAddress\": %q, \"currency\": \"ETH\"}\n", e.CauseID, e.Address)
	}
	sb.WriteString("- \"Donate 0.0001 ETH to 0x175C00000000000000000000000000000000Ce6d\" -> {\"value\": \"0.0001\", \"toAddress\": \"0x175C00000000000000000000000000000000Ce6d\", \"currency\": \"ETH\"}\n")
	return sb.String()
}

// extractJSONFragment strips code fences and surrounding prose, keeping the
// outermost JSON object in the text.
func extractJSONFragment(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end >= start {
		text = text[start : end+1]
	} else {
		return ""
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
