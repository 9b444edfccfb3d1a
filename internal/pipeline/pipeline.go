// Package pipeline wires the donation command stages together: parse or
// resolve, validate, dispatch, record. Each submission is one sequential
// invocation with no shared mutable state; the gate always runs immediately
// before dispatch so a stale balance read can never authorize a transfer.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"donationagent/internal/cause"
	"donationagent/internal/chain"
	"donationagent/internal/domain"
)

// DevDonationMode selects how the developer follow-up amount is determined.
type DevDonationMode string

const (
	// DevDonationCustom lets the user enter a free-form follow-up amount.
	DevDonationCustom DevDonationMode = "custom"
	// DevDonationPercentage derives the follow-up from the primary amount.
	DevDonationPercentage DevDonationMode = "percentage"
)

// Options configures a Pipeline.
type Options struct {
	Registry   *cause.Registry
	Resolver   CommandResolver
	Balances   BalanceSource
	Executor   TransferExecutor
	Store      Store
	Logger     zerolog.Logger
	DevMode    DevDonationMode
	DevPercent decimal.Decimal
}

// Pipeline executes donation submissions end to end.
type Pipeline struct {
	registry   *cause.Registry
	resolver   CommandResolver
	balances   BalanceSource
	executor   TransferExecutor
	store      Store
	logger     zerolog.Logger
	devMode    DevDonationMode
	devPercent decimal.Decimal
}

// SubmitRequest carries one donation submission. Command selects free-text
// mode; otherwise Amount/Currency/Cause are treated as structured input that
// skips the parser and resolver.
type SubmitRequest struct {
	UserAddress string
	Command     string
	Amount      string
	Currency    string
	Cause       string
	CountryCode string
}

// SubmitResult reports a dispatched donation. TxHash is set whenever the
// transfer reached the chain, even if recording failed afterwards.
type SubmitResult struct {
	Resolved domain.ResolvedDonation
	TxHash   string
	Record   *domain.DonationRecord
}

// New builds a pipeline. Registry defaults to the production registry and
// DevMode to custom amounts.
func New(opts Options) *Pipeline {
	registry := opts.Registry
	if registry == nil {
		registry = cause.Default()
	}
	mode := opts.DevMode
	if mode == "" {
		mode = DevDonationCustom
	}
	return &Pipeline{
		registry:   registry,
		resolver:   opts.Resolver,
		balances:   opts.Balances,
		executor:   opts.Executor,
		store:      opts.Store,
		logger:     opts.Logger,
		devMode:    mode,
		devPercent: opts.DevPercent,
	}
}

// ResolveStructured turns structured form input into a transfer instruction
// without touching the parser or resolver.
func (p *Pipeline) ResolveStructured(amount, currency, causeID string) (domain.ResolvedDonation, error) {
	cur, ok := domain.ParseCurrency(currency)
	if !ok {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindUnsupportedCurrency,
			"Unsupported currency. Use ETH, USDC, or USDT.")
	}
	address, ok := p.registry.Resolve(causeID)
	if !ok {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindUnknownTarget, "Invalid cause.")
	}
	return domain.ResolvedDonation{
		Amount:    amount,
		Currency:  cur,
		ToAddress: address,
		Cause:     strings.ToLower(strings.TrimSpace(causeID)),
	}, nil
}

// Resolve produces the transfer instruction for a submission, free-text or
// structured.
func (p *Pipeline) Resolve(ctx context.Context, req SubmitRequest) (domain.ResolvedDonation, error) {
	if strings.TrimSpace(req.Command) != "" {
		return p.resolver.Resolve(ctx, req.Command)
	}
	return p.ResolveStructured(req.Amount, req.Currency, req.Cause)
}

// Submit runs one donation end to end: resolve, re-read balances, validate,
// dispatch, record. Validation failures surface before any side-effecting
// call; a record failure after a successful dispatch is reported with the
// transaction hash so the caller can retry only the record step.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if !chain.IsWellFormedAddress(req.UserAddress) {
		return nil, domain.NewError(domain.KindInvalidAddress, "Connect a wallet.")
	}

	resolved, err := p.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.execute(ctx, req.UserAddress, req.CountryCode, resolved, "0")
}

// SubmitDev runs the developer follow-up donation. The amount is the
// user-entered value in custom mode; in percentage mode it is derived from
// primaryAmount and the given amount is ignored. The follow-up always pays
// the registered developer cause in ETH, and its failure never affects an
// already-recorded primary donation.
func (p *Pipeline) SubmitDev(ctx context.Context, userAddress, amount, primaryAmount, countryCode string) (*SubmitResult, error) {
	if !chain.IsWellFormedAddress(userAddress) {
		return nil, domain.NewError(domain.KindInvalidAddress, "Connect a wallet.")
	}
	if p.devMode == DevDonationPercentage {
		amount, _ = p.DevAmountFor(primaryAmount)
	}
	address, ok := p.registry.Resolve(cause.DeveloperCause)
	if !ok {
		return nil, domain.NewError(domain.KindUnknownTarget, "Invalid cause.")
	}
	resolved := domain.ResolvedDonation{
		Amount:    amount,
		Currency:  domain.CurrencyETH,
		ToAddress: address,
		Cause:     cause.DeveloperCause,
	}
	return p.execute(ctx, userAddress, countryCode, resolved, amount)
}

// DevAmountFor returns the percentage-mode follow-up amount for a primary
// donation amount. The second return is false when the pipeline is in custom
// mode or the primary amount does not parse.
func (p *Pipeline) DevAmountFor(primaryAmount string) (string, bool) {
	if p.devMode != DevDonationPercentage || p.devPercent.IsZero() {
		return "", false
	}
	primary, err := decimal.NewFromString(primaryAmount)
	if err != nil {
		return "", false
	}
	return primary.Mul(p.devPercent).Div(decimal.NewFromInt(100)).String(), true
}

func (p *Pipeline) execute(ctx context.Context, userAddress, countryCode string, resolved domain.ResolvedDonation, devDonation string) (*SubmitResult, error) {
	balances := p.readBalances(ctx, userAddress)
	if err := Validate(resolved, balances); err != nil {
		return nil, err
	}

	baseUnits, err := chain.ToBaseUnits(resolved.Amount, resolved.Currency)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidAmount, err, "Invalid amount.")
	}
	if p.executor == nil {
		return nil, domain.NewError(domain.KindDispatchFailed, "transfer executor not configured")
	}
	txHash, err := p.executor.Transfer(ctx, TransferRequest{
		From:            userAddress,
		To:              resolved.ToAddress,
		AmountBaseUnits: baseUnits,
		Currency:        resolved.Currency,
		TokenContract:   chain.TokenContract(resolved.Currency),
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindDispatchFailed, err, "Transaction Error: %v", err)
	}

	result := &SubmitResult{Resolved: resolved, TxHash: txHash}
	record := p.buildRecord(userAddress, countryCode, resolved, devDonation, txHash)
	if err := p.store.Append(ctx, record); err != nil {
		p.logger.Error().Err(err).Str("tx_hash", txHash).Msg("donation recorded on-chain but persistence failed")
		return result, domain.WrapError(domain.KindRecordFailed, err,
			"Donation sent (hash %s) but saving the record failed.", txHash)
	}
	result.Record = record
	return result, nil
}

// RecordCompleted appends a record for a transfer that was already executed
// by an external wallet. The command is re-parsed and validated; balances are
// not checked because the funds have already moved.
func (p *Pipeline) RecordCompleted(ctx context.Context, userAddress, rawCommand, txHash, countryCode string, donateToDev bool) (*domain.DonationRecord, error) {
	if !chain.IsWellFormedAddress(userAddress) {
		return nil, domain.NewError(domain.KindInvalidAddress, "Invalid address.")
	}
	resolved, err := p.resolver.Resolve(ctx, rawCommand)
	if err != nil {
		return nil, err
	}
	if err := Validate(resolved, nil); err != nil {
		return nil, err
	}
	devDonation := "0"
	if donateToDev {
		devDonation = resolved.Amount
		if resolved.Cause == domain.CauseCustom {
			resolved.Cause = cause.DeveloperCause
		}
	}
	record := p.buildRecord(userAddress, countryCode, resolved, devDonation, txHash)
	if err := p.store.Append(ctx, record); err != nil {
		return nil, domain.WrapError(domain.KindRecordFailed, err, "Error saving donation: %v", err)
	}
	return record, nil
}

func (p *Pipeline) readBalances(ctx context.Context, userAddress string) domain.Balances {
	if p.balances == nil {
		return nil
	}
	balances, err := p.balances.Balances(ctx, userAddress)
	if err != nil {
		// Unknown balances skip the sufficiency check instead of blocking.
		p.logger.Warn().Err(err).Msg("balance read failed")
		return nil
	}
	return balances
}

func (p *Pipeline) buildRecord(userAddress, countryCode string, resolved domain.ResolvedDonation, devDonation, txHash string) *domain.DonationRecord {
	return &domain.DonationRecord{
		ID:          uuid.NewString(),
		UserAddress: userAddress,
		Amount:      resolved.Amount,
		Currency:    resolved.Currency,
		ToAddress:   resolved.ToAddress,
		Cause:       resolved.Cause,
		DevDonation: devDonation,
		TxHash:      txHash,
		CountryCode: countryCode,
		CreatedAt:   time.Now().UTC(),
	}
}
