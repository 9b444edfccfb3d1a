package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a supported donation currency code.
type Currency string

const (
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
	CurrencyUSDT Currency = "USDT"
)

// SupportedCurrencies lists every currency the pipeline accepts, in display order.
var SupportedCurrencies = []Currency{CurrencyETH, CurrencyUSDC, CurrencyUSDT}

// ParseCurrency normalizes a currency code (case-insensitive) and reports
// whether it is supported.
func ParseCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	switch c {
	case CurrencyETH, CurrencyUSDC, CurrencyUSDT:
		return c, true
	}
	return c, false
}

// CauseCustom marks a donation addressed to a literal address rather than a
// registered cause.
const CauseCustom = "custom"

// ResolvedDonation is the canonical transfer instruction produced by the
// parser or resolver. Amount stays a decimal string until the dispatch
// boundary; instances are never mutated after creation.
type ResolvedDonation struct {
	Amount    string
	Currency  Currency
	ToAddress string
	Cause     string
}

// Balance is a wallet balance for one currency. Known distinguishes a real
// zero balance from a balance the wallet layer has not reported yet; the
// validation gate must never treat an unknown balance as zero.
type Balance struct {
	Amount decimal.Decimal
	Known  bool
}

// KnownBalance wraps a reported balance amount.
func KnownBalance(amount decimal.Decimal) Balance {
	return Balance{Amount: amount, Known: true}
}

// UnknownBalance marks a balance the wallet layer could not report.
func UnknownBalance() Balance {
	return Balance{}
}

// Balances maps currency to the wallet balance reported for it.
type Balances map[Currency]Balance

// For returns the balance for the given currency, unknown when absent.
func (b Balances) For(c Currency) Balance {
	if b == nil {
		return UnknownBalance()
	}
	bal, ok := b[c]
	if !ok {
		return UnknownBalance()
	}
	return bal
}

// DonationRecord is the persisted outcome of one dispatched transfer.
// Records are append-only; DevDonation is "0" for primary donations and the
// donated amount for developer follow-ups.
type DonationRecord struct {
	ID          string
	UserAddress string
	Amount      string
	Currency    Currency
	ToAddress   string
	Cause       string
	DevDonation string
	TxHash      string
	CountryCode string
	CreatedAt   time.Time
}

// CauseStat is one row of the per-cause donation aggregation.
type CauseStat struct {
	Cause    string
	Currency Currency
	Total    string
	Count    int64
}
