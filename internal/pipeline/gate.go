package pipeline

import (
	"github.com/shopspring/decimal"

	"donationagent/internal/chain"
	"donationagent/internal/domain"
)

// Validate is the authorization gate run immediately before dispatch. Checks
// are ordered and short-circuit on the first failure: supported currency,
// positive amount, well-formed destination, then sufficient balance. The gate
// is pure and idempotent, so callers may run it speculatively.
//
// An unknown balance skips the sufficiency check rather than failing it;
// comparisons stay in decimal form so no base-unit rounding can change the
// outcome.
func Validate(resolved domain.ResolvedDonation, balances domain.Balances) error {
	if _, ok := domain.ParseCurrency(string(resolved.Currency)); !ok {
		return domain.NewError(domain.KindUnsupportedCurrency,
			"Unsupported currency. Use ETH, USDC, or USDT.")
	}
	if !chain.IsPositiveAmount(resolved.Amount) {
		return domain.NewError(domain.KindInvalidAmount, "Invalid amount.")
	}
	if !chain.IsWellFormedAddress(resolved.ToAddress) {
		return domain.NewError(domain.KindInvalidAddress, "Invalid address.")
	}

	balance := balances.For(resolved.Currency)
	if !balance.Known {
		return nil
	}
	required, err := decimal.NewFromString(resolved.Amount)
	if err != nil {
		return domain.NewError(domain.KindInvalidAmount, "Invalid amount.")
	}
	if balance.Amount.LessThan(required) {
		return domain.NewError(domain.KindInsufficientBalance,
			"Insufficient %s balance. Available: %s %s, Required: %s %s",
			resolved.Currency, balance.Amount.String(), resolved.Currency,
			required.String(), resolved.Currency)
	}
	return nil
}
