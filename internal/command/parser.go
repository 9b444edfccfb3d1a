// Package command implements the deterministic donation command parser. The
// grammar is a single rigid sentence on purpose: it is the auditable ground
// truth the assisted resolver is reconciled against.
package command

import (
	"regexp"
	"strings"

	"donationagent/internal/cause"
	"donationagent/internal/chain"
	"donationagent/internal/domain"
)

// commandPattern matches "Donate <amount> <currency> to <target>" with
// case-insensitive keywords. The currency token is matched loosely so an
// unsupported code is reported as such instead of as a format error.
var commandPattern = regexp.MustCompile(`(?i)Donate\s+(\d+\.?\d*)\s+([A-Za-z]+)\s+to\s+(.+)`)

// Parser extracts a donation instruction from free text, resolving cause
// identifiers through the registry.
type Parser struct {
	registry *cause.Registry
}

// NewParser builds a parser over the given cause registry.
func NewParser(registry *cause.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse extracts {amount, currency, target} from rawText. The target may be
// a registered cause (resolved to its address) or a literal well-formed
// address (cause recorded as "custom"). Amount positivity is left to the
// validation gate.
func (p *Parser) Parse(rawText string) (domain.ResolvedDonation, error) {
	match := commandPattern.FindStringSubmatch(strings.TrimSpace(rawText))
	if match == nil {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindInvalidFormat,
			"Invalid command format. Use: Donate [amount] [ETH|USDC|USDT] to [cause/address].")
	}

	amount, rawCurrency, target := match[1], match[2], strings.TrimSpace(match[3])

	currency, ok := domain.ParseCurrency(rawCurrency)
	if !ok {
		return domain.ResolvedDonation{}, domain.NewError(domain.KindUnsupportedCurrency,
			"Unsupported currency. Use ETH, USDC, or USDT.")
	}

	if chain.IsWellFormedAddress(target) {
		return domain.ResolvedDonation{
			Amount:    amount,
			Currency:  currency,
			ToAddress: target,
			Cause:     domain.CauseCustom,
		}, nil
	}

	if address, ok := p.registry.Resolve(target); ok {
		return domain.ResolvedDonation{
			Amount:    amount,
			Currency:  currency,
			ToAddress: address,
			Cause:     strings.ToLower(target),
		}, nil
	}

	return domain.ResolvedDonation{}, domain.NewError(domain.KindUnknownTarget,
		"Invalid cause or address format.")
}
