package pipeline

import (
	"context"
	"math/big"

	"donationagent/internal/domain"
)

// TransferRequest is a validated instruction handed to the transfer executor.
// Amount is already converted to base units; TokenContract is empty for
// native-currency transfers.
type TransferRequest struct {
	From            string
	To              string
	AmountBaseUnits *big.Int
	Currency        domain.Currency
	TokenContract   string
}

// BalanceSource reports wallet balances by currency. Implementations return
// unknown balances rather than zeroes when a figure is not available.
type BalanceSource interface {
	Balances(ctx context.Context, userAddress string) (domain.Balances, error)
}

// TransferExecutor submits a transfer for signing and broadcast, returning a
// transaction reference. A declined signature or node failure is reported as
// an error and never retried here.
type TransferExecutor interface {
	Transfer(ctx context.Context, req TransferRequest) (string, error)
}

// Store appends completed donation records.
type Store interface {
	Append(ctx context.Context, record *domain.DonationRecord) error
}

// CommandResolver interprets a free-text donation command.
type CommandResolver interface {
	Resolve(ctx context.Context, rawText string) (domain.ResolvedDonation, error)
}
