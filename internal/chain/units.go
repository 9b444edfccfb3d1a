package chain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"donationagent/internal/domain"
)

// Token contract addresses on Base mainnet for the ERC-20 currencies.
const (
	USDCContract = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	USDTContract = "0xfde4c96c8593536e31f229ea8f37b2ada2699bb2"
)

var currencyDecimals = map[domain.Currency]int32{
	domain.CurrencyETH:  18,
	domain.CurrencyUSDC: 6,
	domain.CurrencyUSDT: 6,
}

// Decimals returns the number of decimal places for a supported currency.
func Decimals(c domain.Currency) (int32, error) {
	d, ok := currencyDecimals[c]
	if !ok {
		return 0, fmt.Errorf("chain: no decimals for currency %q", c)
	}
	return d, nil
}

// TokenContract returns the ERC-20 contract address for a token currency, or
// "" for the native currency.
func TokenContract(c domain.Currency) string {
	switch c {
	case domain.CurrencyUSDC:
		return USDCContract
	case domain.CurrencyUSDT:
		return USDTContract
	}
	return ""
}

// ToBaseUnits converts a decimal amount string to the currency's smallest
// indivisible unit (wei for ETH, 10^-6 for USDC/USDT). This is the only place
// in the pipeline where the decimal representation is left behind; precision
// past the currency's decimals is truncated toward zero.
func ToBaseUnits(amount string, c domain.Currency) (*big.Int, error) {
	dec, ok := currencyDecimals[c]
	if !ok {
		return nil, fmt.Errorf("chain: no decimals for currency %q", c)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("chain: parse amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("chain: amount %q is not positive", amount)
	}
	return d.Shift(dec).Truncate(0).BigInt(), nil
}
