package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donationagent/internal/domain"
	"donationagent/internal/sqlinline"
)

// Querier is the slice of the pgx pool the repository needs; tests substitute
// an in-memory implementation.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DonationRepositoryPG persists donation records in PostgreSQL. The table is
// append-only: records are inserted once and never updated.
type DonationRepositoryPG struct {
	sql Querier
}

// NewDonationRepository creates the donation repo.
func NewDonationRepository(sql Querier) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Append inserts one donation record.
func (r *DonationRepositoryPG) Append(ctx context.Context, record *domain.DonationRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertDonation,
		record.ID, record.UserAddress, record.Amount, string(record.Currency),
		record.ToAddress, record.Cause, record.DevDonation, record.TxHash,
		record.CountryCode, record.CreatedAt)
	return err
}

// ListByUser returns a user's donations, newest first. Address comparison is
// case-insensitive.
func (r *DonationRepositoryPG) ListByUser(ctx context.Context, userAddress string) ([]domain.DonationRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByUser, userAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DonationRecord
	for rows.Next() {
		var rec domain.DonationRecord
		var currency string
		if err := rows.Scan(&rec.ID, &rec.UserAddress, &rec.Amount, &currency,
			&rec.ToAddress, &rec.Cause, &rec.DevDonation, &rec.TxHash,
			&rec.CountryCode, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Currency = domain.Currency(currency)
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Stats aggregates totals per cause and currency. Empty filters match
// everything.
func (r *DonationRepositoryPG) Stats(ctx context.Context, causeFilter, currencyFilter string) ([]domain.CauseStat, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QDonationStats, causeFilter, currencyFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CauseStat
	for rows.Next() {
		var stat domain.CauseStat
		var currency string
		if err := rows.Scan(&stat.Cause, &currency, &stat.Total, &stat.Count); err != nil {
			return nil, err
		}
		stat.Currency = domain.Currency(currency)
		items = append(items, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
