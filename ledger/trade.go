package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfolio/brokerd/internal/id"
)

// ApplyTrade applies one buy or sell as a single transaction: the
// balance update, the holding upsert or delete, and the history insert
// either all persist or none do. Balance and holding are re-read
// inside the transaction, so two concurrent purchases against a cash
// balance that covers only one of them produce exactly one success.
//
// Business verdicts come back as ErrInsufficientFunds, ErrNoHolding,
// or ErrInsufficientShares with the database untouched.
func (s *Store) ApplyTrade(ctx context.Context, t Trade) (HistoryEntry, error) {
	if t.Shares <= 0 {
		return HistoryEntry{}, fmt.Errorf("apply trade: shares must be positive, got %d", t.Shares)
	}
	if !t.Price.IsPositive() {
		return HistoryEntry{}, fmt.Errorf("apply trade: price must be positive, got %s", t.Price)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HistoryEntry{}, err
	}
	defer tx.Rollback()

	entry, err := applyTradeTx(ctx, tx, t)
	if err != nil {
		return HistoryEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return HistoryEntry{}, err
	}
	return entry, nil
}

func applyTradeTx(ctx context.Context, tx *sql.Tx, t Trade) (HistoryEntry, error) {
	var cashRaw string
	err := tx.QueryRowContext(ctx,
		`SELECT cash FROM users WHERE id = ?`, t.UserID,
	).Scan(&cashRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return HistoryEntry{}, ErrUserNotFound
		}
		return HistoryEntry{}, err
	}
	balance, err := decimal.NewFromString(cashRaw)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("bad cash value for user %d: %w", t.UserID, err)
	}

	// The one place total cost is computed. The same value feeds the
	// balance mutation and the history row, so the two cannot drift.
	total := t.Price.Mul(decimal.NewFromInt(t.Shares))

	var after decimal.Decimal
	switch t.Side {
	case SideBuy:
		if balance.LessThan(total) {
			return HistoryEntry{}, ErrInsufficientFunds
		}
		after = balance.Sub(total)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO holdings (user_id, symbol, shares)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, symbol)
			DO UPDATE SET shares = shares + excluded.shares`,
			t.UserID, t.Symbol, t.Shares,
		); err != nil {
			return HistoryEntry{}, err
		}

	case SideSell:
		var held int64
		err := tx.QueryRowContext(ctx,
			`SELECT shares FROM holdings WHERE user_id = ? AND symbol = ?`,
			t.UserID, t.Symbol,
		).Scan(&held)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return HistoryEntry{}, fmt.Errorf("%q: %w", t.Symbol, ErrNoHolding)
			}
			return HistoryEntry{}, err
		}
		if held < t.Shares {
			return HistoryEntry{}, ErrInsufficientShares
		}

		if held == t.Shares {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM holdings WHERE user_id = ? AND symbol = ?`,
				t.UserID, t.Symbol)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE holdings SET shares = shares - ? WHERE user_id = ? AND symbol = ?`,
				t.Shares, t.UserID, t.Symbol)
		}
		if err != nil {
			return HistoryEntry{}, err
		}
		after = balance.Add(total)

	default:
		return HistoryEntry{}, fmt.Errorf("apply trade: unknown side %q", t.Side)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET cash = ? WHERE id = ?`,
		after.String(), t.UserID,
	); err != nil {
		return HistoryEntry{}, err
	}

	entry := HistoryEntry{
		ID:            id.New(),
		UserID:        t.UserID,
		Side:          t.Side,
		Symbol:        t.Symbol,
		Shares:        t.Shares,
		Price:         t.Price,
		TotalValue:    total,
		BalanceBefore: balance,
		BalanceAfter:  after,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history
		(id, user_id, type, symbol, shares, price, total_value, balance_before, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Side, entry.Symbol, entry.Shares,
		entry.Price.String(), entry.TotalValue.String(),
		entry.BalanceBefore.String(), entry.BalanceAfter.String(), entry.CreatedAt,
	); err != nil {
		return HistoryEntry{}, err
	}

	return entry, nil
}
