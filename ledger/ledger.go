// Package ledger is the persistent store for user balances, holdings,
// and the append-only trade history.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser indicates the username is already taken.
	ErrDuplicateUser = errors.New("username already taken")
	// ErrInsufficientFunds indicates cash does not cover a purchase.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoHolding indicates the user holds no shares of the symbol.
	ErrNoHolding = errors.New("no holding for symbol")
	// ErrInsufficientShares indicates the holding is smaller than the
	// requested sale.
	ErrInsufficientShares = errors.New("insufficient shares")
)

// User is one account row. Cash only moves through ApplyTrade.
type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Cash         decimal.Decimal `json:"cash"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Holding is a user's position in one symbol. Shares are always
// positive; a position sold down to zero is deleted, not zeroed.
type Holding struct {
	UserID int64  `json:"user_id"`
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade describes one buy or sell to apply. Price is the quote the
// caller fetched; every derived field in the resulting history row is
// computed from this same price exactly once.
type Trade struct {
	UserID int64
	Side   Side
	Symbol string
	Shares int64
	Price  decimal.Decimal
}

// HistoryEntry is one immutable record of a completed trade.
type HistoryEntry struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"user_id"`
	Side          Side            `json:"type"`
	Symbol        string          `json:"symbol"`
	Shares        int64           `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}
