// Package broker is the transaction service: it validates buy and
// sell requests, prices them against the quote provider, and applies
// them to the ledger as atomic units.
package broker

import (
	"context"
	"errors"

	"github.com/openfolio/brokerd/ledger"
	"github.com/openfolio/brokerd/quote"
)

// ErrValidation marks user-correctable input problems. Callers wrap it
// with the offending field.
var ErrValidation = errors.New("invalid input")

// Business verdicts surfaced to the request boundary. Aliased here so
// handlers only ever import broker.
var (
	ErrSymbolNotFound     = quote.ErrSymbolNotFound
	ErrInsufficientFunds  = ledger.ErrInsufficientFunds
	ErrInsufficientShares = ledger.ErrInsufficientShares
	ErrNoHolding          = ledger.ErrNoHolding
)

// Ledger is the slice of the store the service needs.
type Ledger interface {
	GetUser(ctx context.Context, id int64) (ledger.User, error)
	ListHoldings(ctx context.Context, userID int64) ([]ledger.Holding, error)
	ListHistory(ctx context.Context, userID int64) ([]ledger.HistoryEntry, error)
	ApplyTrade(ctx context.Context, t ledger.Trade) (ledger.HistoryEntry, error)
}
