// Package quote resolves ticker symbols to current price snapshots.
package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSymbolNotFound is returned when a provider cannot resolve a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// Quote is a point-in-time price snapshot for one symbol. Quotes are
// never persisted; every trade fetches a fresh one.
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// Provider looks up a live quote for a symbol.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// Normalize canonicalizes a ticker symbol. Symbols are uppercased and
// trimmed exactly once, before both lookup and storage, so the ledger
// can never hold two rows for the same ticker in different cases.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
