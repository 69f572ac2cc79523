package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openfolio/brokerd/ledger"
	"github.com/openfolio/brokerd/quote"
)

// Service executes trades for authenticated users.
type Service struct {
	ledger Ledger
	quotes quote.Provider
	log    *zap.Logger
}

// New wires a transaction service over the ledger and quote provider.
func New(l Ledger, quotes quote.Provider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{ledger: l, quotes: quotes, log: log}
}

func validateOrder(symbol string, shares int64) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required: %w", ErrValidation)
	}
	if shares <= 0 {
		return fmt.Errorf("shares must be a positive integer: %w", ErrValidation)
	}
	return nil
}

// Buy purchases shares of symbol at the current quoted price. The
// price is fetched once; the ledger computes cost and history from
// that single value inside one transaction.
func (s *Service) Buy(ctx context.Context, userID int64, symbol string, shares int64) (ledger.HistoryEntry, error) {
	return s.trade(ctx, ledger.SideBuy, userID, symbol, shares)
}

// Sell disposes of shares of symbol at the current quoted price.
func (s *Service) Sell(ctx context.Context, userID int64, symbol string, shares int64) (ledger.HistoryEntry, error) {
	return s.trade(ctx, ledger.SideSell, userID, symbol, shares)
}

func (s *Service) trade(ctx context.Context, side ledger.Side, userID int64, symbol string, shares int64) (ledger.HistoryEntry, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return ledger.HistoryEntry{}, err
	}
	sym := quote.Normalize(symbol)

	q, err := s.quotes.Lookup(ctx, sym)
	if err != nil {
		return ledger.HistoryEntry{}, err
	}

	entry, err := s.ledger.ApplyTrade(ctx, ledger.Trade{
		UserID: userID,
		Side:   side,
		Symbol: sym,
		Shares: shares,
		Price:  q.Price,
	})
	if err != nil {
		return ledger.HistoryEntry{}, err
	}

	s.log.Info("trade applied",
		zap.String("side", string(side)),
		zap.Int64("user_id", userID),
		zap.String("symbol", sym),
		zap.Int64("shares", shares),
		zap.String("total", entry.TotalValue.String()),
	)
	return entry, nil
}

// Quote is a read-through to the quote provider.
func (s *Service) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	if symbol == "" {
		return quote.Quote{}, fmt.Errorf("symbol is required: %w", ErrValidation)
	}
	return s.quotes.Lookup(ctx, quote.Normalize(symbol))
}

// History returns the user's completed trades in insertion order.
func (s *Service) History(ctx context.Context, userID int64) ([]ledger.HistoryEntry, error) {
	return s.ledger.ListHistory(ctx, userID)
}
