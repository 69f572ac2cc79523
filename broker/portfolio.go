package broker

import (
	"context"

	"github.com/shopspring/decimal"
)

// Position is one holding enriched with a live quote.
type Position struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Portfolio is the account summary: cash, every position at its live
// price, and the aggregates.
type Portfolio struct {
	Cash        decimal.Decimal `json:"cash"`
	Positions   []Position      `json:"positions"`
	StocksValue decimal.Decimal `json:"stocks_value"`
	TotalAssets decimal.Decimal `json:"total_assets"`
}

// Portfolio prices every holding with a fresh quote and aggregates.
// Read-only. Display uses live prices, not the prices positions were
// acquired at.
func (s *Service) Portfolio(ctx context.Context, userID int64) (Portfolio, error) {
	u, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}

	holdings, err := s.ledger.ListHoldings(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}

	p := Portfolio{
		Cash:      u.Cash,
		Positions: make([]Position, 0, len(holdings)),
	}
	for _, h := range holdings {
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return Portfolio{}, err
		}
		value := q.Price.Mul(decimal.NewFromInt(h.Shares))
		p.Positions = append(p.Positions, Position{
			Symbol: h.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Value:  value,
		})
		p.StocksValue = p.StocksValue.Add(value)
	}
	p.TotalAssets = p.Cash.Add(p.StocksValue)

	return p, nil
}
