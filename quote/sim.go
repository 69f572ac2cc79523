package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// SimProvider serves quotes from an in-memory table. It backs the
// default configuration and the test suite; prices only move when a
// test moves them.
type SimProvider struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewSim returns a provider preloaded with a handful of well-known
// tickers.
func NewSim() *SimProvider {
	p := &SimProvider{quotes: make(map[string]Quote)}
	for _, q := range []struct {
		symbol, name, price string
	}{
		{"AAPL", "Apple Inc.", "185.50"},
		{"MSFT", "Microsoft Corporation", "410.30"},
		{"GOOG", "Alphabet Inc.", "172.15"},
		{"AMZN", "Amazon.com, Inc.", "178.90"},
		{"NFLX", "Netflix, Inc.", "625.40"},
		{"TSLA", "Tesla, Inc.", "248.75"},
	} {
		p.Set(q.symbol, q.name, decimal.RequireFromString(q.price))
	}
	return p
}

// Set adds or replaces the quote for symbol.
func (p *SimProvider) Set(symbol, name string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Normalize(symbol)
	p.quotes[s] = Quote{Symbol: s, Name: name, Price: price}
}

// Delete removes symbol so subsequent lookups miss.
func (p *SimProvider) Delete(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.quotes, Normalize(symbol))
}

func (p *SimProvider) Lookup(_ context.Context, symbol string) (Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	q, ok := p.quotes[Normalize(symbol)]
	if !ok {
		return Quote{}, fmt.Errorf("%q: %w", symbol, ErrSymbolNotFound)
	}
	return q, nil
}
