package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyTrade(userID int64, symbol string, shares int64, price string) Trade {
	return Trade{
		UserID: userID,
		Side:   SideBuy,
		Symbol: symbol,
		Shares: shares,
		Price:  decimal.RequireFromString(price),
	}
}

func sellTrade(userID int64, symbol string, shares int64, price string) Trade {
	t := buyTrade(userID, symbol, shares, price)
	t.Side = SideSell
	return t
}

func TestApplyTradeBuy(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "1000")

	entry, err := s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 5, "100"))
	require.NoError(t, err)

	assert.Equal(t, SideBuy, entry.Side)
	assert.Equal(t, "500", entry.TotalValue.String())
	assert.Equal(t, "1000", entry.BalanceBefore.String())
	assert.Equal(t, "500", entry.BalanceAfter.String())

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", got.Cash.String())

	h, err := s.GetHolding(ctx, u.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(5), h.Shares)

	hist, err := s.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entry.ID, hist[0].ID)
}

func TestApplyTradeBuyAddsToExistingHolding(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "10000")

	_, err := s.ApplyTrade(ctx, buyTrade(u.ID, "MSFT", 3, "100"))
	require.NoError(t, err)
	_, err = s.ApplyTrade(ctx, buyTrade(u.ID, "MSFT", 2, "110"))
	require.NoError(t, err)

	h, err := s.GetHolding(ctx, u.ID, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, int64(5), h.Shares)

	hs, err := s.ListHoldings(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}

func TestApplyTradeInsufficientFundsLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "100")

	_, err := s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 2, "100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", got.Cash.String())

	hs, err := s.ListHoldings(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, hs)

	hist, err := s.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestApplyTradeSellPartial(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "1000")

	_, err := s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 5, "100"))
	require.NoError(t, err)

	entry, err := s.ApplyTrade(ctx, sellTrade(u.ID, "AAPL", 2, "120"))
	require.NoError(t, err)
	assert.Equal(t, "240", entry.TotalValue.String())
	assert.Equal(t, "740", entry.BalanceAfter.String())

	h, err := s.GetHolding(ctx, u.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.Shares)
}

func TestApplyTradeSellAllDeletesHolding(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "1000")

	_, err := s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 5, "100"))
	require.NoError(t, err)

	_, err = s.ApplyTrade(ctx, sellTrade(u.ID, "AAPL", 5, "100"))
	require.NoError(t, err)

	_, err = s.GetHolding(ctx, u.ID, "AAPL")
	assert.ErrorIs(t, err, ErrNoHolding)

	hist, err := s.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestApplyTradeSellFailures(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "1000")

	_, err := s.ApplyTrade(ctx, sellTrade(u.ID, "AAPL", 1, "100"))
	assert.ErrorIs(t, err, ErrNoHolding)

	_, err = s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 2, "100"))
	require.NoError(t, err)

	_, err = s.ApplyTrade(ctx, sellTrade(u.ID, "AAPL", 3, "100"))
	assert.ErrorIs(t, err, ErrInsufficientShares)

	h, err := s.GetHolding(ctx, u.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.Shares)
}

func TestApplyTradeUnknownUser(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	_, err := s.ApplyTrade(context.Background(), buyTrade(42, "AAPL", 1, "100"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHistoryInsertionOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "100000")

	symbols := []string{"AAPL", "MSFT", "GOOG", "AAPL", "MSFT"}
	for _, sym := range symbols {
		_, err := s.ApplyTrade(ctx, buyTrade(u.ID, sym, 1, "10"))
		require.NoError(t, err)
	}

	hist, err := s.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, hist, len(symbols))
	for i, e := range hist {
		assert.Equal(t, symbols[i], e.Symbol)
	}
}

// Two simultaneous buys against a balance that covers exactly one of
// them: one must win, one must fail, and the final balance reflects a
// single deduction.
func TestConcurrentBuySingleWinner(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "100")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ApplyTrade(ctx, buyTrade(u.ID, "AAPL", 1, "100"))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, ErrInsufficientFunds):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "0", got.Cash.String())

	h, err := s.GetHolding(ctx, u.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.Shares)

	hist, err := s.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}
