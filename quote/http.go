package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// HTTPProvider fetches quotes from an external quote API speaking
// `GET {base}/quote?symbol=X` with a JSON body of {symbol,name,price}.
type HTTPProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTP returns a provider for the API at baseURL. A zero timeout
// falls back to a sane default so a stalled provider cannot hold a
// trade open indefinitely.
func NewHTTP(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type quotePayload struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

func (p *HTTPProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s", p.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, fmt.Errorf("%q: %w", symbol, ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Quote{}, fmt.Errorf("quote fetch: status %d, body: %s", resp.StatusCode, body)
	}

	var payload quotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("quote decode: %w", err)
	}
	if payload.Symbol == "" || !payload.Price.IsPositive() {
		// Some providers answer 200 with an empty body for bad tickers.
		return Quote{}, fmt.Errorf("%q: %w", symbol, ErrSymbolNotFound)
	}

	return Quote{
		Symbol: Normalize(payload.Symbol),
		Name:   payload.Name,
		Price:  payload.Price,
	}, nil
}
