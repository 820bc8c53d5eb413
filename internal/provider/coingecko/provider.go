package coingecko

import (
	"context"

	"cryptodash/internal/provider"
)

var _ provider.Provider = (*CoinGeckoAPIClient)(nil)

func (c *CoinGeckoAPIClient) Name() string { return "CoinGecko" }

// Fetch performs exactly one request for ids. There are no retries.
func (c *CoinGeckoAPIClient) Fetch(ctx context.Context, ids []string) (provider.QuoteSet, error) {
	return c.GetSimplePrice(ctx, ids)
}
