package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mork-fetch/pkg/utils"
)

const dexScreenerTokenAPI = "https://api.dexscreener.com/latest/dex/tokens"

// DexPair is one trading pair from the DexScreener token endpoint.
// PriceUsd can be null or missing when no USD quote exists for a pair.
type DexPair struct {
	ChainID     string       `json:"chainId"`
	DexID       string       `json:"dexId"`
	PairAddress string       `json:"pairAddress"`
	PriceUsd    string       `json:"priceUsd"`
	Liquidity   DexLiquidity `json:"liquidity"`
}

// DexLiquidity holds the USD liquidity of a pair.
type DexLiquidity struct {
	USD float64 `json:"usd"`
}

type dexScreenerResponse struct {
	Pairs []DexPair `json:"pairs"`
}

// DexScreenerClient fetches token quotes from the DexScreener API.
type DexScreenerClient struct {
	baseURL string
	client  *http.Client
	retry   utils.RetryConfig
}

// NewDexScreenerClient creates a client with a bounded request timeout.
func NewDexScreenerClient() *DexScreenerClient {
	return &DexScreenerClient{
		baseURL: dexScreenerTokenAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
		retry: utils.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: 250 * time.Millisecond,
		},
	}
}

// Quote returns the USD price of mint, selecting the highest-liquidity
// pair that reports a USD price.
func (c *DexScreenerClient) Quote(mint string) (float64, error) {
	var pairs []DexPair
	err := utils.Retry(context.Background(), c.retry, func() error {
		var ferr error
		pairs, ferr = c.fetchPairs(mint)
		return ferr
	})
	if err != nil {
		return 0, err
	}
	return bestUsdPrice(pairs)
}

func (c *DexScreenerClient) fetchPairs(mint string) ([]DexPair, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, mint)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching from DexScreener: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DexScreener status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading DexScreener response: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var parsed dexScreenerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding DexScreener JSON: %w", err)
	}
	return parsed.Pairs, nil
}

// bestUsdPrice picks the pair with the highest USD liquidity among
// those that report a parseable USD price.
func bestUsdPrice(pairs []DexPair) (float64, error) {
	best := 0.0
	bestLiq := -1.0
	for _, p := range pairs {
		if p.PriceUsd == "" {
			continue
		}
		price, err := strconv.ParseFloat(p.PriceUsd, 64)
		if err != nil || price <= 0 {
			continue
		}
		if p.Liquidity.USD > bestLiq {
			best = price
			bestLiq = p.Liquidity.USD
		}
	}
	if bestLiq < 0 {
		return 0, fmt.Errorf("no pair with a USD price")
	}
	return best, nil
}
