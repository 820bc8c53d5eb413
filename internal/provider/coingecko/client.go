package coingecko

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	baseURL         = "https://api.coingecko.com/api/v3"
	defaultCurrency = "usd"
	// demoKeyHeader authenticates requests made with a free demo API key.
	// https://docs.coingecko.com/reference/authentication
	demoKeyHeader = "x-cg-demo-api-key"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CoinGeckoAPIClient is a client for the CoinGecko API.
type CoinGeckoAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// currency is the vs_currency prices are quoted in.
	currency string
	// timeout bounds a single request. Zero leaves it to the HTTP client.
	timeout time.Duration
	// httpClient is the HTTP client, owned for the lifetime of the API client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	logger logrus.FieldLogger
}

// CoinGeckoAPIClientOption is a configuration option for the CoinGecko API client.
type CoinGeckoAPIClientOption func(*CoinGeckoAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.baseURL = baseURL
	}
}

// WithCurrency sets the currency prices are quoted in.
func WithCurrency(currency string) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.currency = currency
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger logrus.FieldLogger) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.logger = logger
	}
}

// NewCoinGeckoAPIClient creates a new CoinGecko API client. key may be empty.
func NewCoinGeckoAPIClient(key string, options ...CoinGeckoAPIClientOption) (*CoinGeckoAPIClient, error) {
	var coinGeckoAPIClient = &CoinGeckoAPIClient{
		baseURL:    baseURL,
		currency:   defaultCurrency,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		logger:     logrus.StandardLogger(),
	}
	if key != "" {
		coinGeckoAPIClient.header.Set(demoKeyHeader, key)
	}
	for _, option := range options {
		option(coinGeckoAPIClient)
	}
	return coinGeckoAPIClient, nil
}

// Close releases the connections held by the underlying HTTP client.
func (c *CoinGeckoAPIClient) Close() error {
	switch hc := c.httpClient.(type) {
	case io.Closer:
		return hc.Close()
	case interface{ CloseIdleConnections() }:
		hc.CloseIdleConnections()
	}
	return nil
}
