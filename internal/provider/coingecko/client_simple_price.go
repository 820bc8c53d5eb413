package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cryptodash/internal/provider"
)

// maxBodyBytes caps the response body read for a single request.
const maxBodyBytes = 4 << 20

// GetSimplePrice retrieves the current price and 24h change for ids in a single request.
// Ids missing from the response are missing from the result.
// Every failure is a *provider.FetchError, including an empty ids list,
// except cancellation of ctx which returns ctx.Err().
func (c *CoinGeckoAPIClient) GetSimplePrice(ctx context.Context, ids []string) (provider.QuoteSet, error) {
	if len(ids) == 0 {
		return nil, c.fail(&provider.FetchError{Kind: provider.KindTransport, Err: errors.New("no ids requested")})
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	query := maps.Clone(c.query)
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", c.currency)
	query.Set("include_24hr_change", "true")

	url := fmt.Sprintf("%s/simple/price?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, c.fail(&provider.FetchError{Kind: provider.KindTransport, Err: fmt.Errorf("creating request: %w", err)})
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("ids", len(ids)).Debug("requesting simple price")
	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.fail(classifyTransportError(err))
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusTooManyRequests:
		c.logger.Warn("rate limited by price service")
		return nil, c.fail(&provider.FetchError{Kind: provider.KindHTTPStatus, StatusCode: res.StatusCode})

	default:
		return nil, c.fail(&provider.FetchError{Kind: provider.KindHTTPStatus, StatusCode: res.StatusCode})
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, c.fail(&provider.FetchError{Kind: provider.KindTimeout, Err: err})
		}
		return nil, c.fail(&provider.FetchError{Kind: provider.KindParse, Err: fmt.Errorf("decoding price response: %w", err)})
	}
	if body == nil {
		return nil, c.fail(&provider.FetchError{Kind: provider.KindParse, Err: errors.New("decoding price response: null body")})
	}

	changeKey := c.currency + "_24h_change"
	quotes := make(provider.QuoteSet, len(ids))
	for _, id := range ids {
		// {
		//   "usd": 65000.5,
		//   "usd_24h_change": 1.23
		// }
		raw, ok := body[id]
		if !ok {
			continue
		}
		item, ok := raw.(map[string]any)
		if !ok {
			c.logger.WithField("id", id).Debugf("unexpected entry type: %T", raw)
			quotes[id] = provider.Quote{}
			continue
		}
		quotes[id] = provider.Quote{
			Price:     c.decimalField(id, item, c.currency),
			Change24h: c.decimalField(id, item, changeKey),
		}
	}

	return quotes, nil
}

// decimalField extracts a numeric field. Missing or malformed values yield nil.
func (c *CoinGeckoAPIClient) decimalField(id string, item map[string]any, key string) *decimal.Decimal {
	n, err := parseNullableValue[json.Number](item, key)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"id": id, "field": key}).Debugf("decoding field: %v", err)
		return nil
	}
	if n == nil {
		return nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		c.logger.WithFields(logrus.Fields{"id": id, "field": key}).Debugf("decoding field: %v", err)
		return nil
	}
	return &d
}

func (c *CoinGeckoAPIClient) fail(err *provider.FetchError) error {
	fields := logrus.Fields{"kind": err.Kind.String()}
	if err.StatusCode != 0 {
		fields["status"] = err.StatusCode
	}
	c.logger.WithFields(fields).Errorf("price request failed: %v", err)
	return err
}

// classifyTransportError maps an error returned by HTTPClient.Do to a failure kind.
func classifyTransportError(err error) *provider.FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &provider.FetchError{Kind: provider.KindTimeout, Err: err}
	case isConnectionError(err):
		return &provider.FetchError{Kind: provider.KindConnection, Err: err}
	default:
		return &provider.FetchError{Kind: provider.KindTransport, Err: err}
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}
