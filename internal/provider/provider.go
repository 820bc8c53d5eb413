package provider

import (
    "context"
    "fmt"

    "github.com/shopspring/decimal"
)

// Quote is the per-asset data returned by a provider.
// A nil field means the service did not report it.
type Quote struct {
    Price     *decimal.Decimal `json:"price,omitempty"`
    Change24h *decimal.Decimal `json:"change_24h,omitempty"`
}

// QuoteSet maps asset identifiers to quotes for a single fetch.
type QuoteSet map[string]Quote

type Provider interface {
    Name() string
    Fetch(ctx context.Context, ids []string) (QuoteSet, error)
    Close() error
}

// Kind classifies a failed fetch.
type Kind int

const (
    KindTimeout Kind = iota + 1
    KindConnection
    KindHTTPStatus
    KindParse
    KindTransport
)

func (k Kind) String() string {
    switch k {
    case KindTimeout:
        return "Timeout"
    case KindConnection:
        return "ConnectionFailure"
    case KindHTTPStatus:
        return "HTTPStatusError"
    case KindParse:
        return "ParseError"
    case KindTransport:
        return "OtherTransportError"
    default:
        return "Unknown"
    }
}

// FetchError is returned by providers for every failed fetch.
type FetchError struct {
    Kind       Kind
    StatusCode int
    Err        error
}

func (e *FetchError) Error() string {
    switch {
    case e.Kind == KindHTTPStatus:
        return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
    case e.Err != nil:
        return fmt.Sprintf("%s: %v", e.Kind, e.Err)
    default:
        return e.Kind.String()
    }
}

func (e *FetchError) Unwrap() error { return e.Err }
