package dashboard

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"cryptodash/internal/provider"
)

// ANSI escape sequences.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorBold   = "\033[1m"
	clearScreen = "\033[H\033[2J"
)

const (
	notAvailable = "N/A"
	arrowUp      = "↑"
	arrowDown    = "↓"
	ruleWidth    = 60
	nameWidth    = 15
	cellWidth    = 15
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
}

// Renderer formats a QuoteSet as a terminal table.
type Renderer struct {
	// Currency is the vs_currency code prices are quoted in.
	Currency string
}

// Render clears the terminal and writes the table followed by a footer stamped with now.
func (r Renderer) Render(w io.Writer, ids []string, quotes provider.QuoteSet, now time.Time) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(r.Table(ids, quotes))
	fmt.Fprintf(&b, "\nLast updated: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("Press Ctrl+C to exit\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Table renders header, one row per id in the given order, and the closing rule.
func (r Renderer) Table(ids []string, quotes provider.QuoteSet) string {
	var b strings.Builder
	rule := colorBold + strings.Repeat("=", ruleWidth) + colorReset + "\n"

	b.WriteString(rule)
	priceHeader := fmt.Sprintf("Price (%s)", strings.ToUpper(r.currency()))
	fmt.Fprintf(&b, "%s%-*s %*s %*s%s\n", colorBold, nameWidth, "Coin", cellWidth, priceHeader, cellWidth, "24h Change", colorReset)
	b.WriteString(rule)

	for _, id := range ids {
		price, change := r.Cells(quotes[id])
		fmt.Fprintf(&b, "%-*s %*s %s\n", nameWidth, DisplayName(id), cellWidth, price, change)
	}

	b.WriteString(rule)
	return b.String()
}

// Cells returns the price and change cells for q. A price that is missing or not
// strictly positive makes both cells N/A.
func (r Renderer) Cells(q provider.Quote) (price, change string) {
	if q.Price == nil || !q.Price.IsPositive() {
		return notAvailable, fmt.Sprintf("%*s", cellWidth, notAvailable)
	}
	c := decimal.Zero
	if q.Change24h != nil {
		c = *q.Change24h
	}
	return r.FormatPrice(*q.Price), FormatChange(c)
}

// FormatPrice renders p with thousands separators and two decimals, e.g. $65,000.50.
func (r Renderer) FormatPrice(p decimal.Decimal) string {
	amount := groupThousands(p.StringFixed(2))
	if sym, ok := currencySymbols[r.currency()]; ok {
		return sym + amount
	}
	return strings.ToUpper(r.currency()) + " " + amount
}

// groupThousands inserts separators into the integer part of a fixed-point string.
func groupThousands(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return fixed
	}
	grouped := humanize.BigComma(n)
	if intPart == "-0" {
		grouped = "-0"
	}
	if frac == "" {
		return grouped
	}
	return grouped + "." + frac
}

// FormatChange renders a signed percentage as a coloured arrow and magnitude.
func FormatChange(c decimal.Decimal) string {
	arrow, color := arrowUp, colorGreen
	if c.IsNegative() {
		arrow, color = arrowDown, colorRed
	}
	text := fmt.Sprintf("%s %7s%%", arrow, c.Abs().StringFixed(2))
	return color + fmt.Sprintf("%*s", cellWidth, text) + colorReset
}

// DisplayName upper-cases the first letter of id and lower-cases the rest.
func DisplayName(id string) string {
	first, size := utf8.DecodeRuneInString(id)
	if first == utf8.RuneError {
		return id
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(id[size:])
}

func (r Renderer) currency() string {
	if r.Currency == "" {
		return "usd"
	}
	return strings.ToLower(r.Currency)
}
