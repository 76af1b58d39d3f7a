package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders and parses currency strings for one locale
// convention. The defaults follow the es-CO presentation the app ships
// with: "$" prefix, dot thousands grouping, comma decimals.
type Formatter struct {
	Symbol       string
	ThousandsSep rune
	DecimalSep   rune
	Decimals     int
}

// DefaultFormatter returns the es-CO convention with two decimals.
func DefaultFormatter() Formatter {
	return Formatter{Symbol: "$", ThousandsSep: '.', DecimalSep: ',', Decimals: 2}
}

// COPFormatter returns the whole-peso convention used on goal cards.
func COPFormatter() Formatter {
	return Formatter{Symbol: "$", ThousandsSep: '.', DecimalSep: ',', Decimals: 0}
}

// Format renders the amount with grouping and the configured number of
// decimals. Rounding happens here and only here; accumulation upstream
// stays in decimal.
func (f Formatter) Format(d decimal.Decimal) string {
	s := d.StringFixed(int32(f.Decimals))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(f.ThousandsSep)
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteRune(f.DecimalSep)
		b.WriteString(fracPart)
	}
	return b.String()
}

// ParseAmount recovers the numeric value from raw form text: the symbol
// and grouping separators are stripped, the locale decimal separator is
// normalized to a dot, any decimal points past the first are collapsed,
// and remaining non-numeric runes are dropped. Unparseable input yields
// zero; this is a best-effort keystroke parser, and positivity is
// enforced by record validation, not here.
func (f Formatter) ParseAmount(raw string) decimal.Decimal {
	s := strings.Replace(raw, f.Symbol, "", 1)
	s = strings.ReplaceAll(s, string(f.ThousandsSep), "")
	if f.DecimalSep != '.' {
		s = strings.Replace(s, string(f.DecimalSep), ".", 1)
	}

	if parts := strings.Split(s, "."); len(parts) > 2 {
		s = parts[0] + "." + strings.Join(parts[1:], "")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSuffix(b.String(), ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
