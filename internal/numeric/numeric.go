// Package numeric parses and formats the decimal strings typed into the
// intake form.
package numeric

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var cleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

// maxDigits bounds the cleaned input; nothing typed into the form is longer.
const maxDigits = 32

// limit is the smallest magnitude Parse rejects.
var limit = decimal.New(1, 15)

// Parse reads a form number. Currency symbols, thousands separators and a
// percent sign are ignored. ok is false for empty or non-numeric input, for
// exponent notation and for magnitudes of 1e15 or more.
func Parse(s string) (decimal.Decimal, bool) {
	s = cleaner.Replace(strings.TrimSpace(s))
	if s == "" || len(s) > maxDigits || strings.ContainsAny(s, "eE") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, false
	}
	return d, true
}

// Fixed2 formats d with exactly two decimal places.
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Currency formats d as "$1,234.56".
func Currency(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}
