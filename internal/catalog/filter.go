package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var priceLimitRe = regexp.MustCompile(`under\s*(\d+)|below\s*(\d+)`)

// Query is the structured form of a listing search box entry.
type Query struct {
	// Name is the remaining free text, lower-cased and trimmed; it is
	// matched as a substring of the product name.
	Name string

	// PriceCeiling is the captured "under N"/"below N" limit. Zero
	// means no ceiling: a captured "under 0" disables the price filter
	// entirely rather than excluding everything. That quirk is part of
	// the contract and is pinned by tests.
	PriceCeiling int64
}

// ParseQuery lowers the raw query, captures the first "under N" or
// "below N" token as a price ceiling, and strips that token from the
// name text. Bare digits without the keyword stay in the name text;
// numbers in product names are searchable.
func ParseQuery(raw string) Query {
	q := strings.ToLower(raw)

	var ceiling int64
	name := strings.TrimSpace(q)

	if loc := priceLimitRe.FindStringSubmatchIndex(q); loc != nil {
		digits := submatch(q, loc, 1)
		if digits == "" {
			digits = submatch(q, loc, 2)
		}
		ceiling, _ = strconv.ParseInt(digits, 10, 64)

		name = strings.TrimSpace(q[:loc[0]] + q[loc[1]:])
	}

	return Query{Name: name, PriceCeiling: ceiling}
}

// Filter narrows products by rawQuery, preserving input order. A
// product is kept when its lower-cased name contains the query's name
// text (empty text matches everything) and, if a non-zero ceiling was
// captured, its price does not exceed it.
func Filter(products []Product, rawQuery string) []Product {
	q := ParseQuery(rawQuery)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Name), q.Name) {
			continue
		}
		if q.PriceCeiling > 0 && p.Price > q.PriceCeiling {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterByCategory keeps products with an exact category match.
// CategoryAll (or an empty selection) passes everything through.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == CategoryAll {
		return products
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func submatch(s string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}
