// Package catalog builds and runs the filtered vehicle catalog query
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is the set of optional catalog filters. A nil field is absent.
type Filter struct {
	Brand        *string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinYear      *int
	MaxYear      *int
	Fuel         *string
	Transmission *string
	Search       *string
	Featured     *bool
	Limit        *int
}

// ParseFilter reads a Filter from query parameters. Empty values and
// values that fail to parse are treated as absent; 0 and false are kept.
// Unknown keys are ignored.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Brand:        parseString(q, "brand"),
		MinPrice:     parseDecimal(q, "minPrice"),
		MaxPrice:     parseDecimal(q, "maxPrice"),
		MinYear:      parseInt(q, "minYear"),
		MaxYear:      parseInt(q, "maxYear"),
		Fuel:         parseString(q, "fuel"),
		Transmission: parseString(q, "transmission"),
		Search:       parseString(q, "search"),
		Featured:     parseBool(q, "featured"),
		Limit:        parseInt(q, "limit"),
	}
}

func parseString(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func parseDecimal(q url.Values, key string) *decimal.Decimal {
	s := parseString(q, key)
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(q url.Values, key string) *int {
	s := parseString(q, key)
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil
	}
	return &n
}

func parseBool(q url.Values, key string) *bool {
	s := parseString(q, key)
	if s == nil {
		return nil
	}
	b, err := strconv.ParseBool(*s)
	if err != nil {
		return nil
	}
	return &b
}
