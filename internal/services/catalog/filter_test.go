package catalog

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"brand":        {" Honda "},
		"minPrice":     {"0"},
		"maxPrice":     {"120000.50"},
		"minYear":      {"abc"},
		"maxYear":      {"2022"},
		"fuel":         {""},
		"transmission": {"Manual"},
		"featured":     {"false"},
		"limit":        {"3"},
		"color":        {"red"},
	}

	f := ParseFilter(q)

	require.NotNil(t, f.Brand)
	assert.Equal(t, "Honda", *f.Brand)

	require.NotNil(t, f.MinPrice, "zero is present")
	assert.True(t, f.MinPrice.IsZero())
	require.NotNil(t, f.MaxPrice)
	assert.True(t, f.MaxPrice.Equal(decimal.RequireFromString("120000.5")))

	assert.Nil(t, f.MinYear, "unparsable is absent")
	require.NotNil(t, f.MaxYear)
	assert.Equal(t, 2022, *f.MaxYear)

	assert.Nil(t, f.Fuel, "empty is absent")
	assert.Nil(t, f.Search)

	require.NotNil(t, f.Featured, "false is present")
	assert.False(t, *f.Featured)

	require.NotNil(t, f.Limit)
	assert.Equal(t, 3, *f.Limit)
}

func TestParseFilter_Empty(t *testing.T) {
	assert.Equal(t, Filter{}, ParseFilter(url.Values{}))
}

func TestBuildQuery_Public(t *testing.T) {
	q := BuildQuery(Filter{}, Public)

	assert.Contains(t, q.SQL, "WHERE 1=1 AND sold = ?")
	assert.True(t, strings.HasSuffix(q.SQL, "ORDER BY featured DESC, created_at DESC, id ASC"))
	assert.Equal(t, []any{false}, q.Args)
}

func TestBuildQuery_Admin(t *testing.T) {
	q := BuildQuery(Filter{}, Admin)

	assert.NotContains(t, q.SQL, "sold = ?")
	assert.Empty(t, q.Args)
}

func TestBuildQuery_AllFilters(t *testing.T) {
	f := ParseFilter(url.Values{
		"brand":        {"Honda"},
		"minPrice":     {"1000"},
		"maxPrice":     {"2000"},
		"minYear":      {"2010"},
		"maxYear":      {"2020"},
		"fuel":         {"Flex"},
		"transmission": {"Automatic"},
		"search":       {"CiV"},
		"featured":     {"true"},
		"limit":        {"5"},
	})

	q := BuildQuery(f, Public)

	for _, clause := range []string{
		"sold = ?",
		"brand = ?",
		"price >= ?",
		"price <= ?",
		"year >= ?",
		"year <= ?",
		"fuel = ?",
		"transmission = ?",
		`search_key LIKE ? ESCAPE '\'`,
		"featured = ?",
	} {
		assert.Contains(t, q.SQL, " AND "+clause)
	}
	assert.True(t, strings.HasSuffix(q.SQL, " LIMIT ?"))
	assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Args))

	assert.Equal(t, "%civ%", q.Args[8])
	assert.Equal(t, 5, q.Args[len(q.Args)-1])
}

func TestBuildQuery_FalsyFeaturedAndLimit(t *testing.T) {
	f := ParseFilter(url.Values{"featured": {"false"}, "limit": {"0"}})
	q := BuildQuery(f, Admin)

	assert.NotContains(t, q.SQL, "featured = ?")
	assert.NotContains(t, q.SQL, "LIMIT")
}
