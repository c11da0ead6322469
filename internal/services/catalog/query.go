package catalog

import (
	"strings"

	"github.com/findosh/showroom/internal/storage"
	"github.com/findosh/showroom/internal/textfold"
)

// Visibility decides whether sold vehicles are listed
type Visibility int

const (
	// Public hides sold vehicles
	Public Visibility = iota
	// Admin lists everything
	Admin
)

func (v Visibility) String() string {
	if v == Admin {
		return "admin"
	}
	return "public"
}

// Query is a parameterised select with '?' placeholders
type Query struct {
	SQL  string
	Args []any
}

// BuildQuery turns a filter into the catalog select. Every present filter
// narrows the result; ordering is featured first, then newest.
func BuildQuery(f Filter, v Visibility) Query {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	b.WriteString(storage.VehicleColumns)
	b.WriteString(" FROM vehicles WHERE 1=1")

	and := func(clause string, values ...any) {
		b.WriteString(" AND ")
		b.WriteString(clause)
		args = append(args, values...)
	}

	if v == Public {
		and("sold = ?", false)
	}
	if f.Brand != nil {
		and("brand = ?", *f.Brand)
	}
	if f.MinPrice != nil {
		and("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		and("price <= ?", *f.MaxPrice)
	}
	if f.MinYear != nil {
		and("year >= ?", *f.MinYear)
	}
	if f.MaxYear != nil {
		and("year <= ?", *f.MaxYear)
	}
	if f.Fuel != nil {
		and("fuel = ?", *f.Fuel)
	}
	if f.Transmission != nil {
		and("transmission = ?", *f.Transmission)
	}
	if f.Search != nil {
		// search_key holds brand, model and version folded the same way
		and(`search_key LIKE ? ESCAPE '\'`, textfold.LikeContains(*f.Search))
	}
	if f.Featured != nil && *f.Featured {
		and("featured = ?", true)
	}

	b.WriteString(" ORDER BY featured DESC, created_at DESC, id ASC")

	if f.Limit != nil && *f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, *f.Limit)
	}

	return Query{SQL: b.String(), Args: args}
}
