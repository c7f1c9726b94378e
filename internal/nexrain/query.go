package nexrain

import (
	"context"

	"github.com/couchcryptid/nexrain-service/internal/domain"
)

// Filter operators understood by every Store.
const (
	OpEqual          = "="
	OpGreaterOrEqual = ">="
	OpLessOrEqual    = "<="
)

// Filter restricts a query to entities whose Field compares to Value under Op.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Query is the minimal query shape issued against the store. Zero values mean
// "not requested": no projection, no distinct, store order, no limit.
type Query struct {
	Kind       string
	Filters    []Filter
	Projection []string
	DistinctOn []string
	Order      []string // ascending
	Limit      int
}

// Store runs queries against the document store. Implementations return an
// error when the store rejects the query shape.
type Store interface {
	Fetch(ctx context.Context, q Query) ([]domain.Record, error)
}
