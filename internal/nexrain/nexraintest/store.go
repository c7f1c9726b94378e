// Package nexraintest provides an in-memory nexrain.Store for tests.
package nexraintest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
)

// ErrDistinctUnsupported is returned for distinct-on queries when RejectDistinct is set.
var ErrDistinctUnsupported = errors.New("distinct-on with order and projection requires a composite index")

// Store evaluates queries over in-memory entities, following Datastore
// semantics for projection (entities lacking a projected field are skipped).
type Store struct {
	// RejectDistinct makes every distinct-on query fail, forcing the fallback path.
	RejectDistinct bool
	// Err, when set, fails every query.
	Err error

	mu       sync.Mutex
	entities map[string][]domain.Record
	queries  []nexrain.Query
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entities: make(map[string][]domain.Record)}
}

// Put adds entities of the given kind.
func (s *Store) Put(kind string, recs ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[kind] = append(s.entities[kind], recs...)
}

// AddPoint adds a RAINPOINTS entity.
func (s *Store) AddPoint(name, pointType string) {
	s.Put(domain.KindRainPoints, domain.Record{
		domain.FieldPointName: name,
		domain.FieldPointType: pointType,
	})
}

// AddReading adds a NEXRAIN entity.
func (s *Store) AddReading(point string, dt time.Time, dbz float64) {
	s.Put(domain.KindNexrain, domain.Record{
		domain.FieldPointName: point,
		domain.FieldDT:        dt,
		domain.FieldDBZ:       dbz,
	})
}

// Queries returns every query received so far, including rejected ones.
func (s *Store) Queries() []nexrain.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

// Fetch implements nexrain.Store.
func (s *Store) Fetch(ctx context.Context, q nexrain.Query) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.RejectDistinct && len(q.DistinctOn) > 0 {
		return nil, ErrDistinctUnsupported
	}

	var out []domain.Record
	for _, rec := range s.entities[q.Kind] {
		ok, err := matches(rec, q.Filters)
		if err != nil {
			return nil, err
		}
		if !ok || !hasFields(rec, q.Projection) {
			continue
		}
		out = append(out, project(rec, q.Projection))
	}

	if len(q.Order) > 0 {
		slices.SortStableFunc(out, func(a, b domain.Record) int {
			for _, f := range q.Order {
				if c := compare(a[f], b[f]); c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if len(q.DistinctOn) > 0 {
		out = distinct(out, q.DistinctOn)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(rec domain.Record, filters []nexrain.Filter) (bool, error) {
	for _, f := range filters {
		v, ok := rec[f.Field]
		if !ok {
			return false, nil
		}
		c := compare(v, f.Value)
		switch f.Op {
		case nexrain.OpEqual:
			if c != 0 || fmt.Sprintf("%T", v) != fmt.Sprintf("%T", f.Value) {
				return false, nil
			}
		case nexrain.OpGreaterOrEqual:
			if c < 0 {
				return false, nil
			}
		case nexrain.OpLessOrEqual:
			if c > 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	return true, nil
}

func hasFields(rec domain.Record, fields []string) bool {
	for _, f := range fields {
		if _, ok := rec[f]; !ok {
			return false
		}
	}
	return true
}

func project(rec domain.Record, fields []string) domain.Record {
	if len(fields) == 0 {
		return rec
	}
	out := make(domain.Record, len(fields))
	for _, f := range fields {
		out[f] = rec[f]
	}
	return out
}

func distinct(recs []domain.Record, fields []string) []domain.Record {
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0:0]
	for _, rec := range recs {
		key := ""
		for _, f := range fields {
			key += fmt.Sprintf("%v\x00", rec[f])
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// compare orders values of the same dynamic type; mixed types compare by type name.
func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	}
	return cmp.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}
