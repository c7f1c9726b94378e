package datastore

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/couchcryptid/nexrain-service/internal/config"
	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

// NewClient opens the process-wide Datastore client. It honors
// DATASTORE_EMULATOR_HOST, so the same code runs against the emulator.
func NewClient(ctx context.Context, cfg *config.Config) (*datastore.Client, error) {
	var (
		client *datastore.Client
		err    error
	)
	if cfg.DatastoreDatabaseID != "" {
		client, err = datastore.NewClientWithDatabase(ctx, cfg.DatastoreProjectID, cfg.DatastoreDatabaseID)
	} else {
		client, err = datastore.NewClient(ctx, cfg.DatastoreProjectID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "datastore client for project %s", cfg.DatastoreProjectID)
	}
	return client, nil
}

// Store implements nexrain.Store on Cloud Datastore.
type Store struct {
	client    *datastore.Client
	namespace string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewStore wraps an existing client. The client is shared and not closed by Store.
func NewStore(client *datastore.Client, namespace string, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		client:    client,
		namespace: namespace,
		logger:    logger,
		metrics:   metrics,
	}
}

// Fetch runs q and returns every matching entity as a Record. Datastore
// reports unsupported query shapes (e.g. a missing composite index) as an
// error from the first Next call, which is returned as-is for the caller
// to classify.
func (s *Store) Fetch(ctx context.Context, q nexrain.Query) ([]domain.Record, error) {
	start := time.Now()
	records, err := s.fetch(ctx, q)
	s.metrics.StoreQueryDuration.WithLabelValues(q.Kind).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(q.Kind).Inc()
		return nil, err
	}
	s.logger.Debug("datastore query",
		"kind", q.Kind,
		"results", len(records),
		"distinct", len(q.DistinctOn) > 0,
		"duration", time.Since(start),
	)
	return records, nil
}

func (s *Store) fetch(ctx context.Context, q nexrain.Query) ([]domain.Record, error) {
	it := s.client.Run(ctx, buildQuery(q, s.namespace))

	var records []domain.Record
	for {
		var props datastore.PropertyList
		_, err := it.Next(&props)
		if errors.Is(err, iterator.Done) {
			return records, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "query %s", q.Kind)
		}
		records = append(records, toRecord(props))
	}
}

// CheckReadiness runs a keys-only single-entity query to confirm the store is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	q := datastore.NewQuery(domain.KindRainPoints).KeysOnly().Limit(1)
	if s.namespace != "" {
		q = q.Namespace(s.namespace)
	}
	if _, err := s.client.GetAll(ctx, q, nil); err != nil {
		return errors.Wrap(err, "datastore readiness probe")
	}
	return nil
}

func buildQuery(q nexrain.Query, namespace string) *datastore.Query {
	dq := datastore.NewQuery(q.Kind)
	if namespace != "" {
		dq = dq.Namespace(namespace)
	}
	for _, f := range q.Filters {
		dq = dq.FilterField(f.Field, f.Op, f.Value)
	}
	if len(q.Projection) > 0 {
		dq = dq.Project(q.Projection...)
	}
	if len(q.DistinctOn) > 0 {
		dq = dq.DistinctOn(q.DistinctOn...)
	}
	for _, field := range q.Order {
		dq = dq.Order(field)
	}
	if q.Limit > 0 {
		dq = dq.Limit(q.Limit)
	}
	return dq
}

// toRecord flattens a loaded entity. Timestamps are stored in UTC; the client
// hands them back in the local zone, so they are moved back to UTC here.
func toRecord(props datastore.PropertyList) domain.Record {
	rec := make(domain.Record, len(props))
	for _, p := range props {
		if t, ok := p.Value.(time.Time); ok {
			rec[p.Name] = t.UTC()
			continue
		}
		rec[p.Name] = p.Value
	}
	return rec
}
