package nexrain

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

// ErrMissingPoint is returned by RecentReadings when the point name is blank.
var ErrMissingPoint = errors.New("point is required")

// Service answers the read-only point and reading queries.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Service backed by the given store.
func New(store Store, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// DistinctPoints lists the distinct point names, ascending, optionally
// restricted to one point type. An empty pointType means all points.
//
// The store is first asked to project, de-duplicate, and order server-side.
// If it rejects that shape for any reason the query is re-issued with
// projection only and de-duplicated here. Only a fallback failure is returned.
func (s *Service) DistinctPoints(ctx context.Context, pointType string) (domain.PointList, error) {
	q := pointsQuery(pointType)
	q.DistinctOn = []string{domain.FieldPointName}
	q.Order = []string{domain.FieldPointName}

	records, err := s.store.Fetch(ctx, q)
	if err == nil {
		return domain.NewPointList(uniqueSortedNames(records)), nil
	}

	label := pointTypeLabel(pointType)
	s.logger.Warn("distinct points query rejected, falling back",
		"point_type", label,
		"error", err,
	)
	s.metrics.PointsFallback.WithLabelValues(label).Inc()

	records, err = s.store.Fetch(ctx, pointsQuery(pointType))
	if err != nil {
		return domain.PointList{}, errors.Wrapf(err, "distinct points fallback (type %s)", label)
	}
	return domain.NewPointList(uniqueSortedNames(records)), nil
}

// RecentReadings returns up to limit readings for point within the last seven
// days, ascending by timestamp. The limit is clamped, never rejected.
func (s *Service) RecentReadings(ctx context.Context, point string, limit int) (domain.RecentReadings, error) {
	point = strings.TrimSpace(point)
	if point == "" {
		return domain.RecentReadings{}, ErrMissingPoint
	}
	limit = ClampLimit(limit)
	start, end := domain.RecentWindow()

	records, err := s.store.Fetch(ctx, Query{
		Kind: domain.KindNexrain,
		Filters: []Filter{
			{Field: domain.FieldPointName, Op: OpEqual, Value: point},
			{Field: domain.FieldDT, Op: OpGreaterOrEqual, Value: start},
			{Field: domain.FieldDT, Op: OpLessOrEqual, Value: end},
		},
		Order: []string{domain.FieldDT},
		Limit: limit,
	})
	if err != nil {
		return domain.RecentReadings{}, errors.Wrapf(err, "recent readings for %q", point)
	}
	if len(records) > limit {
		records = records[:limit]
	}

	items := make([]domain.ReadingItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.NewReadingItem(domain.ParseReading(rec)))
	}

	return domain.RecentReadings{
		Point: point,
		Start: domain.FormatTimestamp(start),
		End:   domain.FormatTimestamp(end),
		Count: len(items),
		Items: items,
	}, nil
}

func pointsQuery(pointType string) Query {
	q := Query{
		Kind:       domain.KindRainPoints,
		Projection: []string{domain.FieldPointName},
	}
	if pointType != "" {
		q.Filters = []Filter{{Field: domain.FieldPointType, Op: OpEqual, Value: pointType}}
	}
	return q
}

// uniqueSortedNames drops empty names and duplicates. The store may already
// have done both; this does not rely on it.
func uniqueSortedNames(records []domain.Record) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, rec := range records {
		name := domain.ParseRainPoint(rec).Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func pointTypeLabel(pointType string) string {
	if pointType == "" {
		return "all"
	}
	return pointType
}
