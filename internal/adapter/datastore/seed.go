package datastore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/pkg/errors"

	"github.com/couchcryptid/nexrain-service/internal/domain"
)

// maxPutBatch is the Datastore limit on entities per PutMulti call.
const maxPutBatch = 500

// Seeder writes fixture entities. It exists for local tooling and integration
// tests; the service itself never writes.
type Seeder struct {
	client    *datastore.Client
	namespace string
}

// NewSeeder creates a Seeder writing into namespace.
func NewSeeder(client *datastore.Client, namespace string) *Seeder {
	return &Seeder{client: client, namespace: namespace}
}

// PutRainPoints upserts points keyed by name, so re-seeding is idempotent.
// Points sharing a name collapse into one entity.
func (s *Seeder) PutRainPoints(ctx context.Context, points []domain.RainPoint) error {
	keys := make([]*datastore.Key, 0, len(points))
	entities := make([]datastore.PropertyList, 0, len(points))
	for _, p := range points {
		keys = append(keys, s.key(domain.KindRainPoints, p.Name))
		entities = append(entities, datastore.PropertyList{
			{Name: domain.FieldPointName, Value: p.Name},
			{Name: domain.FieldPointType, Value: p.Type},
		})
	}
	return s.putBatches(ctx, domain.KindRainPoints, keys, entities)
}

// PutReadings upserts readings keyed by point name and timestamp.
func (s *Seeder) PutReadings(ctx context.Context, readings []domain.Reading) error {
	keys := make([]*datastore.Key, 0, len(readings))
	entities := make([]datastore.PropertyList, 0, len(readings))
	for _, r := range readings {
		props := datastore.PropertyList{
			{Name: domain.FieldPointName, Value: r.PointName},
			{Name: domain.FieldDT, Value: r.DT.UTC()},
		}
		if r.DBZ != nil {
			props = append(props, datastore.Property{Name: domain.FieldDBZ, Value: *r.DBZ})
		}
		keys = append(keys, s.key(domain.KindNexrain, readingKey(r)))
		entities = append(entities, props)
	}
	return s.putBatches(ctx, domain.KindNexrain, keys, entities)
}

func (s *Seeder) putBatches(ctx context.Context, kind string, keys []*datastore.Key, entities []datastore.PropertyList) error {
	for start := 0; start < len(keys); start += maxPutBatch {
		end := min(start+maxPutBatch, len(keys))
		if _, err := s.client.PutMulti(ctx, keys[start:end], entities[start:end]); err != nil {
			return errors.Wrapf(err, "put %s entities [%d:%d]", kind, start, end)
		}
	}
	return nil
}

func (s *Seeder) key(kind, name string) *datastore.Key {
	k := datastore.NameKey(kind, name, nil)
	k.Namespace = s.namespace
	return k
}

func readingKey(r domain.Reading) string {
	return fmt.Sprintf("%s|%s", r.PointName, r.DT.UTC().Format(time.RFC3339Nano))
}
