//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	dsadapter "github.com/couchcryptid/nexrain-service/internal/adapter/datastore"
	"github.com/couchcryptid/nexrain-service/internal/config"
	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

const (
	emulatorImage   = "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators"
	emulatorProject = "nexrain-test"
	testNamespace   = "integration"
)

// startEmulator runs the Datastore emulator and points the client library at it.
func startEmulator(ctx context.Context, t *testing.T) {
	t.Helper()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image: emulatorImage,
			Cmd: []string{
				"gcloud", "beta", "emulators", "datastore", "start",
				"--host-port=0.0.0.0:8081",
				"--project=" + emulatorProject,
				"--no-store-on-disk",
				"--consistency=1.0",
			},
			ExposedPorts: []string{"8081/tcp"},
			WaitingFor:   wait.ForLog("Dev App Server is now running").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start datastore emulator")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.PortEndpoint(ctx, "8081/tcp", "")
	require.NoError(t, err)
	t.Setenv("DATASTORE_EMULATOR_HOST", endpoint)
}

// distinctRejecting fails every distinct-on query, as Datastore does when the
// composite index behind the primary points query is missing.
type distinctRejecting struct {
	nexrain.Store
}

func (d distinctRejecting) Fetch(ctx context.Context, q nexrain.Query) ([]domain.Record, error) {
	if len(q.DistinctOn) > 0 {
		return nil, assert.AnError
	}
	return d.Store.Fetch(ctx, q)
}

func dbz(v float64) *float64 { return &v }

func TestDatastoreQueries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	startEmulator(ctx, t)

	cfg := &config.Config{DatastoreProjectID: emulatorProject, DatastoreNamespace: testNamespace}
	client, err := dsadapter.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	store := dsadapter.NewStore(client, testNamespace, logger, metrics)

	now := time.Now().UTC().Truncate(time.Second)
	seeder := dsadapter.NewSeeder(client, testNamespace)
	require.NoError(t, seeder.PutRainPoints(ctx, []domain.RainPoint{
		{Name: "Trail2", Type: domain.PointTypeMTB},
		{Name: "Trail1", Type: domain.PointTypeMTB},
		{Name: "Road1", Type: "ROAD"},
	}))
	require.NoError(t, seeder.PutReadings(ctx, []domain.Reading{
		{PointName: "Trail1", DT: now.Add(-2 * time.Hour), DBZ: dbz(12.5)},
		{PointName: "Trail1", DT: now.Add(-time.Hour), DBZ: dbz(20)},
		{PointName: "Trail1", DT: now.Add(-3 * time.Hour)},
		{PointName: "Trail1", DT: now.Add(-10 * 24 * time.Hour), DBZ: dbz(1)},
		{PointName: "Trail2", DT: now.Add(-time.Hour), DBZ: dbz(5)},
	}))

	require.NoError(t, store.CheckReadiness(ctx))

	t.Run("distinct points", func(t *testing.T) {
		svc := nexrain.New(store, logger, metrics)

		mtb, err := svc.DistinctPoints(ctx, domain.PointTypeMTB)
		require.NoError(t, err)
		assert.Equal(t, domain.PointList{Count: 2, Items: []string{"Trail1", "Trail2"}}, mtb)

		all, err := svc.DistinctPoints(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, domain.PointList{Count: 3, Items: []string{"Road1", "Trail1", "Trail2"}}, all)
	})

	t.Run("distinct points fallback", func(t *testing.T) {
		svc := nexrain.New(distinctRejecting{store}, logger, metrics)

		all, err := svc.DistinctPoints(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Road1", "Trail1", "Trail2"}, all.Items)
	})

	t.Run("recent readings", func(t *testing.T) {
		svc := nexrain.New(store, logger, metrics)

		res, err := svc.RecentReadings(ctx, "Trail1", nexrain.DefaultLimit)
		require.NoError(t, err)
		require.Equal(t, 3, res.Count)

		var got []time.Time
		for _, item := range res.Items {
			assert.Equal(t, "Trail1", item.PointName)
			require.NotNil(t, item.DTISO)
			dt, err := time.Parse(time.RFC3339Nano, *item.DTISO)
			require.NoError(t, err)
			got = append(got, dt)
		}
		assert.Equal(t, []time.Time{
			now.Add(-3 * time.Hour),
			now.Add(-2 * time.Hour),
			now.Add(-time.Hour),
		}, got)
		assert.Nil(t, res.Items[0].DBZ)
		require.NotNil(t, res.Items[2].DBZ)
		assert.InDelta(t, 20.0, *res.Items[2].DBZ, 1e-9)
	})

	t.Run("recent readings limit", func(t *testing.T) {
		svc := nexrain.New(store, logger, metrics)

		res, err := svc.RecentReadings(ctx, "Trail1", 1)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, domain.ISOTimestamp(now.Add(-3*time.Hour)), res.Items[0].DTISO)
	})

	t.Run("unknown point", func(t *testing.T) {
		svc := nexrain.New(store, logger, metrics)

		res, err := svc.RecentReadings(ctx, "Nowhere", nexrain.DefaultLimit)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Count)
		assert.NotNil(t, res.Items)
	})
}
