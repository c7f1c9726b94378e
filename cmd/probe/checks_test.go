package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/nexrain-service/internal/adapter/http"
	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain/nexraintest"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

func newProbeTarget(t *testing.T, store *nexraintest.Store) *prober {
	t.Helper()
	now := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := nexrain.New(store, logger, observability.NewMetricsForTesting())
	ts := httptest.NewServer(httpadapter.NewRouter(svc, logger))
	t.Cleanup(ts.Close)

	return &prober{baseURL: ts.URL, client: ts.Client()}
}

func seededStore() *nexraintest.Store {
	now := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	store := nexraintest.NewStore()
	store.AddPoint("Trail2", domain.PointTypeMTB)
	store.AddPoint("Trail1", domain.PointTypeMTB)
	store.AddPoint("Road1", "ROAD")
	for i := range 5 {
		store.AddReading("Trail1", now.Add(-time.Duration(i+1)*time.Hour), float64(i))
	}
	return store
}

func TestProbe_PassesAgainstService(t *testing.T) {
	p := newProbeTarget(t, seededStore())

	points, ph := p.checkPoints()
	assert.Empty(t, ph.errors)
	assert.Equal(t, []string{"Trail1", "Trail2"}, points)

	for _, ph := range []*phase{p.checkRouting(), p.checkRecent("Trail1"), p.checkLimitClamp("Trail1")} {
		assert.Empty(t, ph.errors, ph.name)
	}
	assert.Equal(t, 0, run(p, ""))
}

func TestProbe_FailsWithoutPoints(t *testing.T) {
	p := newProbeTarget(t, nexraintest.NewStore())

	assert.Equal(t, 1, run(p, ""))
}

func TestProbe_DetectsBrokenPointList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		_, _ = w.Write([]byte(`{"count":3,"items":["B","A"]}`))
	}))
	t.Cleanup(ts.Close)

	p := &prober{baseURL: ts.URL, client: ts.Client()}
	_, ph := p.checkPoints()

	require.False(t, ph.passed())
	assert.Contains(t, ph.errors[0], "count 3")
}
