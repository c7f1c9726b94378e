package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"

	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
)

const msgMissingPoint = "Missing required query param: point"

// Route labels, also used as metric label values.
const (
	routePreflight = "preflight"
	routeNotFound  = "not_found"
)

// Queries is the read-only query surface the Router dispatches to.
type Queries interface {
	DistinctPoints(ctx context.Context, pointType string) (domain.PointList, error)
	RecentReadings(ctx context.Context, point string, limit int) (domain.RecentReadings, error)
}

type routeFunc func(r *http.Request) (response, error)

type route struct {
	name   string
	handle routeFunc
}

// Router dispatches API requests on exact method and normalized path. Every
// outcome, including failures and panics, is answered with JSON.
type Router struct {
	queries Queries
	logger  *slog.Logger
	routes  map[string]route
}

// NewRouter creates the API router.
func NewRouter(queries Queries, logger *slog.Logger) *Router {
	rt := &Router{
		queries: queries,
		logger:  logger,
		routes:  make(map[string]route),
	}

	mtb := rt.points(domain.PointTypeMTB)
	all := rt.points("")

	rt.add(http.MethodGet, "/", "home", rt.home)
	rt.add(http.MethodGet, "/v1/nexrain/mtbpoints", "mtbpoints", mtb)
	rt.add(http.MethodGet, "/nexrain/mtbpoints", "mtbpoints", mtb)
	rt.add(http.MethodGet, "/v1/nexrain/allpoints", "allpoints", all)
	rt.add(http.MethodGet, "/nexrain/allpoints", "allpoints", all)
	rt.add(http.MethodGet, "/v1/nexrain/recent", "recent", rt.recent)

	return rt
}

func (rt *Router) add(method, path, name string, h routeFunc) {
	rt.routes[method+" "+path] = route{name: name, handle: h}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.ToUpper(r.Method)
	if method == http.MethodOptions {
		writePreflight(w)
		return
	}
	path := normalizePath(r.URL.Path)

	resp := rt.dispatch(method, path, r)
	status, h, body, err := encode(resp)
	if err != nil {
		status, h, body, err = encode(rt.failure(method, path, err, fmt.Sprintf("%+v", err)))
		if err != nil {
			// failure bodies are plain strings; this cannot happen.
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	send(w, status, h, body)
}

// RouteName labels r for logs and metrics without unbounded cardinality.
func (rt *Router) RouteName(r *http.Request) string {
	method := strings.ToUpper(r.Method)
	if method == http.MethodOptions {
		return routePreflight
	}
	if rte, ok := rt.routes[method+" "+normalizePath(r.URL.Path)]; ok {
		return rte.name
	}
	return routeNotFound
}

func (rt *Router) dispatch(method, path string, r *http.Request) (resp response) {
	rte, ok := rt.routes[method+" "+path]
	if !ok {
		return jsonResponse(http.StatusNotFound, map[string]string{
			"error":  "Not found",
			"path":   path,
			"method": method,
		})
	}

	defer func() {
		if rec := recover(); rec != nil {
			resp = rt.failure(method, path, fmt.Errorf("panic: %v", rec), string(debug.Stack()))
		}
	}()

	resp, err := rte.handle(r)
	if err != nil {
		return rt.failure(method, path, err, fmt.Sprintf("%+v", err))
	}
	return resp
}

// failure reports an unclassified error as a 500. The trace is returned to
// the caller as well as logged.
func (rt *Router) failure(method, path string, err error, trace string) response {
	rt.logger.Error("request failed",
		"method", method,
		"path", path,
		"error", err,
		"trace", trace,
	)
	return jsonResponse(http.StatusInternalServerError, map[string]string{
		"error": err.Error(),
		"trace": trace,
	})
}

func (rt *Router) home(_ *http.Request) (response, error) {
	return jsonResponse(http.StatusOK, map[string]any{
		"ok": true,
		"routes": []string{
			"GET /v1/nexrain/mtbpoints",
			"GET /v1/nexrain/allpoints",
			"GET /v1/nexrain/recent?point=...&limit=...",
		},
	}), nil
}

func (rt *Router) points(pointType string) routeFunc {
	return func(r *http.Request) (response, error) {
		list, err := rt.queries.DistinctPoints(r.Context(), pointType)
		if err != nil {
			return response{}, err
		}
		return jsonResponse(http.StatusOK, list), nil
	}
}

func (rt *Router) recent(r *http.Request) (response, error) {
	q := r.URL.Query()
	point := strings.TrimSpace(q.Get("point"))
	if point == "" {
		return missingPoint(), nil
	}

	res, err := rt.queries.RecentReadings(r.Context(), point, nexrain.ParseLimit(q.Get("limit")))
	if errors.Is(err, nexrain.ErrMissingPoint) {
		return missingPoint(), nil
	}
	if err != nil {
		return response{}, err
	}
	return jsonResponse(http.StatusOK, res), nil
}

func missingPoint() response {
	return jsonResponse(http.StatusBadRequest, map[string]string{"error": msgMissingPoint})
}

// normalizePath strips trailing slashes; the root stays "/".
func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}
