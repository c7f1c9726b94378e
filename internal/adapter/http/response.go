package http

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// CORS policy applied to every API response.
const (
	corsOrigin  = "*"
	corsHeaders = "Content-Type, X-Requested-With, X-API-Key"
	corsMethods = "GET,OPTIONS"
	corsMaxAge  = "3600"
)

// response is what a route produces before serialization.
type response struct {
	status int
	body   any
	header map[string]string // overrides and extends the base headers
}

func jsonResponse(status int, body any) response {
	return response{status: status, body: body}
}

func baseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  corsOrigin,
		"Access-Control-Allow-Headers": corsHeaders,
		"Access-Control-Allow-Methods": corsMethods,
	}
}

// encode serializes resp. A zero status means 200. Values without a native
// JSON form serialize through their own marshalers; time.Time, for example,
// becomes its RFC 3339 string.
func encode(resp response) (int, http.Header, []byte, error) {
	body, err := json.Marshal(resp.body)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "encode response body")
	}

	status := resp.status
	if status == 0 {
		status = http.StatusOK
	}

	h := make(http.Header, 4+len(resp.header))
	for k, v := range baseHeaders() {
		h.Set(k, v)
	}
	for k, v := range resp.header {
		h.Set(k, v)
	}
	return status, h, body, nil
}

func send(w http.ResponseWriter, status int, h http.Header, body []byte) {
	for k, vs := range h {
		w.Header()[k] = vs
	}
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck // client went away; nothing left to report
}

func writePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", corsOrigin)
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Max-Age", corsMaxAge)
	w.WriteHeader(http.StatusNoContent)
}
