package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/couchcryptid/nexrain-service/internal/domain"
)

type prober struct {
	baseURL string
	client  *http.Client
}

type recentBody struct {
	Point string `json:"point"`
	Start string `json:"start"`
	End   string `json:"end"`
	Count int    `json:"count"`
	Items []struct {
		PointName string   `json:"POINTNAME"`
		DT        *string  `json:"DT"`
		DTISO     *string  `json:"DT_ISO"`
		DBZ       *float64 `json:"DBZ"`
	} `json:"items"`
}

func (p *prober) do(method, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequest(method, p.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp, body, err
}

// getJSON fetches path, checks the status and CORS headers, and decodes into out.
func (p *prober) getJSON(ph *phase, path string, wantStatus int, out any) bool {
	resp, body, err := p.do(http.MethodGet, path)
	if err != nil {
		ph.errorf("GET %s: %v", path, err)
		return false
	}
	if resp.StatusCode != wantStatus {
		ph.errorf("GET %s: status %d, want %d: %s", path, resp.StatusCode, wantStatus, body)
		return false
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		ph.errorf("GET %s: Access-Control-Allow-Origin=%q", path, got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		ph.errorf("GET %s: Content-Type=%q", path, got)
	}
	if err := json.Unmarshal(body, out); err != nil {
		ph.errorf("GET %s: decode: %v", path, err)
		return false
	}
	return true
}

func (p *prober) checkRouting() *phase {
	ph := &phase{name: "Routing & CORS"}

	var home struct {
		OK     bool     `json:"ok"`
		Routes []string `json:"routes"`
	}
	if p.getJSON(ph, "/", http.StatusOK, &home) && (!home.OK || len(home.Routes) == 0) {
		ph.errorf("GET /: ok=%v routes=%d", home.OK, len(home.Routes))
	}

	resp, body, err := p.do(http.MethodOptions, "/anything")
	switch {
	case err != nil:
		ph.errorf("OPTIONS /anything: %v", err)
	case resp.StatusCode != http.StatusNoContent:
		ph.errorf("OPTIONS /anything: status %d, want 204", resp.StatusCode)
	case len(body) != 0:
		ph.errorf("OPTIONS /anything: body %q, want empty", body)
	case resp.Header.Get("Access-Control-Max-Age") == "":
		ph.errorf("OPTIONS /anything: missing Access-Control-Max-Age")
	}

	var notFound map[string]string
	if p.getJSON(ph, "/v1/unknown/path", http.StatusNotFound, &notFound) {
		want := map[string]string{"error": "Not found", "path": "/v1/unknown/path", "method": "GET"}
		if !mapsEqual(notFound, want) {
			ph.errorf("404 body %v, want %v", notFound, want)
		}
	}

	var missing map[string]string
	if p.getJSON(ph, "/v1/nexrain/recent", http.StatusBadRequest, &missing) {
		if missing["error"] != "Missing required query param: point" {
			ph.errorf("400 error %q", missing["error"])
		}
	}
	return ph
}

// checkPoints validates both point routes and returns the MTB names.
func (p *prober) checkPoints() ([]string, *phase) {
	ph := &phase{name: "Point lists"}

	lists := map[string]domain.PointList{}
	for _, path := range []string{
		"/v1/nexrain/mtbpoints", "/nexrain/mtbpoints",
		"/v1/nexrain/allpoints", "/nexrain/allpoints",
	} {
		var list domain.PointList
		if !p.getJSON(ph, path, http.StatusOK, &list) {
			continue
		}
		checkPointList(ph, path, list)
		lists[path] = list
	}

	if a, b := lists["/v1/nexrain/mtbpoints"], lists["/nexrain/mtbpoints"]; !slices.Equal(a.Items, b.Items) {
		ph.errorf("mtbpoints aliases disagree: %d vs %d items", a.Count, b.Count)
	}
	if a, b := lists["/v1/nexrain/allpoints"], lists["/nexrain/allpoints"]; !slices.Equal(a.Items, b.Items) {
		ph.errorf("allpoints aliases disagree: %d vs %d items", a.Count, b.Count)
	}

	all := lists["/v1/nexrain/allpoints"].Items
	for _, name := range lists["/v1/nexrain/mtbpoints"].Items {
		if _, found := slices.BinarySearch(all, name); !found {
			ph.errorf("MTB point %q missing from allpoints", name)
		}
	}
	return lists["/v1/nexrain/mtbpoints"].Items, ph
}

func checkPointList(ph *phase, path string, list domain.PointList) {
	if list.Count != len(list.Items) {
		ph.errorf("%s: count %d != len(items) %d", path, list.Count, len(list.Items))
	}
	for i := 1; i < len(list.Items); i++ {
		if list.Items[i-1] >= list.Items[i] {
			ph.errorf("%s: items not strictly ascending at %d: %q >= %q", path, i, list.Items[i-1], list.Items[i])
			return
		}
	}
	for i, name := range list.Items {
		if name == "" {
			ph.errorf("%s: empty name at %d", path, i)
		}
	}
}

func (p *prober) checkRecent(point string) *phase {
	ph := &phase{name: "Recent readings window"}
	if point == "" {
		ph.errorf("no point to probe: pass -point or seed MTB points")
		return ph
	}

	const limit = 500
	var body recentBody
	path := fmt.Sprintf("/v1/nexrain/recent?point=%s&limit=%d", url.QueryEscape(point), limit)
	if !p.getJSON(ph, path, http.StatusOK, &body) {
		return ph
	}

	if body.Point != point {
		ph.errorf("point %q, want %q", body.Point, point)
	}
	if body.Count != len(body.Items) || body.Count > limit {
		ph.errorf("count %d, items %d, limit %d", body.Count, len(body.Items), limit)
	}

	start, errStart := time.Parse(domain.DisplayLayout, body.Start)
	end, errEnd := time.Parse(domain.DisplayLayout, body.End)
	if errStart != nil || errEnd != nil {
		ph.errorf("unparsable window %q .. %q", body.Start, body.End)
		return ph
	}
	if span := end.Sub(start); span != domain.RecentWindowSpan {
		ph.errorf("window spans %s, want %s", span, domain.RecentWindowSpan)
	}

	var prev time.Time
	for i, item := range body.Items {
		if item.DTISO == nil || item.DT == nil {
			ph.errorf("item %d: missing timestamp", i)
			continue
		}
		dt, err := time.Parse(time.RFC3339Nano, *item.DTISO)
		if err != nil {
			ph.errorf("item %d: DT_ISO %q: %v", i, *item.DTISO, err)
			continue
		}
		if got := dt.Format(domain.DisplayLayout); got != *item.DT {
			ph.errorf("item %d: DT %q does not match DT_ISO %q", i, *item.DT, *item.DTISO)
		}
		// The display form drops sub-second precision, so compare at second resolution.
		if sec := dt.Truncate(time.Second); sec.Before(start) || sec.After(end) {
			ph.errorf("item %d: %s outside window", i, *item.DTISO)
		}
		if dt.Before(prev) {
			ph.errorf("item %d: not ascending by DT", i)
		}
		if item.PointName != point {
			ph.errorf("item %d: POINTNAME %q", i, item.PointName)
		}
		prev = dt
	}
	return ph
}

func (p *prober) checkLimitClamp(point string) *phase {
	ph := &phase{name: "Limit clamping"}
	if point == "" {
		ph.errorf("no point to probe")
		return ph
	}

	for _, raw := range []string{"0", "-5", "1"} {
		var body recentBody
		path := fmt.Sprintf("/v1/nexrain/recent?point=%s&limit=%s", url.QueryEscape(point), raw)
		if p.getJSON(ph, path, http.StatusOK, &body) && body.Count > 1 {
			ph.errorf("limit=%s returned %d items, want <= 1", raw, body.Count)
		}
	}

	var body recentBody
	path := fmt.Sprintf("/v1/nexrain/recent?point=%s&limit=abc", url.QueryEscape(point))
	if p.getJSON(ph, path, http.StatusOK, &body) && body.Count > 1000 {
		ph.errorf("limit=abc returned %d items, want <= 1000", body.Count)
	}
	return ph
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
