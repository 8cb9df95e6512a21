package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParams adds chi URL parameters to the request context.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

const incidentsJSON = `{
	"incidents": [
		{"actionable": null, "annotation": null, "created_at": "Tue, 27 May 2025 08:00:00 GMT",
		 "description": "d", "id": 1, "incident_id": "QA1", "status": "resolved",
		 "summary": "s", "team": 98, "title": "A", "urgency": "high"},
		{"actionable": null, "annotation": null, "created_at": "Wed, 28 May 2025 08:00:00 GMT",
		 "description": "d", "id": 2, "incident_id": "QA2", "status": "triggered",
		 "summary": "s", "team": 98, "title": "A", "urgency": "high"},
		{"actionable": null, "annotation": {"created_at": "Wed, 28 May 2025 09:00:00 GMT", "summary": "known"},
		 "created_at": "Wed, 28 May 2025 07:00:00 GMT",
		 "description": "d", "id": 3, "incident_id": "QB1", "status": "acknowledged",
		 "summary": "s", "team": 98, "title": "B", "urgency": "low"}
	],
	"summary": {"2025-05-27": {"high": 1, "low": 0}, "2025-05-28": {"high": 1, "low": 1}},
	"team": {"alias": null, "created_at": "2025-05-28T05:11:24", "id": 98,
		"last_checked": "2025-06-01T06:12:45.616871", "name": "Observability",
		"summary": "Observability", "team_id": "PJ1BDNM"}
}`

const teamsJSON = `[{"alias": "obs", "created_at": "2025-05-28T05:11:24", "id": 98,
	"last_checked": "2025-06-01T06:12:45.616871", "name": "Observability",
	"summary": "Observability", "team_id": "PJ1BDNM"}]`
