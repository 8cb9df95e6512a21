// Package alerting talks to the alerting backend, either directly (Backend)
// or through the dashboard's same-origin proxy routes (Client).
package alerting

import (
	"crypto/tls"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPRequester is the minimal HTTP client contract used by this package.
type HTTPRequester interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config is injected at construction; nothing in this package reads
// ambient configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	TLS        *tls.Config // ignored when HTTPClient is set
	HTTPClient HTTPRequester
}

func (c Config) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

func (c Config) httpClient() HTTPRequester {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	if c.TLS != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = c.TLS
		client.Transport = transport
	}
	return client
}

// Endpoints holds the backend path suffixes, relative to the backend base URL.
type Endpoints struct {
	Incidents  string
	Teams      string
	Annotation string
}

// DefaultEndpoints matches the stock alerting backend.
var DefaultEndpoints = Endpoints{
	Incidents:  "api/v1/incidents",
	Teams:      "api/v1/teams",
	Annotation: "api/v1/incident",
}

func (e Endpoints) withDefaults() Endpoints {
	if e.Incidents == "" {
		e.Incidents = DefaultEndpoints.Incidents
	}
	if e.Teams == "" {
		e.Teams = DefaultEndpoints.Teams
	}
	if e.Annotation == "" {
		e.Annotation = DefaultEndpoints.Annotation
	}
	return e
}

func trimPath(p string) string {
	return strings.Trim(p, "/")
}
