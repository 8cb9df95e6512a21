package alerting

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardIncidents_PassesBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/incidents/98", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"since":"a","until":"b","timezone":"UTC"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"detail":"short and stout"}`))
	}))
	defer srv.Close()

	b := NewBackend(Config{BaseURL: srv.URL}, Endpoints{}, zerolog.Nop())
	resp, err := b.ForwardIncidents(context.Background(), "98", []byte(`{"since":"a","until":"b","timezone":"UTC"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"detail":"short and stout"}`, string(resp.Body))
}

func TestForwardIncidents_CustomEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/alerts/7", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := NewBackend(Config{BaseURL: srv.URL + "/"}, Endpoints{Incidents: "/v2/alerts/"}, zerolog.Nop())
	resp, err := b.ForwardIncidents(context.Background(), "7", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestListTeams_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	b := NewBackend(Config{BaseURL: url}, DefaultEndpoints, zerolog.Nop())
	resp, err := b.ListTeams(context.Background())
	assert.Nil(t, resp)
	assert.True(t, IsTransportError(err))
	assert.Error(t, b.Ping(context.Background()))
}

func TestPing_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/teams", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := NewBackend(Config{BaseURL: srv.URL}, DefaultEndpoints, zerolog.Nop())
	var te *TransportError
	require.ErrorAs(t, b.Ping(context.Background()), &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestSaveAnnotation_Success(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/incident/Q123_98/annotation", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := NewBackend(Config{BaseURL: srv.URL}, DefaultEndpoints, zerolog.Nop())
	require.NoError(t, b.SaveAnnotation(context.Background(), "note", "Q123", "98"))
	assert.Equal(t, map[string]string{"annotation": "note"}, received)
}

func TestSaveAnnotation_ServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	}))
	defer srv.Close()

	b := NewBackend(Config{BaseURL: srv.URL}, DefaultEndpoints, zerolog.Nop())
	err := b.SaveAnnotation(context.Background(), "note", "Q123", "98")

	var se *AnnotationSaveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Q123_98", se.Key)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Body, "db down")
	assert.Equal(t, 1, calls, "annotation writes are not retried")
}

func TestAnnotationKey(t *testing.T) {
	assert.Equal(t, "Q123_98", AnnotationKey("Q123", "98"))
}

func TestPing_TLSConfig(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	untrusted := NewBackend(Config{BaseURL: srv.URL}, Endpoints{}, zerolog.Nop())
	assert.True(t, IsTransportError(untrusted.Ping(context.Background())))

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	trusted := NewBackend(Config{
		BaseURL: srv.URL,
		TLS:     &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
	}, Endpoints{}, zerolog.Nop())
	assert.NoError(t, trusted.Ping(context.Background()))
}
