package handler

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/model"
)

// mockBackend implements Backend for proxy tests.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ForwardIncidents(ctx context.Context, team string, body []byte) (*alerting.RawResponse, error) {
	args := m.Called(ctx, team, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alerting.RawResponse), args.Error(1)
}

func (m *mockBackend) ListTeams(ctx context.Context) (*alerting.RawResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alerting.RawResponse), args.Error(1)
}

// mockTeams implements TeamLister.
type mockTeams struct {
	mock.Mock
}

func (m *mockTeams) ListTeams(ctx context.Context) ([]model.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

// stubFetcher answers every fetch with the same result and records the
// requested range.
type stubFetcher struct {
	resp *model.IncidentsResponse
	err  error

	mu    sync.Mutex
	calls int
	since time.Time
	until time.Time
}

func (f *stubFetcher) FetchIncidents(_ context.Context, _ string, since, until time.Time) (*model.IncidentsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.since, f.until = since, until
	return f.resp, f.err
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// stubSaver fails every save with err.
type stubSaver struct {
	err error
}

func (s stubSaver) SaveAnnotation(context.Context, string, string, string) error {
	return s.err
}

// gatedSaver blocks every save until release is closed.
type gatedSaver struct {
	started chan struct{}
	release chan struct{}
}

func (s *gatedSaver) SaveAnnotation(context.Context, string, string, string) error {
	s.started <- struct{}{}
	<-s.release
	return nil
}
