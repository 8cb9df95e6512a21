package view

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/metrics"
)

// DefaultSweepSchedule is how often idle sessions are evicted.
const DefaultSweepSchedule = "@every 1m"

// Factory builds the dashboard of a team for a new session.
type Factory func(team string) *Dashboard

type session struct {
	dashboards map[string]*Dashboard
	lastSeen   time.Time
}

// Sessions holds per-user dashboards keyed by session ID. Sessions idle for
// longer than the idle timeout are evicted by a scheduled sweep.
type Sessions struct {
	factory Factory
	idle    time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*session
	cron  *cron.Cron
}

func NewSessions(factory Factory, idle time.Duration, logger zerolog.Logger) *Sessions {
	return &Sessions{
		factory: factory,
		idle:    idle,
		logger:  logger.With().Str("component", "sessions").Logger(),
		now:     time.Now,
		items:   map[string]*session{},
	}
}

// Dashboard returns the team's dashboard in the session id, creating the
// session when id is empty or unknown. It returns the ID to use from now on.
func (s *Sessions) Dashboard(id, team string) (*Dashboard, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		id = uuid.NewString()
		sess = &session{dashboards: map[string]*Dashboard{}}
		s.items[id] = sess
		metrics.SessionsActive.Inc()
		s.logger.Debug().Str("session_id", id).Msg("session created")
	}
	sess.lastSeen = s.now()

	d, ok := sess.dashboards[team]
	if !ok {
		d = s.factory(team)
		sess.dashboards[team] = d
	}
	return d, id
}

// Lookup returns an existing dashboard without creating anything.
func (s *Sessions) Lookup(id, team string) (*Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	d, ok := sess.dashboards[team]
	if ok {
		sess.lastSeen = s.now()
	}
	return d, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idle)
	removed := 0
	for id, sess := range s.items {
		if sess.lastSeen.After(cutoff) {
			continue
		}
		for _, d := range sess.dashboards {
			d.Close()
		}
		delete(s.items, id)
		metrics.SessionsActive.Dec()
		removed++
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("remaining", len(s.items)).Msg("evicted idle sessions")
	}
	return removed
}

// Start runs Sweep on schedule, a robfig/cron spec such as "@every 1m".
func (s *Sessions) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return err
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish.
func (s *Sessions) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
