package server

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/browse"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskcatalog_sessions",
		Help: "The number of live browsing sessions",
	})
	reapedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_sessions_reaped_total",
		Help: "The total number of sessions dropped after being idle",
	})
)

type session struct {
	mu       sync.Mutex
	screen   *browse.Screen
	lastSeen time.Time
}

// SessionStore keeps one browse.Screen per session id. Every session shares
// the same catalog but owns its own filters and sort.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	catalog  []types.Product
	loaded   bool
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// With runs fn against the screen of sessionId, creating the session if
// needed. Calls for the same session are serialized.
func (s *SessionStore) With(sessionId string, fn func(screen *browse.Screen) error) error {
	sess := s.get(sessionId)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.screen)
}

func (s *SessionStore) get(sessionId string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionId]
	if !ok {
		sess = &session{screen: browse.NewScreen()}
		if s.loaded {
			sess.screen.Load(s.catalog)
		}
		s.sessions[sessionId] = sess
		liveSessions.Set(float64(len(s.sessions)))
	}
	sess.lastSeen = s.now()
	return sess
}

// Load replaces the shared catalog and reloads it into every live session.
// Applied filters and sort survive the reload.
func (s *SessionStore) Load(products []types.Product) {
	s.mu.Lock()
	s.catalog = slices.Clone(products)
	s.loaded = true
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	catalog := s.catalog
	s.mu.Unlock()

	for _, sess := range live {
		sess.mu.Lock()
		sess.screen.Load(catalog)
		sess.mu.Unlock()
	}
}

func (s *SessionStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Reap drops sessions idle for longer than the ttl and returns how many
// were removed. A ttl of zero keeps sessions forever.
func (s *SessionStore) Reap() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		reapedSessions.Add(float64(removed))
		liveSessions.Set(float64(len(s.sessions)))
	}
	return removed
}

func (s *SessionStore) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Reap(); n > 0 {
				log.Printf("reaped %d idle sessions", n)
			}
		}
	}
}
