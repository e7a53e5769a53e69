// Package convo keeps per-session conversational context so elliptical
// follow-up questions ("còn chiều thì sao?") can reuse the date, leader
// and topic established by earlier turns. Sessions are kept in a keyed
// map with TTL eviction; a background goroutine removes idle sessions.
package convo

import (
	"sync"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
)

const maxRecentQueries = 5

// Context is the remembered state of one session.
type Context struct {
	DateRef       *intent.DateReference
	TimeFilter    *intent.TimeWindow
	Leader        string
	TopicKeywords []string

	RecentQueries []string
	MessageCount  int
	LastSeen      time.Time
}

// Merge applies a freshly extracted intent on top of a previous
// context. A field the new extraction supplied overwrites; an absent
// field carries the previous value forward. Nothing is ever invented:
// fields absent on both sides stay absent. prev may be nil.
func Merge(prev *Context, it intent.ExtractedIntent, now time.Time) Context {
	var ctx Context
	if prev != nil {
		ctx = *prev
	}

	if it.DateRef != nil {
		ref := *it.DateRef
		ctx.DateRef = &ref
	}
	if it.TimeFilter != nil {
		w := *it.TimeFilter
		ctx.TimeFilter = &w
	}
	if it.Leader != "" {
		ctx.Leader = it.Leader
	}
	if len(it.TopicKeywords) > 0 {
		ctx.TopicKeywords = append([]string(nil), it.TopicKeywords...)
	}

	ctx.LastSeen = now
	return ctx
}

// Touch records one processed query in the context history.
func (c *Context) Touch(query string, now time.Time) {
	c.RecentQueries = append([]string{query}, c.RecentQueries...)
	if len(c.RecentQueries) > maxRecentQueries {
		c.RecentQueries = c.RecentQueries[:maxRecentQueries]
	}
	c.MessageCount++
	c.LastSeen = now
}

// Empty reports whether the context holds no remembered filters.
func (c *Context) Empty() bool {
	return c == nil || (c.DateRef == nil && c.TimeFilter == nil && c.Leader == "" && len(c.TopicKeywords) == 0)
}

// Store holds session contexts keyed by session identifier. The store
// does not generate or validate session identifiers; keys come from
// the caller.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context
	ttl      time.Duration
	onUpdate func(count int)
	stopCh   chan struct{}
}

// NewStore creates a session store with the given idle TTL and starts
// the eviction goroutine. onUpdate, when non-nil, is called with the
// live session count after each sweep.
func NewStore(ttl time.Duration, cleanupPeriod time.Duration, onUpdate func(count int)) *Store {
	s := &Store{
		sessions: make(map[string]*Context),
		ttl:      ttl,
		onUpdate: onUpdate,
		stopCh:   make(chan struct{}),
	}
	go s.cleanupLoop(cleanupPeriod)
	return s
}

// Get returns the stored context for a session, or nil when the
// session is unknown or its context has expired. Expired contexts are
// treated as absent so follow-ups after a long silence start fresh.
func (s *Store) Get(sessionID string, now time.Time) *Context {
	s.mu.RLock()
	ctx, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	if now.Sub(ctx.LastSeen) > s.ttl {
		return nil
	}
	cp := *ctx
	return &cp
}

// Put stores the merged context for a session.
func (s *Store) Put(sessionID string, ctx Context) {
	s.mu.Lock()
	s.sessions[sessionID] = &ctx
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included
// until the next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) cleanupLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, ctx := range s.sessions {
				if now.Sub(ctx.LastSeen) > s.ttl {
					delete(s.sessions, id)
				}
			}
			count := len(s.sessions)
			s.mu.Unlock()

			if s.onUpdate != nil {
				s.onUpdate(count)
			}
		}
	}
}

// Stop terminates the eviction goroutine. Safe to call multiple times.
func (s *Store) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}
