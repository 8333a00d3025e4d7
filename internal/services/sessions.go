package services

import (
	"time"

	"github.com/google/uuid"

	"bookkeeping/internal/cache"
)

// Sessions keeps bill view sessions in a TTL LRU cache keyed by session id.
type Sessions struct {
	cache   cache.Cache[*BillSession]
	service *LedgerService
	now     func() time.Time
}

func NewSessions(c cache.Cache[*BillSession], service *LedgerService, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{cache: c, service: service, now: now}
}

// Get returns the session for id, creating a fresh one when id is empty,
// unknown or expired. The boolean reports whether a new session was made.
func (s *Sessions) Get(id string) (*BillSession, bool) {
	if id != "" {
		if sess, ok := s.cache.Get(id); ok {
			return sess, false
		}
	}
	sess := s.service.NewSession(uuid.NewString(), s.now())
	s.cache.Set(sess.ID, sess)
	return sess, true
}

func (s *Sessions) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Sessions) Len() int {
	return s.cache.Size()
}
