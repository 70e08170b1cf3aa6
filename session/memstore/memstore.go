// Package memstore is an in-memory session.Store used by tests and as the
// reference implementation of the tenant-isolation contract.
package memstore

import (
	"sync"
	"time"

	"github.com/accesswash/portal/session"
)

var _ session.Store = (*Store)(nil)

type Store struct {
	lock     sync.RWMutex
	sessions map[string]session.Session // tenantID -> session
	now      func() time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]session.Session),
		now:      time.Now,
	}
}

func (s *Store) Save(tenantID string, sess session.Session) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if sess.Customer != nil {
		copied := *sess.Customer
		sess.Customer = &copied
	}
	s.sessions[tenantID] = sess
	return nil
}

func (s *Store) Load(tenantID string) (session.Session, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sess, ok := s.sessions[tenantID]
	if !ok || sess.IsExpired(s.now()) {
		return session.Session{}, false
	}
	if sess.Customer != nil {
		copied := *sess.Customer
		sess.Customer = &copied
	}
	return sess, true
}

func (s *Store) Clear(tenantID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.sessions, tenantID)
	return nil
}
