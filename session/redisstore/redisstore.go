// Package redisstore keeps tenant sessions server-side in Redis, with the
// browser holding only an opaque device cookie. Used by gateway deployments
// where session payloads should not travel in cookies.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/accesswash/portal/internal/errors"
	"github.com/accesswash/portal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "accesswash:session"

var _ session.Store = (*Store)(nil)

// Store persists sessions under accesswash:session:{device}:{tenant}.
// The device identifier stands in for one browser, preserving the
// one-session-per-(browser, tenant) invariant.
type Store struct {
	client *redis.Client
	device string
	ttl    time.Duration
	log    zerolog.Logger
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(client *redis.Client, deviceID string, options ...Option) *Store {
	s := &Store{
		client: client,
		device: deviceID,
		ttl:    session.DefaultTTL,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) Save(tenantID string, sess session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), s.key(tenantID), payload, s.ttl).Err()
}

// Load degrades to (zero, false) on missing keys, connection failures, and
// corrupt payloads. Failures are logged, never raised.
func (s *Store) Load(tenantID string) (session.Session, bool) {
	payload, err := s.client.Get(context.Background(), s.key(tenantID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("tenant", tenantID).Msg("session read failed, treating as no session")
		}
		return session.Session{}, false
	}

	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		s.log.Warn().Err(errors.Wrapf(errors.ErrStorageCorrupt, "[redisstore.Load] %s", err)).
			Str("tenant", tenantID).Msg("stored session is corrupt, ignoring")
		return session.Session{}, false
	}
	if session.TokenExpired(sess.AccessToken, time.Now()) {
		return session.Session{}, false
	}
	return sess, true
}

func (s *Store) Clear(tenantID string) error {
	return s.client.Del(context.Background(), s.key(tenantID)).Err()
}

func (s *Store) key(tenantID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.device, tenantID)
}
