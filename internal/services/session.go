package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/logger"
)

// Session is one authenticated connection. It is handed to every store
// operation instead of living in a global.
type Session struct {
	ID          string
	Connection  Connection
	Client      StoreClient
	ConnectedAt time.Time
}

// SessionManager keeps the single active session of the process.
type SessionManager struct {
	factory StoreFactory
	log     *logger.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewSessionManager(factory StoreFactory, log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionManager{
		factory: factory,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// Connect builds a client for conn and proves the credentials with a
// ListBuckets call. On success the new session replaces any previous one;
// on failure the previous session is left untouched.
func (m *SessionManager) Connect(ctx context.Context, conn Connection) (*Session, error) {
	client, err := m.factory.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	if _, err := client.ListBuckets(ctx); err != nil {
		m.log.Warn().Err(err).Str("endpoint", conn.Endpoint).Msg("connect rejected")
		if errs.IsPermissionDenied(err) || errs.IsTimeout(err) {
			return nil, err
		}
		return nil, errs.Wrap(errs.KindConnectionFailed, "failed to connect to "+conn.Endpoint, err).WithCode(errs.CodeOf(err))
	}

	sess := &Session{
		ID:          uuid.NewString(),
		Connection:  conn,
		Client:      client,
		ConnectedAt: m.now(),
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.log.Info().Str("endpoint", conn.Endpoint).Str("session", sess.ID).Msg("connected")
	return sess, nil
}

// Disconnect drops the active session, if any.
func (m *SessionManager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.log.Info().Str("session", m.current.ID).Msg("disconnected")
	}
	m.current = nil
}

// Current returns the active session or nil.
func (m *SessionManager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Lookup returns the active session when its ID matches.
func (m *SessionManager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || id == "" || m.current.ID != id {
		return nil, false
	}
	return m.current, true
}

// AdminClient builds the optional admin client for the active session.
func (m *SessionManager) AdminClient(sess *Session) (AdminClient, error) {
	return m.factory.NewAdminClient(sess.Connection)
}
