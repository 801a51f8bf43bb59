package upstream

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/epinusai/feedbridge/internal/cache"
	"github.com/epinusai/feedbridge/internal/domain"
)

const defaultHandshakeTimeout = 10 * time.Second

// Addresses holds the upstream socket address per feed. The odds feed has one
// address per environment; the stats feed has a single address.
type Addresses struct {
	OddsLive string
	OddsTest string
	Stats    string
}

// Resolve returns the address for a (feed kind, environment) pair.
func (a Addresses) Resolve(kind domain.FeedKind, env domain.Environment) (string, error) {
	switch kind {
	case domain.FeedOdds:
		switch env {
		case domain.EnvLive:
			return a.OddsLive, nil
		case domain.EnvTest:
			return a.OddsTest, nil
		default:
			return "", fmt.Errorf("unknown environment %q", env)
		}
	case domain.FeedStats:
		return a.Stats, nil
	default:
		return "", fmt.Errorf("unknown feed kind %q", kind)
	}
}

// Caches are the shared feed state stores the ingestion path writes into.
type Caches struct {
	Odds  *cache.Cache[domain.OddsKey, float64]
	Stats *cache.Cache[string, domain.StatsSnapshot]
}

type connKey struct {
	kind domain.FeedKind
	env  domain.Environment
}

// Manager is the upstream connection registry. It is an owned service
// instance: construct it in main, inject it into the coordinator, and call
// Shutdown on exit.
type Manager struct {
	addresses    Addresses
	caches       Caches
	clock        clockwork.Clock
	dialer       *websocket.Dialer
	pingInterval time.Duration

	mu     sync.Mutex
	conns  map[connKey]*Connection
	closed bool
}

// NewManager creates a manager. pingInterval controls the keepalive cadence
// of every connection it opens.
func NewManager(addresses Addresses, caches Caches, clock clockwork.Clock, pingInterval time.Duration) *Manager {
	return &Manager{
		addresses:    addresses,
		caches:       caches,
		clock:        clock,
		dialer:       &websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout},
		pingInterval: pingInterval,
		conns:        make(map[connKey]*Connection),
	}
}

// GetOrCreate returns the registered connection for (kind, env) unless it is
// closed. A closed entry is discarded and a fresh connection is registered
// before its dial completes, so concurrent subscribes queue on it instead of
// racing to create their own.
func (m *Manager) GetOrCreate(kind domain.FeedKind, env domain.Environment) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("upstream manager is shut down")
	}

	key := connKey{kind: kind, env: env}
	if conn, ok := m.conns[key]; ok && conn.State() != StateClosed {
		return conn, nil
	}

	url, err := m.addresses.Resolve(kind, env)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("no upstream address configured for feed %q environment %q", kind, env)
	}

	conn := newConnection(m, kind, env, url)
	m.conns[key] = conn
	go conn.run()

	slog.Info("Upstream connection created", "feed", kind, "environment", env, "url", url)
	return conn, nil
}

// Subscribe resolves the connection for (kind, env), creating it on demand,
// and relays the key list on it.
func (m *Manager) Subscribe(kind domain.FeedKind, env domain.Environment, keys []string) error {
	conn, err := m.GetOrCreate(kind, env)
	if err != nil {
		return err
	}
	return conn.Subscribe(keys)
}

// Shutdown closes every live connection and rejects further GetOrCreate calls.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	conns := make([]*Connection, 0, len(m.conns))
	for _, conn := range m.conns {
		conns = append(conns, conn)
	}
	m.mu.Unlock()

	for _, conn := range conns {
		conn.close("manager shutdown")
	}
	slog.Info("Upstream manager shut down", "connections_closed", len(conns))
}

// remove drops conn from the registry unless a newer connection has already
// replaced it under the same key.
func (m *Manager) remove(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := connKey{kind: conn.kind, env: conn.env}
	if m.conns[key] == conn {
		delete(m.conns, key)
	}
}
