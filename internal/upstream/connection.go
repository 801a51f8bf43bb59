package upstream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/epinusai/feedbridge/internal/decode"
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/metrics"
)

const writeDeadline = 5 * time.Second

// State is the lifecycle state of one upstream connection.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// subscribeFrame is the outbound control message. ConditionIDs is set for the
// odds feed, GameIDs for the stats feed.
type subscribeFrame struct {
	Action       string   `json:"action"`
	ConditionIDs []string `json:"conditionIds,omitempty"`
	GameIDs      []string `json:"gameIds,omitempty"`
	Environment  string   `json:"environment,omitempty"`
}

// Connection is one live upstream socket. It registers in the manager before
// the dial completes and removes itself on close or read error; nothing
// reconnects it — the next subscribe call creates a replacement.
type Connection struct {
	manager *Manager
	kind    domain.FeedKind
	env     domain.Environment
	url     string
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	ws      *websocket.Conn
	pending [][]byte
}

func newConnection(m *Manager, kind domain.FeedKind, env domain.Environment, url string) *Connection {
	return &Connection{
		manager: m,
		kind:    kind,
		env:     env,
		url:     url,
		logger:  slog.Default().With("feed", kind, "environment", env),
		state:   StateConnecting,
	}
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe relays a key list upstream. When the connection is open the
// control frame goes out immediately; while it is still connecting the frame
// is queued and flushed exactly once on open. Subscriptions are additive:
// there is no unsubscribe, the upstream protocol has no verb for it.
func (c *Connection) Subscribe(keys []string) error {
	frame := subscribeFrame{Action: "subscribe"}
	switch c.kind {
	case domain.FeedOdds:
		frame.ConditionIDs = keys
		frame.Environment = string(c.env)
	case domain.FeedStats:
		frame.GameIDs = keys
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal subscribe frame: %w", err)
	}

	c.mu.Lock()
	switch c.state {
	case StateConnecting:
		c.pending = append(c.pending, data)
		c.mu.Unlock()
		return nil
	case StateClosed:
		c.mu.Unlock()
		return fmt.Errorf("connection to %s feed is closed", c.kind)
	}

	err = c.writeLocked(data)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	metrics.UpstreamSubscribesTotal.WithLabelValues(string(c.kind)).Inc()
	return nil
}

// run dials, flushes queued subscribes, starts the keepalive loop and reads
// until the socket dies. Runs on its own goroutine.
func (c *Connection) run() {
	ws, resp, err := c.manager.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		metrics.UpstreamConnectsTotal.WithLabelValues(string(c.kind), "error").Inc()
		c.logger.Error("Upstream dial failed", "url", c.url, "error", err)
		c.close("dial failed")
		return
	}

	c.mu.Lock()
	if c.state == StateClosed {
		// Shutdown raced the dial.
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	c.state = StateOpen
	pending := c.pending
	c.pending = nil
	metrics.UpstreamConnectsTotal.WithLabelValues(string(c.kind), "ok").Inc()
	metrics.UpstreamOpenConnections.WithLabelValues(string(c.kind)).Inc()

	for _, data := range pending {
		if err := c.writeLocked(data); err != nil {
			c.mu.Unlock()
			c.logger.Error("Flushing queued subscribe failed", "error", err)
			c.close("subscribe flush failed")
			return
		}
		metrics.UpstreamSubscribesTotal.WithLabelValues(string(c.kind)).Inc()
	}
	c.mu.Unlock()

	c.logger.Info("Upstream connection open", "queued_subscribes", len(pending))

	go c.keepalive()
	c.readLoop(ws)
}

func (c *Connection) readLoop(ws *websocket.Conn) {
	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			c.logger.Warn("Upstream read failed", "error", err)
			break
		}
		c.ingest(payload)
	}
	c.close("read loop ended")
}

// keepalive pings on a fixed interval. Each tick first checks that the
// connection is still open and exits once it is not, so no ping loop outlives
// its connection.
func (c *Connection) keepalive() {
	ticker := c.manager.clock.NewTicker(c.manager.pingInterval)
	defer ticker.Stop()

	for range ticker.Chan() {
		c.mu.Lock()
		if c.state != StateOpen {
			c.mu.Unlock()
			return
		}
		ws := c.ws
		c.mu.Unlock()

		deadline := c.manager.clock.Now().Add(writeDeadline)
		if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			metrics.UpstreamPingFailures.Inc()
			c.logger.Warn("Upstream ping failed", "error", err)
			c.close("ping failed")
			return
		}
	}
}

// ingest decodes one inbound payload and writes every resulting record into
// the shared cache. Decode failures are counted and logged, never propagated.
func (c *Connection) ingest(payload []byte) {
	switch c.kind {
	case domain.FeedOdds:
		updates, err := decode.Odds(payload)
		if err != nil {
			metrics.UpstreamMessagesTotal.WithLabelValues(string(c.kind), "dropped").Inc()
			c.logger.Warn("Dropping malformed odds payload", "error", err)
			return
		}
		for _, update := range updates {
			for _, outcome := range update.Outcomes {
				c.manager.caches.Odds.Put(domain.OddsKey{
					ConditionID: update.ConditionID,
					OutcomeID:   outcome.OutcomeID,
				}, outcome.Odds)
			}
		}
		metrics.CacheEntries.WithLabelValues(string(domain.FeedOdds)).Set(float64(c.manager.caches.Odds.Len()))

	case domain.FeedStats:
		snapshots, err := decode.Stats(payload)
		if err != nil {
			metrics.UpstreamMessagesTotal.WithLabelValues(string(c.kind), "dropped").Inc()
			c.logger.Warn("Dropping malformed stats payload", "error", err)
			return
		}
		for _, snapshot := range snapshots {
			c.manager.caches.Stats.Put(snapshot.GameID, snapshot)
		}
		metrics.CacheEntries.WithLabelValues(string(domain.FeedStats)).Set(float64(c.manager.caches.Stats.Len()))
	}

	metrics.UpstreamMessagesTotal.WithLabelValues(string(c.kind), "ok").Inc()
}

// close transitions to closed once, closes the socket and removes the
// connection from the manager's registry. Reconnection is demand-driven: the
// next subscribe call creates a fresh connection.
func (c *Connection) close(reason string) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	wasOpen := c.state == StateOpen
	c.state = StateClosed
	ws := c.ws
	c.ws = nil
	c.pending = nil
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
	if wasOpen {
		metrics.UpstreamOpenConnections.WithLabelValues(string(c.kind)).Dec()
	}

	c.manager.remove(c)
	c.logger.Info("Upstream connection closed", "reason", reason)
}

// writeLocked sends one frame; callers hold c.mu.
func (c *Connection) writeLocked(data []byte) error {
	_ = c.ws.SetWriteDeadline(c.manager.clock.Now().Add(writeDeadline))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write subscribe frame: %w", err)
	}
	return nil
}
