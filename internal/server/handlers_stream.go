package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/epinusai/feedbridge/internal/domain"
)

// handleOddsStream opens a long-lived SSE stream of odds deltas for the
// requested condition ids. Validation failures surface before any stream
// bytes are written.
func (s *Server) handleOddsStream(c echo.Context) error {
	conditions := splitKeys(c.QueryParam("conditions"))
	env := domain.Environment(c.QueryParam("environment"))

	env, err := s.coordinator.SubscribeOdds(conditions, env)
	if err != nil {
		return err
	}

	sink := newSSESink(c.Response())
	sink.start()
	return s.odds.RunOdds(c.Request().Context(), sink, conditions, env)
}

// handleStatsStream opens a long-lived SSE stream of changed game snapshots
// for the requested game ids.
func (s *Server) handleStatsStream(c echo.Context) error {
	games := splitKeys(c.QueryParam("games"))

	if err := s.coordinator.SubscribeStats(games); err != nil {
		return err
	}

	sink := newSSESink(c.Response())
	sink.start()
	return s.stats.RunStats(c.Request().Context(), sink, games)
}

// splitKeys parses a comma-separated key list, dropping empty segments.
func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// sseSink frames JSON envelopes as server-sent events on one response. It is
// used from a single session goroutine, so writes need no locking.
type sseSink struct {
	response *echo.Response
}

func newSSESink(response *echo.Response) *sseSink {
	return &sseSink{response: response}
}

// start commits the SSE headers. After this the response can only stream.
func (s *sseSink) start() {
	header := s.response.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	s.response.WriteHeader(http.StatusOK)
	s.response.Flush()
}

// Send writes one data frame and flushes it to the consumer.
func (s *sseSink) Send(frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal push frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.response, "data: %s\n\n", data); err != nil {
		return err
	}
	s.response.Flush()
	return nil
}
