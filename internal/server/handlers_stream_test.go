package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epinusai/feedbridge/internal/config"
	"github.com/epinusai/feedbridge/internal/dispatch"
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/errors"
	"github.com/epinusai/feedbridge/internal/feed"
)

type fakeUpstream struct {
	err   error
	kind  domain.FeedKind
	env   domain.Environment
	keys  []string
	calls int
}

func (f *fakeUpstream) Subscribe(kind domain.FeedKind, env domain.Environment, keys []string) error {
	f.calls++
	f.kind = kind
	f.env = env
	f.keys = keys
	return f.err
}

// fakeStreamer emits a fixed frame sequence and returns.
type fakeStreamer struct {
	frames []any
	keys   []string
	env    domain.Environment
}

func (f *fakeStreamer) RunOdds(_ context.Context, sink dispatch.Sink, conditionIDs []string, env domain.Environment) error {
	f.keys = conditionIDs
	f.env = env
	return f.emit(sink)
}

func (f *fakeStreamer) RunStats(_ context.Context, sink dispatch.Sink, gameIDs []string) error {
	f.keys = gameIDs
	return f.emit(sink)
}

func (f *fakeStreamer) emit(sink dispatch.Sink) error {
	for _, frame := range f.frames {
		if err := sink.Send(frame); err != nil {
			return err
		}
	}
	return nil
}

func newTestServer(upstream feed.Upstream, streamer *fakeStreamer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(errors.Middleware())

	srv := &Server{
		echo:        e,
		config:      &config.Config{Port: "0"},
		coordinator: feed.NewCoordinator(upstream, domain.EnvLive),
		odds:        streamer,
		stats:       streamer,
		startTime:   time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func doRequest(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestOddsStream_StreamsFrames(t *testing.T) {
	upstream := &fakeUpstream{}
	streamer := &fakeStreamer{frames: []any{
		dispatch.ConnectedFrame{Type: dispatch.FrameConnected, Session: "abc", Environment: "live", Conditions: []string{"10"}},
		dispatch.OddsFrame{Type: dispatch.FrameOddsUpdate, Updates: []domain.OddsDelta{
			{ConditionID: "10", OutcomeID: "1", Odds: 1.5, Direction: domain.DirectionFirst},
		}},
	}}
	srv := newTestServer(upstream, streamer)

	rec := doRequest(srv, "/stream/odds?conditions=10,11")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"type":"connected"`)
	assert.Contains(t, body, `data: {"type":"odds_update"`)
	assert.Contains(t, body, `"direction":"first"`)

	// The subscribe went upstream before the stream opened.
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, domain.FeedOdds, upstream.kind)
	assert.Equal(t, []string{"10", "11"}, upstream.keys)
	assert.Equal(t, []string{"10", "11"}, streamer.keys)
}

func TestOddsStream_DefaultsEnvironment(t *testing.T) {
	upstream := &fakeUpstream{}
	streamer := &fakeStreamer{}
	srv := newTestServer(upstream, streamer)

	rec := doRequest(srv, "/stream/odds?conditions=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.EnvLive, upstream.env)
	assert.Equal(t, domain.EnvLive, streamer.env)
}

func TestOddsStream_HonoursEnvironmentParam(t *testing.T) {
	upstream := &fakeUpstream{}
	streamer := &fakeStreamer{}
	srv := newTestServer(upstream, streamer)

	rec := doRequest(srv, "/stream/odds?conditions=10&environment=test")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.EnvTest, upstream.env)
	assert.Equal(t, domain.EnvTest, streamer.env)
}

func TestOddsStream_EmptyConditionListRejected(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := newTestServer(upstream, &fakeStreamer{})

	for _, target := range []string{"/stream/odds", "/stream/odds?conditions=", "/stream/odds?conditions=,,"} {
		rec := doRequest(srv, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "data: ", target)
	}
	assert.Zero(t, upstream.calls)
}

func TestOddsStream_UnknownEnvironmentRejected(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := newTestServer(upstream, &fakeStreamer{})

	rec := doRequest(srv, "/stream/odds?conditions=10&environment=staging")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, upstream.calls)
}

func TestOddsStream_UpstreamFailureIsBadGateway(t *testing.T) {
	upstream := &fakeUpstream{err: fmt.Errorf("dial refused")}
	srv := newTestServer(upstream, &fakeStreamer{})

	rec := doRequest(srv, "/stream/odds?conditions=10")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data: ")
}

func TestStatsStream_StreamsFrames(t *testing.T) {
	upstream := &fakeUpstream{}
	streamer := &fakeStreamer{frames: []any{
		dispatch.ConnectedFrame{Type: dispatch.FrameConnected, Session: "abc", Games: []string{"100"}},
	}}
	srv := newTestServer(upstream, streamer)

	rec := doRequest(srv, "/stream/stats?games=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), `data: {"type":"connected"`)
	assert.Equal(t, domain.FeedStats, upstream.kind)
	assert.Equal(t, []string{"100"}, upstream.keys)
}

func TestStatsStream_EmptyGameListRejected(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := newTestServer(upstream, &fakeStreamer{})

	rec := doRequest(srv, "/stream/stats?games=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, upstream.calls)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakeUpstream{}, &fakeStreamer{})

	rec := doRequest(srv, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = doRequest(srv, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"10", "11"}, splitKeys("10,11"))
	assert.Equal(t, []string{"10", "11"}, splitKeys(" 10 , 11 "))
	assert.Equal(t, []string{"10"}, splitKeys(",10,"))
	assert.Nil(t, splitKeys(""))
	assert.Nil(t, splitKeys(",,"))
}
