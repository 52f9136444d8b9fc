package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/burnbox/internal/infrastructure/configs"
	"github.com/hilthontt/burnbox/internal/infrastructure/metrics"
	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/burnbox/internal/infrastructure/ws"
	"github.com/hilthontt/burnbox/internal/presentation/api"
	"github.com/hilthontt/burnbox/internal/presentation/handler/health"
	sessionHandler "github.com/hilthontt/burnbox/internal/presentation/handler/session"
	"github.com/hilthontt/burnbox/internal/presentation/handler/stats"
	"github.com/hilthontt/burnbox/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	url     string
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, burst int) testServer {
	t.Helper()

	cfg, err := configs.Load("")
	require.NoError(t, err)

	m := metrics.New()
	core := ws.NewCore(ws.CoreOptions{
		Session: session.Options{Acknowledge: true, Observer: m},
		OnStats: m.ObserveStats,
		OnDrop:  m.FrameDropped,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go core.Run(ctx)

	limiter := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: 1,
		MaxBurst:         burst,
	})

	app := api.NewApplication(
		*cfg,
		sessionHandler.NewHandler(core, ws.NewUpgrader(nil), ws.DefaultClientConfig(), nil),
		health.NewHandler(),
		stats.NewHandler(core),
		nil,
		nil,
		limiter,
		m,
	)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-core.Done()
	})

	return testServer{url: srv.URL, metrics: m}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn, eventType string) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, eventType, env.Type, "payload: %s", env.Data)
	return env
}

func TestMount_HTTPEndpoints(t *testing.T) {
	srv := newTestServer(t, 100)

	resp, body := get(t, srv.url+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))

	for _, path := range []string{"/api/healthz", "/api/ready", "/api/live"} {
		resp, _ := get(t, srv.url+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, body = get(t, srv.url+"/api/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"connections":0,"waitingConfessors":0,"waitingListeners":0,"pendingRendezvous":0,"activeRooms":0}`, body)

	resp, body = get(t, srv.url+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "burnbox_http_requests_total")

	resp, _ = get(t, srv.url+"/api/audit/events?type=room_opened")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = get(t, srv.url+"/swagger/doc.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Burnbox API")
}

func TestMount_CorsPreflight(t *testing.T) {
	srv := newTestServer(t, 100)

	req, err := http.NewRequest(http.MethodOptions, srv.url+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMount_RateLimit(t *testing.T) {
	srv := newTestServer(t, 2)

	var codes []int
	for i := 0; i < 4; i++ {
		resp, _ := get(t, srv.url+"/api/health")
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestMount_WebSocketSession(t *testing.T) {
	srv := newTestServer(t, 100)
	wsURL := "ws" + strings.TrimPrefix(srv.url, "http") + "/ws"

	confessor, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer confessor.Close()
	listener, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer listener.Close()

	require.NoError(t, confessor.WriteJSON(map[string]any{"type": "select_role", "data": "confessor"}))
	require.NoError(t, listener.WriteJSON(map[string]any{"type": "select_role", "data": "listener"}))
	readEvent(t, confessor, "matched")
	readEvent(t, listener, "matched")

	require.NoError(t, confessor.WriteJSON(map[string]any{
		"type": "send_message",
		"data": map[string]string{"message": "hello", "mode": "normal"},
	}))
	readEvent(t, confessor, "message_sent")
	readEvent(t, listener, "receive_message")

	require.NoError(t, listener.Close())
	readEvent(t, confessor, "participant_disconnected")

	_, body := get(t, srv.url+"/metrics")
	assert.Contains(t, body, `burnbox_rooms_closed_total{reason="disconnected"} 1`)
	assert.Contains(t, body, `burnbox_messages_relayed_total{mode="normal"} 1`)
}
