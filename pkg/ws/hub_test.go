package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestHubGreetsAndBroadcasts(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, []byte(`{"hello":true}`))
	}))
	defer srv.Close()

	first := dial(t, srv)
	require.Equal(t, `{"hello":true}`, readMessage(t, first))
	second := dial(t, srv)
	require.Equal(t, `{"hello":true}`, readMessage(t, second))

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte("update"))
	require.Equal(t, "update", readMessage(t, first))
	require.Equal(t, "update", readMessage(t, second))

	require.NoError(t, hub.Close())
	require.Zero(t, hub.ClientCount())
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(nil, []string{"https://admin.lit.cafe"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, nil)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://admin.lit.cafe")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = conn.Close()
}
