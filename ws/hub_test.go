package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclens-be/logger"
	"civiclens-be/messaging"
	"civiclens-be/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger.Silence()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, hub, "admin").Serve()
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub, srv := startHub(t)
	first := dial(t, srv)
	second := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	event := messaging.NewStatusChanged("42", models.Submitted, models.InProgress)
	require.NoError(t, hub.Publish(context.Background(), event))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string          `json:"type"`
			Data messaging.Event `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "issue.status_changed", msg.Type)
		assert.Equal(t, "42", msg.Data.IssueID)
		assert.Equal(t, models.InProgress, msg.Data.Status)
	}
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for i := 0; i < 40; i++ {
		assert.NoError(t, hub.Publish(context.Background(), messaging.Event{Type: messaging.IssueCreated}))
	}
	assert.False(t, hub.Register(&Client{send: make(chan []byte)}))
}
