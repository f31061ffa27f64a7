package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHubBroadcastsToConnectedClient(t *testing.T) {
	hub := NewHub(silentLogger())
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWs(w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial test websocket server: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond) // let the hub finish registering the client

	hub.BroadcastState(map[string]int{"queue_depth": 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected to receive a broadcast message: %v", err)
	}

	var got map[string]int
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("failed to unmarshal broadcast message: %v", err)
	}
	if got["queue_depth"] != 3 {
		t.Errorf("expected queue_depth 3, got %d", got["queue_depth"])
	}
}
