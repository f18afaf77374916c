package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(context.Background())
	go hub.Run()
	defer hub.Stop()

	// Publish must never block, even with zero clients
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish("blog", "created")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no connected clients")
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	hub := NewHub(context.Background())
	go hub.Run()
	defer hub.Stop()

	handler := NewHandler(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Wait for the registration to land
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish("events", "updated")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var msg UpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Type != "dashboard-update" {
		t.Errorf("Type = %q, want %q", msg.Type, "dashboard-update")
	}
	if msg.Entity != "events" {
		t.Errorf("Entity = %q, want %q", msg.Entity, "events")
	}
	if msg.Action != "updated" {
		t.Errorf("Action = %q, want %q", msg.Action, "updated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestHandler_OriginAllowList(t *testing.T) {
	hub := NewHub(context.Background())
	go hub.Run()
	defer hub.Stop()

	handler := NewHandler(hub, []string{"https://admin.example.com"})
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Disallowed origin is rejected before the upgrade completes
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected dial to fail for disallowed origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	// Allowed origin connects
	header = http.Header{"Origin": []string{"https://admin.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Dial with allowed origin: %v", err)
	}
	conn.Close()
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(context.Background())
	go hub.Run()
	defer hub.Stop()

	handler := NewHandler(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
