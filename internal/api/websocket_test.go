package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/notice"
)

// clearTLSEnv prevents TLS initialization from trying to load nonexistent certs.
func clearTLSEnv(t *testing.T) {
	t.Setenv("HANOI_TLS_CERT", "")
	t.Setenv("HANOI_TLS_KEY", "")
	SetTLSConfigForTest(nil)
}

// waitFor polls a condition until it returns true or timeout expires.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("timeout waiting for: %s", msg)
}

func dialWS(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	return f
}

func TestWebSocketReceivesRecentEvents(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	for i := 0; i < 5; i++ {
		events.Emit("info", "move.applied", "", map[string]interface{}{"to": 2, "move_count": i + 1})
	}

	conn, closeFn := dialWS(t)
	defer closeFn()

	for i := 0; i < 5; i++ {
		f := readFrame(t, conn)
		if f.Event.Name != "move.applied" {
			t.Errorf("expected 'move.applied', got '%s'", f.Event.Name)
		}
		if f.Notice != nil {
			t.Error("replayed frames should not carry a notice")
		}
	}
}

func TestWebSocketLiveFramesCarryNotices(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()
	SetNoticeBuilder(notice.Builder{DisplayFor: time.Second, WinDelay: 50 * time.Millisecond})
	defer SetNoticeBuilder(notice.DefaultBuilder)

	conn, closeFn := dialWS(t)
	defer closeFn()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.EmitSession("s-1", "info", "puzzle.solved", "", map[string]interface{}{
			"move_count": 9, "optimal_move_count": 7,
		})
	}()

	f := readFrame(t, conn)
	if f.Event.Name != "puzzle.solved" || f.Event.Session != "s-1" {
		t.Fatalf("unexpected event %+v", f.Event)
	}
	if f.Notice == nil {
		t.Fatal("expected a notice on the live frame")
	}
	if f.Notice.Title != "Well Done 🎉" {
		t.Errorf("unexpected title %q", f.Notice.Title)
	}
	if !strings.Contains(f.Notice.Text, "9 moves") {
		t.Errorf("unexpected text %q", f.Notice.Text)
	}
}

func TestWebSocketEventWithoutNotice(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	conn, closeFn := dialWS(t)
	defer closeFn()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "puzzle.reset", "", map[string]interface{}{"disk_count": 4})
	}()

	f := readFrame(t, conn)
	if f.Event.Name != "puzzle.reset" {
		t.Errorf("expected 'puzzle.reset', got '%s'", f.Event.Name)
	}
	if f.Notice != nil {
		t.Errorf("expected no notice, got %+v", f.Notice)
	}
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()
	events.CloseAllSubscribers()

	conn, closeFn := dialWS(t)
	defer closeFn()

	go func() {
		time.Sleep(20 * time.Millisecond)
		events.Emit("info", "puzzle.reset", "", nil)
	}()
	readFrame(t, conn)

	conn.Close()

	for i := 0; i < 5; i++ {
		events.Emit("info", "puzzle.reset", "", nil)
		time.Sleep(50 * time.Millisecond)
	}

	waitFor(t, 5*time.Second, func() bool {
		return events.SubscriberCount() == 0
	}, "subscriber count to return to 0 after close")
}

func TestWebSocketMultipleClients(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	conn1, close1 := dialWS(t)
	defer close1()
	conn2, close2 := dialWS(t)
	defer close2()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "autosolve.started", "", map[string]interface{}{"disk_count": 3})
	}()

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		f := readFrame(t, conn)
		if f.Event.Name != "autosolve.started" {
			t.Errorf("client%d: expected 'autosolve.started', got '%s'", i+1, f.Event.Name)
		}
	}
}
