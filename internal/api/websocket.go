package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/logger"
	"github.com/AaronLay10/TowerEngine/internal/notice"
)

const (
	// Number of recent events to send on connection
	recentEventsCount = 50

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is one websocket message: the event plus the notice it produces, if any.
type Frame struct {
	Event  events.Event   `json:"event"`
	Notice *notice.Notice `json:"notice,omitempty"`
}

func frameFor(b notice.Builder, e events.Event) Frame {
	f := Frame{Event: e}
	if n, ok := b.FromEvent(e); ok {
		f.Notice = &n
	}
	return f
}

// wsEventsHandler streams recent events, then live ones, as frames.
// Replayed frames carry no notice; they are history, not news.
func wsEventsHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.For("api.ws")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("upgrade failed", "error", err)
		return
	}

	sub := events.Subscribe()
	closeAll := func() {
		events.Unsubscribe(sub)
		conn.Close()
	}

	write := func(f Frame) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f)
	}

	for _, e := range events.RecentEvents(recentEventsCount) {
		if err := write(Frame{Event: e}); err != nil {
			log.Debugw("write recent event failed", "error", err)
			closeAll()
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	builder := getNotices()
	for {
		select {
		case <-done:
			closeAll()
			return

		case e, ok := <-sub:
			if !ok {
				conn.Close()
				return
			}
			if err := write(frameFor(builder, e)); err != nil {
				log.Debugw("write event failed", "error", err)
				closeAll()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				closeAll()
				return
			}
		}
	}
}
