package handlers

import (
	"delivery-insertion-planner/internal/ports"
	"delivery-insertion-planner/internal/services"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 20 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type EventHandler struct {
	Feed    ports.ProgressFeed
	Planner *services.Planner
}

// Stream upgrades to a websocket and pushes job progress as JSON messages,
// starting with the current job state.
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	events, cancel := h.Feed.Subscribe(r.Context())
	defer cancel()

	// Read loop only tracks liveness; clients send nothing meaningful.
	closed := make(chan struct{})
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(wsPongWait)) })
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	snap := h.Planner.Job()
	if err := write(ports.Progress{JobID: snap.JobID, State: string(snap.State), Status: snap.Status, Message: snap.Error}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			if err := write(p); err != nil {
				log.Printf("op=events.stream job_id=%s err=%v", p.JobID, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
