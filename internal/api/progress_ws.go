package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket streaming of experiment progress events. The client sends
// {"type":"connection_init"} then {"type":"subscribe","id":"1"}; the server
// answers with "next" frames carrying progress payloads until "complete".

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ProgressWSHandler serves /v1/experiments/{id}/ws
func (s *Server) ProgressWSHandler(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, err := s.Store.GetJob(r.Context(), jobID); err != nil {
		writeProblem(w, http.StatusNotFound, "Job not found", "", r.URL.Path)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Track subscriptions: message id -> channel
	subs := map[string]chan SSEEvent{}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	write := func(v any) error { return conn.WriteJSON(v) }

	// Expect connection_init first
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			// Start keepalive
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := write(wsMessage{Type: "ping"}); err != nil {
						return
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			if _, ok := subs[msg.ID]; ok {
				continue
			}
			ch := s.Broker.Subscribe(jobID)
			subs[msg.ID] = ch
			go func(id string, c chan SSEEvent) {
				for evt := range c {
					payload, _ := json.Marshal(map[string]any{"event": evt.Type, "data": evt.Data})
					_ = write(wsMessage{Type: "next", ID: id, Payload: payload})
					if evt.Type == "experiment.completed" || evt.Type == "experiment.failed" {
						break
					}
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)
		case "complete":
			if ch, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(jobID, ch)
				delete(subs, msg.ID)
			}
		default:
			// ignore
		}
	}
	for id, ch := range subs {
		s.Broker.Unsubscribe(jobID, ch)
		delete(subs, id)
	}
}
