package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
)

// hubServer is a minimal SignalR JSON hub for tests
type hubServer struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	negotiations    atomic.Int32
	pings           atomic.Int32
	failInvocations atomic.Int32
	failNegotiate   atomic.Bool

	mu           sync.Mutex
	conns        []*websocket.Conn
	invocations  chan hubMessage
	negotiateTok []string
	upgradeTok   []string
}

func newHubServer(t *testing.T) *hubServer {
	h := &hubServer{
		t:           t,
		invocations: make(chan hubMessage, 100),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/hub/negotiate", h.handleNegotiate)
	mux.HandleFunc("/redirect/negotiate", h.handleRedirect)
	mux.HandleFunc("/hub", h.handleHub)

	h.server = httptest.NewServer(mux)
	return h
}

func (h *hubServer) hubURL() string {
	return h.server.URL + "/hub"
}

func (h *hubServer) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	h.negotiations.Add(1)

	h.mu.Lock()
	h.negotiateTok = append(h.negotiateTok, r.Header.Get("Authorization"))
	h.mu.Unlock()

	if h.failNegotiate.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"negotiateVersion": 1,
		"connectionId":     "conn-1",
		"connectionToken":  "token-1",
		"availableTransports": []map[string]interface{}{
			{"transport": "WebSockets", "transferFormats": []string{"Text"}},
		},
	})
}

func (h *hubServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":         h.hubURL(),
		"accessToken": "redirected-token",
	})
}

func (h *hubServer) handleHub(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("id") != "token-1" {
		http.Error(w, "unknown connection", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	defer conn.Close()

	if _, _, err := conn.ReadMessage(); err != nil {
		return
	}

	// Writes share h.mu with send. The connection is registered only once
	// the handshake reply is out, so broadcasts never precede it.
	h.mu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, frameRecord([]byte("{}")))
	if err == nil {
		h.conns = append(h.conns, conn)
		h.upgradeTok = append(h.upgradeTok, r.Header.Get("Authorization"))
	}
	h.mu.Unlock()
	if err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		for _, record := range splitRecords(data) {
			var msg hubMessage
			if err := json.Unmarshal(record, &msg); err != nil {
				continue
			}

			switch msg.Type {
			case messageTypePing:
				h.pings.Add(1)
			case messageTypeInvocation:
				h.invocations <- msg
				if msg.InvocationID == "" {
					continue
				}

				completion := map[string]interface{}{"type": messageTypeCompletion, "invocationId": msg.InvocationID}
				if h.failInvocations.Load() > 0 {
					h.failInvocations.Add(-1)
					completion["error"] = "group service unavailable"
				}
				h.send(conn, completion)
			}
		}
	}
}

func (h *hubServer) send(conn *websocket.Conn, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.t.Errorf("marshal hub message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	conn.WriteMessage(websocket.TextMessage, frameRecord(payload))
}

// broadcast sends a server-to-client invocation on the newest connection
func (h *hubServer) broadcast(target string, args ...interface{}) {
	h.mu.Lock()
	conn := h.conns[len(h.conns)-1]
	h.mu.Unlock()

	h.send(conn, map[string]interface{}{
		"type":      messageTypeInvocation,
		"target":    target,
		"arguments": args,
	})
}

func (h *hubServer) sendClose(errMessage string, allowReconnect bool) {
	h.mu.Lock()
	conn := h.conns[len(h.conns)-1]
	h.mu.Unlock()

	h.send(conn, map[string]interface{}{
		"type":           messageTypeClose,
		"error":          errMessage,
		"allowReconnect": allowReconnect,
	})
}

// dropConnections closes every open websocket without a close handshake
func (h *hubServer) dropConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.conns {
		conn.Close()
	}
}

func (h *hubServer) Close() {
	h.dropConnections()
	h.server.Close()
}
