package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// finishedJobRetention is how long the final update of a completed job is
// kept for late subscribers before the job is forgotten.
const finishedJobRetention = time.Minute

// Progress is one import status update pushed to subscribers.
type Progress struct {
	JobID     string `json:"job_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Stage     string `json:"stage"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

// Hub fans import progress out to websocket subscribers per job id.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*websocket.Conn]struct{}
	last     map[string]Progress
	lastTTL  time.Duration
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		subs:    make(map[string]map[*websocket.Conn]struct{}),
		last:    make(map[string]Progress),
		lastTTL: finishedJobRetention,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			// The endpoint carries no credentials and job ids are UUIDs.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve upgrades the request and streams updates for jobID until the
// client goes away or the job finishes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, jobID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	// The replay write must finish before the connection becomes visible
	// to Publish: gorilla/websocket allows only one concurrent writer per
	// connection. Publish snapshots subscribers under the same lock, so it
	// cannot pick this connection up until registration below.
	h.mu.Lock()
	if replay, ok := h.last[jobID]; ok {
		if err := conn.WriteJSON(replay); err != nil || replay.Done {
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[jobID][conn] = struct{}{}
	h.mu.Unlock()

	// Block on reads so client disconnects are noticed; updates arrive
	// through Publish on other goroutines.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(jobID, conn)
			return
		}
	}
}

// Publish sends an update to every subscriber of the job. On the final
// update all connections are closed and the job is forgotten after a
// retention window for late subscribers.
func (h *Hub) Publish(p Progress) {
	h.mu.Lock()
	h.last[p.JobID] = p
	conns := make([]*websocket.Conn, 0, len(h.subs[p.JobID]))
	for conn := range h.subs[p.JobID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(p); err != nil {
			h.drop(p.JobID, conn)
		}
	}

	if p.Done {
		h.mu.Lock()
		for conn := range h.subs[p.JobID] {
			conn.Close()
		}
		delete(h.subs, p.JobID)
		h.mu.Unlock()

		time.AfterFunc(h.lastTTL, func() { h.forget(p.JobID) })
	}
}

func (h *Hub) forget(jobID string) {
	h.mu.Lock()
	delete(h.last, jobID)
	h.mu.Unlock()
}

func (h *Hub) drop(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.subs[jobID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, jobID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}
