package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

// Hub maintains per-user SSE subscribers listening for audit progress.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan usecase.ProgressEvent]struct{}
}

func NewProgressHub() *Hub {
	return &Hub{users: make(map[string]map[chan usecase.ProgressEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by
// the auth middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan usecase.ProgressEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	// Initial comment to keep the connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: audit_progress\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan usecase.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan usecase.ProgressEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan usecase.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Broadcast fans an event out to every subscriber of one user. Non-blocking;
// slow consumers drop events (informational, last-value-wins).
func (h *Hub) Broadcast(userID string, evt usecase.ProgressEvent) {
	h.mu.RLock()
	subs := h.users[userID]
	for ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
