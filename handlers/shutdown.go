package handlers

import (
	"log"
	"net/http"
	"sync"
)

// ShutdownHandler stops the server on request.
type ShutdownHandler struct {
	once     sync.Once
	shutdown func()
}

// NewShutdownHandler creates a handler that calls shutdown once.
func NewShutdownHandler(shutdown func()) *ShutdownHandler {
	return &ShutdownHandler{shutdown: shutdown}
}

// PostShutdown handles POST /shutdown. The response is written before the
// server begins to drain.
func (h *ShutdownHandler) PostShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
	h.once.Do(func() {
		log.Printf("[api] shutdown requested by %s", r.RemoteAddr)
		go h.shutdown()
	})
}
