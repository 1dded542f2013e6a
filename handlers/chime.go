package handlers

import (
	"bytes"
	"log"
	"net/http"
	"sync"
	"time"

	"eosthanks/internal/audio"
)

// ChimeHandler serves the reveal chime as WAV. It is rendered once.
type ChimeHandler struct {
	chime audio.Chime

	once    sync.Once
	data    []byte
	err     error
	modTime time.Time
}

// NewChimeHandler creates a handler serving chime as WAV.
func NewChimeHandler(chime audio.Chime) *ChimeHandler {
	return &ChimeHandler{chime: chime}
}

// GetChime handles GET /chime.wav.
func (h *ChimeHandler) GetChime(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.data, h.err = h.chime.WAV()
		h.modTime = time.Now()
	})
	if h.err != nil {
		log.Printf("[api] render chime: %v", h.err)
		writeError(w, http.StatusInternalServerError, "failed to render chime")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, "chime.wav", h.modTime, bytes.NewReader(h.data))
}
