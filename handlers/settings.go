package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"eosthanks/config"
)

type settingsStore interface {
	settingsLoader
	Update(fn func(*config.Settings)) (config.Settings, error)
}

// SettingsHandler serves the outro settings. The file is re-read on every
// request so edits apply to the next run without a restart.
type SettingsHandler struct {
	settings settingsStore
}

// NewSettingsHandler creates a settings handler backed by the settings file.
func NewSettingsHandler(settings settingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// clientPatch is the PUT /settings body: the GET wire form with every
// field optional.
type clientPatch struct {
	ClientTimeTotal         *int  `json:"clientTimeTotal"`
	ClientTimePer           *int  `json:"clientTimePer"`
	ClientShowFollowers     *bool `json:"clientShowFollowers"`
	ClientShowSubscribers   *bool `json:"clientShowSubscribers"`
	ClientShowCurrentStream *bool `json:"clientShowCurrentStream"`
}

func (p clientPatch) apply(c *config.ClientSettings) {
	if p.ClientTimeTotal != nil {
		c.TimeTotal = *p.ClientTimeTotal
	}
	if p.ClientTimePer != nil {
		c.TimePer = *p.ClientTimePer
	}
	if p.ClientShowFollowers != nil {
		c.ShowFollowers = *p.ClientShowFollowers
	}
	if p.ClientShowSubscribers != nil {
		c.ShowSubscribers = *p.ClientShowSubscribers
	}
	if p.ClientShowCurrentStream != nil {
		c.ShowCurrentStream = *p.ClientShowCurrentStream
	}
}

// GetSettings handles GET /settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load()
	if err != nil {
		log.Printf("[api] load settings: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Client.Wire())
}

// PutSettings handles PUT /settings. Omitted fields keep their stored
// values.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var patch clientPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	s, err := h.settings.Update(func(s *config.Settings) {
		patch.apply(&s.Client)
	})
	if errors.Is(err, config.ErrInvalidSettings) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("[api] save settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	log.Printf("[api] client settings updated: total=%dms per=%dms", s.Client.TimeTotal, s.Client.TimePer)
	writeJSON(w, http.StatusOK, s.Client.Wire())
}
