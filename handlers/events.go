package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"eosthanks/config"
	"eosthanks/internal/database"
	"eosthanks/models"
	"eosthanks/services/events"
)

type eventsService interface {
	Follow(req events.FollowRequest) (*models.Follower, error)
	Subscribe(req events.SubscribeRequest) (*models.Subscriber, error)
	Cheer(req events.CheerRequest) (*models.Cheer, error)
	Unfollow(userID string) error
	Followers(currentStreamOnly bool, page events.Page) ([]models.Follower, error)
	Subscribers(currentStreamOnly bool, page events.Page) ([]models.Subscriber, error)
	Cheers(currentStreamOnly bool, page events.Page) ([]models.Cheer, error)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type settingsLoader interface {
	Load() (config.Settings, error)
}

// EventsHandler serves the follower, subscriber and bits lists and accepts
// new events.
type EventsHandler struct {
	events   eventsService
	settings settingsLoader
}

// NewEventsHandler creates an events handler. settings supplies the
// current-stream filter.
func NewEventsHandler(svc eventsService, settings settingsLoader) *EventsHandler {
	return &EventsHandler{events: svc, settings: settings}
}

func (h *EventsHandler) currentStreamOnly() bool {
	s, err := h.settings.Load()
	if err != nil {
		log.Printf("[api] load settings: %v", err)
		return false
	}
	return s.Client.ShowCurrentStream
}

// parsePage reads the limit, offset and latest query parameters. Without
// any of them the whole list is returned oldest first, which is what the
// outro fetches. latest is a unix time in milliseconds.
func parsePage(r *http.Request) (events.Page, error) {
	q := r.URL.Query()
	if !q.Has("limit") && !q.Has("offset") && !q.Has("latest") {
		return events.Page{}, nil
	}

	page := events.Page{Limit: defaultPageLimit}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return events.Page{}, fmt.Errorf("invalid limit %q", v)
		}
		if n > 0 {
			page.Limit = min(n, maxPageLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return events.Page{}, fmt.Errorf("invalid offset %q", v)
		}
		page.Offset = max(n, 0)
	}
	if v := q.Get("latest"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return events.Page{}, fmt.Errorf("invalid latest %q", v)
		}
		if ms > 0 {
			page.Latest = time.UnixMilli(ms).UTC()
		}
	}
	return page, nil
}

// GetFollowers handles GET /followers.
func (h *EventsHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	followers, err := h.events.Followers(h.currentStreamOnly(), page)
	if err != nil {
		log.Printf("[api] list followers: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list followers")
		return
	}
	writeJSON(w, http.StatusOK, followers)
}

// GetSubscribers handles GET /subscribers.
func (h *EventsHandler) GetSubscribers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	subscribers, err := h.events.Subscribers(h.currentStreamOnly(), page)
	if err != nil {
		log.Printf("[api] list subscribers: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}
	writeJSON(w, http.StatusOK, subscribers)
}

// GetBits handles GET /bits.
func (h *EventsHandler) GetBits(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cheers, err := h.events.Cheers(h.currentStreamOnly(), page)
	if err != nil {
		log.Printf("[api] list bits: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list bits")
		return
	}
	writeJSON(w, http.StatusOK, cheers)
}

// PostFollow handles POST /follow.
func (h *EventsHandler) PostFollow(w http.ResponseWriter, r *http.Request) {
	var req events.FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	follower, err := h.events.Follow(req)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, follower)
}

// PostSubscribe handles POST /subscribe.
func (h *EventsHandler) PostSubscribe(w http.ResponseWriter, r *http.Request) {
	var req events.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	subscriber, err := h.events.Subscribe(req)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriber)
}

// PostBits handles POST /bits.
func (h *EventsHandler) PostBits(w http.ResponseWriter, r *http.Request) {
	var req events.CheerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	cheer, err := h.events.Cheer(req)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cheer)
}

// DeleteFollower handles DELETE /followers/{userID}.
func (h *EventsHandler) DeleteFollower(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Unfollow(mux.Vars(r)["userID"]); err != nil {
		h.writeIngestError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrUserIDRequired),
		errors.Is(err, events.ErrDisplayNameRequired),
		errors.Is(err, events.ErrInvalidMonths),
		errors.Is(err, events.ErrInvalidBits):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrDuplicateEvent):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[api] record event: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record event")
	}
}
