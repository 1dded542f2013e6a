package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"eosthanks/config"
	"eosthanks/models"
)

func TestSettingsHandler_GetSettings(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.Client = config.ClientSettings{
		TimeTotal:         15000,
		TimePer:           2000,
		ShowFollowers:     true,
		ShowSubscribers:   false,
		ShowCurrentStream: true,
	}
	handler := NewSettingsHandler(staticSettings{settings: cfg})

	rec := httptest.NewRecorder()
	handler.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content-type %q", got)
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"clientTimeTotal", "clientTimePer", "clientShowFollowers", "clientShowSubscribers", "clientShowCurrentStream"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %s", key)
		}
	}

	var got models.ClientSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	overlay := got.Overlay()
	if overlay.TimeTotal.Milliseconds() != 15000 || overlay.ShowSubscribers || !overlay.ShowFollowers {
		t.Fatalf("unexpected settings %+v", overlay)
	}
}

func TestSettingsHandler_LoadError(t *testing.T) {
	handler := NewSettingsHandler(staticSettings{err: errors.New("invalid settings: server.port 0 out of range")})

	rec := httptest.NewRecorder()
	handler.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func newSettingsManager(t *testing.T) *config.Manager {
	t.Helper()
	mgr := config.NewManagerWithFs(afero.NewMemMapFs(), "/config.yaml")
	mgr.SetEnvLookup(func(string) (string, bool) { return "", false })
	return mgr
}

func TestSettingsHandler_PutSettings(t *testing.T) {
	mgr := newSettingsManager(t)
	handler := NewSettingsHandler(mgr)

	rec := httptest.NewRecorder()
	body := `{"clientTimeTotal":12000,"clientShowSubscribers":false}`
	handler.PutSettings(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := mgr.Load()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	defaults := config.DefaultSettings()
	if stored.Client.TimeTotal != 12000 || stored.Client.ShowSubscribers {
		t.Fatalf("update not stored: %+v", stored.Client)
	}
	if stored.Client.TimePer != defaults.Client.TimePer || stored.Client.ShowFollowers != defaults.Client.ShowFollowers {
		t.Fatalf("omitted fields changed: %+v", stored.Client)
	}

	var got models.ClientSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ClientTimeTotal != 12000 {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestSettingsHandler_PutSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"clientTimeTotal":`},
		{"unknown field", `{"timeTotal":100}`},
		{"negative time", `{"clientTimePer":-5}`},
	}

	for _, tt := range tests {
		mgr := newSettingsManager(t)
		handler := NewSettingsHandler(mgr)

		rec := httptest.NewRecorder()
		handler.PutSettings(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(tt.body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
		stored, err := mgr.Load()
		if err != nil {
			t.Fatalf("%s: load settings: %v", tt.name, err)
		}
		if stored.Client != config.DefaultSettings().Client {
			t.Errorf("%s: settings changed: %+v", tt.name, stored.Client)
		}
	}
}
