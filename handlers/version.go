package handlers

import (
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
)

// Version is set at build time with -ldflags "-X eosthanks/handlers.Version=...".
var Version string

var (
	version     string
	versionOnce sync.Once
)

type VersionHandler struct{}

type VersionResponse struct {
	Version string `json:"version"`
}

// NewVersionHandler creates a version handler.
func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// GetBackendVersion returns the linked version, falling back to the module
// build info (cached after first read).
func GetBackendVersion() string {
	versionOnce.Do(func() {
		if v := strings.TrimSpace(Version); v != "" {
			version = v
			return
		}
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
			return
		}
		version = "unknown"
	})
	return version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: GetBackendVersion()})
}
