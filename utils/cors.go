package utils

import (
	"net"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may call the event API. The
// overlay runs as a local page or an OBS browser source, so local and LAN
// origins are always trusted.
type OriginPolicy struct {
	// Extra lists additional exact origins, e.g. "https://overlay.example".
	Extra []string
	// AllowNull accepts the "null" origin sent by file:// pages.
	AllowNull bool
}

// Allowed checks whether an Origin header value should be trusted.
func (p OriginPolicy) Allowed(origin string) bool {
	if origin == "null" {
		return p.AllowNull
	}
	for _, o := range p.Extra {
		if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
			return true
		}
	}
	return IsAllowedOrigin(origin)
}

// IsAllowedOrigin allows localhost, private and link-local IPs, .local
// hostnames, and single-label hostnames. Public origins are blocked.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()

	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}

	// mDNS names such as streampc.local
	if strings.HasSuffix(hostname, ".local") {
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}

	// LAN names without dots
	return !strings.Contains(hostname, ".")
}
