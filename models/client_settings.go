package models

import "time"

// ClientSettings is the /settings payload consumed by the outro runner.
// Durations travel as milliseconds.
type ClientSettings struct {
	ClientTimeTotal         int   `json:"clientTimeTotal"`
	ClientTimePer           int   `json:"clientTimePer"`
	ClientShowFollowers     bool  `json:"clientShowFollowers"`
	ClientShowSubscribers   *bool `json:"clientShowSubscribers,omitempty"`
	ClientShowCurrentStream bool  `json:"clientShowCurrentStream"`
}

// OverlaySettings is the decoded, read-only configuration for one outro run.
type OverlaySettings struct {
	ShowFollowers   bool
	ShowSubscribers bool
	TimeTotal       time.Duration
	TimePer         time.Duration
}

// Overlay converts the wire settings. A missing clientShowSubscribers means
// subscribers are shown; negative durations are treated as zero.
func (c ClientSettings) Overlay() OverlaySettings {
	showSubs := true
	if c.ClientShowSubscribers != nil {
		showSubs = *c.ClientShowSubscribers
	}
	return OverlaySettings{
		ShowFollowers:   c.ClientShowFollowers,
		ShowSubscribers: showSubs,
		TimeTotal:       msDuration(c.ClientTimeTotal),
		TimePer:         msDuration(c.ClientTimePer),
	}
}

func msDuration(ms int) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
