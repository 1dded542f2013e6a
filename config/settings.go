// Package config loads and persists eosthanks settings.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"eosthanks/models"
)

const (
	SinkTerminal = "terminal"
	SinkMQTT     = "mqtt"
	SinkLog      = "log"
)

// Settings is the complete configuration file.
type Settings struct {
	Server   ServerSettings   `yaml:"server" json:"server"`
	Database DatabaseSettings `yaml:"database" json:"database"`
	Client   ClientSettings   `yaml:"client" json:"client"`
	Ingest   IngestSettings   `yaml:"ingest" json:"ingest"`
	Outro    OutroSettings    `yaml:"outro" json:"outro"`
	MQTT     MQTTSettings     `yaml:"mqtt" json:"mqtt"`
	Log      LogSettings      `yaml:"log" json:"log"`
}

type ServerSettings struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	MaxConnections int           `yaml:"max_connections" json:"maxConnections"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"writeTimeout"`
	// IngestToken, when set, must accompany POST /follow and /subscribe.
	IngestToken    string   `yaml:"ingest_token" json:"-"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" json:"allowedOrigins"`
}

// Addr returns host:port.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseSettings struct {
	Path string `yaml:"path" json:"path"`
}

// ClientSettings are the outro settings served at /settings. Times are in
// milliseconds.
type ClientSettings struct {
	TimeTotal         int  `yaml:"time_total" json:"timeTotal"`
	TimePer           int  `yaml:"time_per" json:"timePer"`
	ShowFollowers     bool `yaml:"show_followers" json:"showFollowers"`
	ShowSubscribers   bool `yaml:"show_subscribers" json:"showSubscribers"`
	ShowCurrentStream bool `yaml:"show_current_stream" json:"showCurrentStream"`
}

// Wire converts to the /settings response body.
func (c ClientSettings) Wire() models.ClientSettings {
	subs := c.ShowSubscribers
	return models.ClientSettings{
		ClientTimeTotal:         c.TimeTotal,
		ClientTimePer:           c.TimePer,
		ClientShowFollowers:     c.ShowFollowers,
		ClientShowSubscribers:   &subs,
		ClientShowCurrentStream: c.ShowCurrentStream,
	}
}

type IngestSettings struct {
	PerMinute int `yaml:"per_minute" json:"perMinute"`
	Burst     int `yaml:"burst" json:"burst"`
}

type OutroSettings struct {
	SourceURL  string        `yaml:"source_url" json:"sourceUrl"`
	Viewport   models.Size   `yaml:"viewport" json:"viewport"`
	Sinks      []string      `yaml:"sinks" json:"sinks"`
	ASCIINames bool          `yaml:"ascii_names" json:"asciiNames"`
	Seed       uint64        `yaml:"seed" json:"seed"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	// HoldEnding keeps the terminal open after the ending graphic.
	HoldEnding time.Duration `yaml:"hold_ending" json:"holdEnding"`
}

type MQTTSettings struct {
	Broker   string `yaml:"broker" json:"broker"`
	ClientID string `yaml:"client_id" json:"clientId"`
	Topic    string `yaml:"topic" json:"topic"`
	QoS      byte   `yaml:"qos" json:"qos"`
	Format   string `yaml:"format" json:"format"`
}

type LogSettings struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"maxSizeMb"`
	MaxBackups int    `yaml:"max_backups" json:"maxBackups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"maxAgeDays"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:           "127.0.0.1",
			Port:           8000,
			MaxConnections: 64,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Database: DatabaseSettings{Path: "data/events.db"},
		Client: ClientSettings{
			TimeTotal:       20000,
			TimePer:         2500,
			ShowFollowers:   true,
			ShowSubscribers: true,
		},
		Ingest: IngestSettings{PerMinute: 60, Burst: 10},
		Outro: OutroSettings{
			SourceURL:  "http://localhost:8000",
			Viewport:   models.Size{Width: 1920, Height: 1080},
			Sinks:      []string{SinkTerminal},
			Timeout:    10 * time.Second,
			HoldEnding: 5 * time.Second,
		},
		MQTT: MQTTSettings{
			Broker:   "tcp://localhost:1883",
			ClientID: "eosthanks",
			Topic:    "eosthanks/overlay",
			QoS:      1,
			Format:   "json",
		},
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

var validSinks = []string{SinkTerminal, SinkMQTT, SinkLog}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", s.Server.Port))
	}
	if s.Server.MaxConnections < 0 {
		errs = append(errs, errors.New("server.max_connections must not be negative"))
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if s.Client.TimeTotal < 0 || s.Client.TimePer < 0 {
		errs = append(errs, errors.New("client times must not be negative"))
	}
	if s.Ingest.PerMinute < 0 || s.Ingest.Burst < 0 {
		errs = append(errs, errors.New("ingest limits must not be negative"))
	}
	if s.Outro.Viewport.Width <= 0 || s.Outro.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("outro.viewport %dx%d must be positive", s.Outro.Viewport.Width, s.Outro.Viewport.Height))
	}
	for _, sink := range s.Outro.Sinks {
		if !slices.Contains(validSinks, sink) {
			errs = append(errs, fmt.Errorf("outro.sinks: unknown sink %q", sink))
		}
	}
	if slices.Contains(s.Outro.Sinks, SinkMQTT) {
		if s.MQTT.Broker == "" || s.MQTT.Topic == "" {
			errs = append(errs, errors.New("mqtt.broker and mqtt.topic are required for the mqtt sink"))
		}
	}
	if s.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos %d must be 0, 1 or 2", s.MQTT.QoS))
	}
	if s.MQTT.Format != "" && s.MQTT.Format != "json" && s.MQTT.Format != "msgpack" {
		errs = append(errs, fmt.Errorf("mqtt.format %q must be json or msgpack", s.MQTT.Format))
	}

	return errors.Join(errs...)
}
