package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EOSTHANKS_"

// Manager reads and writes the settings file.
type Manager struct {
	mu     sync.RWMutex
	fs     afero.Fs
	path   string
	lookup func(string) (string, bool)
}

// NewManager manages the settings file at path on the OS filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), path)
}

// NewManagerWithFs manages the settings file at path on fs.
func NewManagerWithFs(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path, lookup: os.LookupEnv}
}

// SetEnvLookup replaces the environment source used for overrides.
func (m *Manager) SetEnvLookup(lookup func(string) (string, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup = lookup
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Load returns the file's settings layered over the defaults, with
// environment overrides applied. A missing file yields the defaults.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.readFile()
	if err != nil {
		return Settings{}, err
	}
	if err := applyEnv(&s, m.lookup); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return s, nil
}

// Save validates s and writes it atomically.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(s)
}

// Update applies fn to the settings stored in the file, without environment
// overrides, saves the result and returns the effective settings.
func (m *Manager) Update(fn func(*Settings)) (Settings, error) {
	m.mu.Lock()
	s, err := m.readFile()
	if err == nil {
		fn(&s)
		err = m.write(s)
	}
	m.mu.Unlock()
	if err != nil {
		return Settings{}, err
	}
	return m.Load()
}

func (m *Manager) readFile() (Settings, error) {
	s := DefaultSettings()

	data, err := afero.ReadFile(m.fs, m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
		}
	}
	return s, nil
}

// write must be called with mu held.
func (m *Manager) write(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := m.fs.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

type override struct {
	key   string
	apply func(s *Settings, v string) error
}

var overrides = []override{
	{"SERVER_HOST", func(s *Settings, v string) error { s.Server.Host = v; return nil }},
	{"SERVER_PORT", func(s *Settings, v string) error { return setInt(&s.Server.Port, v) }},
	{"INGEST_TOKEN", func(s *Settings, v string) error { s.Server.IngestToken = v; return nil }},
	{"DATABASE_PATH", func(s *Settings, v string) error { s.Database.Path = v; return nil }},
	{"SOURCE_URL", func(s *Settings, v string) error { s.Outro.SourceURL = v; return nil }},
	{"SINKS", func(s *Settings, v string) error { s.Outro.Sinks = splitList(v); return nil }},
	{"MQTT_BROKER", func(s *Settings, v string) error { s.MQTT.Broker = v; return nil }},
	{"MQTT_TOPIC", func(s *Settings, v string) error { s.MQTT.Topic = v; return nil }},
	{"LOG_FILE", func(s *Settings, v string) error { s.Log.File = v; return nil }},
	{"CLIENT_TIME_TOTAL", func(s *Settings, v string) error { return setInt(&s.Client.TimeTotal, v) }},
	{"CLIENT_TIME_PER", func(s *Settings, v string) error { return setInt(&s.Client.TimePer, v) }},
	{"CLIENT_SHOW_CURRENT_STREAM", func(s *Settings, v string) error { return setBool(&s.Client.ShowCurrentStream, v) }},
}

func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	for _, o := range overrides {
		v, ok := lookup(EnvPrefix + o.key)
		if !ok {
			continue
		}
		if err := o.apply(s, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, o.key, err)
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
