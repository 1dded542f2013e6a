package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func newMemManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	m := NewManagerWithFs(fs, "/etc/eosthanks/config.yaml")
	m.SetEnvLookup(noEnv)
	return m, fs
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	m, _ := newMemManager(t)

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_PartialFileOverlaysDefaults(t *testing.T) {
	m, fs := newMemManager(t)
	yml := `
server:
  port: 9100
client:
  time_total: 15000
  show_current_stream: true
outro:
  sinks: [log, mqtt]
  timeout: 3s
`
	require.NoError(t, afero.WriteFile(fs, m.Path(), []byte(yml), 0o644))

	s, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, s.Server.Port)
	assert.Equal(t, "127.0.0.1", s.Server.Host)
	assert.Equal(t, 15000, s.Client.TimeTotal)
	assert.Equal(t, 2500, s.Client.TimePer)
	assert.True(t, s.Client.ShowCurrentStream)
	assert.True(t, s.Client.ShowFollowers)
	assert.Equal(t, []string{SinkLog, SinkMQTT}, s.Outro.Sinks)
	assert.Equal(t, 3*time.Second, s.Outro.Timeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	m, fs := newMemManager(t)
	require.NoError(t, afero.WriteFile(fs, m.Path(), []byte("server: [unclosed"), 0o644))

	_, err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse settings")
}

func TestLoad_ValidationFailure(t *testing.T) {
	m, fs := newMemManager(t)
	require.NoError(t, afero.WriteFile(fs, m.Path(), []byte("server:\n  port: 0\noutro:\n  sinks: [projector]\n"), 0o644))

	_, err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), `unknown sink "projector"`)
}

func TestLoad_EnvOverrides(t *testing.T) {
	m, _ := newMemManager(t)
	m.SetEnvLookup(envMap(map[string]string{
		"EOSTHANKS_SERVER_PORT":                "8123",
		"EOSTHANKS_SINKS":                      "log, terminal",
		"EOSTHANKS_INGEST_TOKEN":               "s3cret",
		"EOSTHANKS_CLIENT_SHOW_CURRENT_STREAM": "true",
	}))

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 8123, s.Server.Port)
	assert.Equal(t, []string{SinkLog, SinkTerminal}, s.Outro.Sinks)
	assert.Equal(t, "s3cret", s.Server.IngestToken)
	assert.True(t, s.Client.ShowCurrentStream)
}

func TestLoad_BadEnvOverride(t *testing.T) {
	m, _ := newMemManager(t)
	m.SetEnvLookup(envMap(map[string]string{"EOSTHANKS_SERVER_PORT": "eighty"}))

	_, err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EOSTHANKS_SERVER_PORT")
}

func TestSave_RoundTrip(t *testing.T) {
	m, fs := newMemManager(t)

	s := DefaultSettings()
	s.Server.Port = 8800
	s.Client.ShowSubscribers = false
	s.Outro.Sinks = []string{SinkMQTT}
	s.MQTT.Format = "msgpack"
	require.NoError(t, m.Save(s))

	exists, err := afero.Exists(fs, m.Path()+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temporary file left behind")

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSave_RejectsInvalid(t *testing.T) {
	m, fs := newMemManager(t)

	s := DefaultSettings()
	s.MQTT.QoS = 3
	err := m.Save(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	exists, _ := afero.Exists(fs, m.Path())
	assert.False(t, exists)
}

func TestClientSettings_Wire(t *testing.T) {
	c := ClientSettings{TimeTotal: 12000, TimePer: 1500, ShowFollowers: true, ShowSubscribers: false}
	w := c.Wire()

	assert.Equal(t, 12000, w.ClientTimeTotal)
	require.NotNil(t, w.ClientShowSubscribers)
	assert.False(t, *w.ClientShowSubscribers)
	assert.False(t, w.Overlay().ShowSubscribers)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EOSTHANKS_TEST_DOTENV=loaded\n"), 0o644))
	t.Setenv("EOSTHANKS_TEST_DOTENV", "")
	os.Unsetenv("EOSTHANKS_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("EOSTHANKS_TEST_DOTENV"))
}

func TestServerAddr(t *testing.T) {
	s := ServerSettings{Host: "0.0.0.0", Port: 8000}
	assert.True(t, strings.HasSuffix(s.Addr(), ":8000"))
	assert.Equal(t, "0.0.0.0:8000", s.Addr())
}

func TestUpdate_KeepsEnvOverridesOutOfFile(t *testing.T) {
	m, fs := newMemManager(t)
	m.SetEnvLookup(envMap(map[string]string{"EOSTHANKS_INGEST_TOKEN": "secret"}))

	got, err := m.Update(func(s *Settings) {
		s.Client.TimePer = 4000
	})
	require.NoError(t, err)
	assert.Equal(t, 4000, got.Client.TimePer)
	assert.Equal(t, "secret", got.Server.IngestToken, "effective settings include env overrides")

	data, err := afero.ReadFile(fs, m.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "time_per: 4000")
}

func TestUpdate_RejectsInvalid(t *testing.T) {
	m, fs := newMemManager(t)

	_, err := m.Update(func(s *Settings) {
		s.Server.Port = 0
	})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	exists, _ := afero.Exists(fs, m.Path())
	assert.False(t, exists)
}
