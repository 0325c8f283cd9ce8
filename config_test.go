package bandglow

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	const input = `
device = "/dev/ttyACM0"
baud = 921600
startup_delay = "5s"

[source]
kind = "wav"
file = "sweep.wav"
loop = true
realtime = true
`

	cfg, err := ParseConfig(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.True(t, cfg.UsesSerial())
	assert.Equal(t, 921600, cfg.Baud)
	assert.Equal(t, TOMLDuration(5*time.Second), cfg.StartupDelay)
	assert.Equal(t, SourceConfig{
		Kind:      WAVSourceKind,
		Backend:   DefaultBackend,
		File:      "sweep.wav",
		Loop:      true,
		Realtime:  true,
		Amplitude: 1,
	}, cfg.Source)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.UsesSerial())
	assert.Equal(t, DefaultBaud, cfg.Baud)
	assert.Equal(t, LiveSourceKind, cfg.Source.Kind)
	assert.Equal(t, DefaultBackend, cfg.Source.Backend)
	assert.Zero(t, cfg.StartupDelay)
	assert.Equal(t, 1.0, cfg.Source.Amplitude)
}

func TestParseConfigSilentTone(t *testing.T) {
	const input = `
[source]
kind = "tone"
frequency = 440
amplitude = 0
`

	cfg, err := ParseConfig(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Source.Amplitude)

	cfg, err = ParseConfig(strings.NewReader("[source]\nkind = \"tone\"\nfrequency = 440\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Source.Amplitude)
}

func TestParseConfigInvalidDuration(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`startup_delay = "soon"`))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, TOMLDuration(100*time.Millisecond), cfg.StartupDelay)

	cfg.Device = TextDevice
	assert.False(t, cfg.UsesSerial())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"baud", func(c *Config) { c.Baud = -1 }, "invalid baud rate"},
		{"delay", func(c *Config) { c.StartupDelay = -1 }, "must not be negative"},
		{"kind", func(c *Config) { c.Source.Kind = "radio" }, `unknown source kind "radio"`},
		{"backend", func(c *Config) { c.Source.Backend = "" }, "needs a backend"},
		{"wav", func(c *Config) { c.Source.Kind = WAVSourceKind }, "needs a file"},
		{"tone frequency", func(c *Config) {
			c.Source.Kind = ToneSourceKind
			c.Source.Frequency = 30000
		}, "out of range"},
		{"tone amplitude", func(c *Config) {
			c.Source.Kind = ToneSourceKind
			c.Source.Frequency = 440
			c.Source.Amplitude = 1.5
		}, "amplitude 1.5 is out of range"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), test.err)
		})
	}
}

func TestTOMLDuration(t *testing.T) {
	var d TOMLDuration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, TOMLDuration(90*time.Second), d)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
