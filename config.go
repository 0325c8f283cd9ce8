package bandglow

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/bandglow/spectrum"
)

const (
	// DefaultBaud is the default baud rate of the serial link.
	DefaultBaud = 115200
	// DefaultBackend is the default capture backend for live sources.
	DefaultBackend = "parec"
	// TextDevice is the device name that prints frames to standard output
	// instead of a serial port.
	TextDevice = "-"
)

// Config is the configuration for the bandglow daemon.
type Config struct {
	// Device is the path to the serial device of the pixel-driver
	// controller. This is usually /dev/ttyACM0. If it is empty or "-", frames
	// are printed as text instead.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// StartupDelay is how long to wait before the first cycle.
	StartupDelay TOMLDuration `toml:"startup_delay"`
	// Source configures where samples come from.
	Source SourceConfig `toml:"source"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		StartupDelay: TOMLDuration(100 * time.Millisecond),
		Source:       SourceConfig{Amplitude: 1},
	}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if c.Source.Kind == "" {
		c.Source.Kind = LiveSourceKind
	}
	if c.Source.Backend == "" {
		c.Source.Backend = DefaultBackend
	}
}

// UsesSerial returns true if frames are sent to a serial device.
func (c *Config) UsesSerial() bool {
	return c.Device != "" && c.Device != TextDevice
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}

	if c.StartupDelay < 0 {
		return errors.New("startup delay must not be negative")
	}

	if err := c.Source.Validate(); err != nil {
		return errors.Wrap(err, "invalid source")
	}

	return nil
}

// SourceKind is the kind of sample source.
type SourceKind string

const (
	// LiveSourceKind captures from an audio input device.
	LiveSourceKind SourceKind = "live"
	// WAVSourceKind replays a WAV file.
	WAVSourceKind SourceKind = "wav"
	// ToneSourceKind generates a sine wave.
	ToneSourceKind SourceKind = "tone"
)

// SourceConfig is the configuration for the sample source.
type SourceConfig struct {
	Kind SourceKind `toml:"kind"`

	// Backend is the catnip input backend for live sources.
	Backend string `toml:"backend"`
	// Device is the capture device for live sources. If empty, the backend's
	// default device is used.
	Device string `toml:"device"`

	// File is the path to the WAV file for WAV sources.
	File string `toml:"file"`
	// Loop restarts the WAV file when it ends.
	Loop bool `toml:"loop"`
	// Realtime paces the WAV file by the wall clock.
	Realtime bool `toml:"realtime"`

	// Frequency is the frequency of tone sources in Hz.
	Frequency float64 `toml:"frequency"`
	// Amplitude is the amplitude of tone sources as a fraction of full
	// scale. It defaults to 1 when the key is missing.
	Amplitude float64 `toml:"amplitude" default:"1"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	switch c.Kind {
	case LiveSourceKind:
		if c.Backend == "" {
			return errors.New("live source needs a backend")
		}
	case WAVSourceKind:
		if c.File == "" {
			return errors.New("wav source needs a file")
		}
	case ToneSourceKind:
		if c.Frequency <= 0 || c.Frequency >= spectrum.SampleRate/2 {
			return fmt.Errorf("tone frequency %g Hz is out of range", c.Frequency)
		}
		if c.Amplitude < 0 || c.Amplitude > 1 {
			return fmt.Errorf("tone amplitude %g is out of range", c.Amplitude)
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Kind)
	}
	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Unset fields take their
// default values.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return &config, nil
}
