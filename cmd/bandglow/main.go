package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.bug.st/serial"
	"libdb.so/bandglow"
	"libdb.so/bandglow/internal/capture"
)

var (
	config      = "bandglow.toml"
	verbose     = false
	device      = ""
	wavFile     = ""
	tone        = 0.0
	listDevices = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVarP(&device, "device", "d", device, "serial device of the LED controller, or - to print frames")
	pflag.StringVar(&wavFile, "wav", wavFile, "replay a WAV file instead of capturing")
	pflag.Float64Var(&tone, "tone", tone, "generate a sine tone of this frequency in Hz instead of capturing")
	pflag.BoolVar(&listDevices, "list-devices", listDevices, "list serial ports and capture devices, then exit")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if listDevices {
		return printDevices()
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	d, err := bandglow.NewDaemon(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*bandglow.Config, error) {
	cfg, err := parseConfigFile()
	if err != nil {
		return nil, err
	}

	if device != "" {
		cfg.Device = device
	}

	switch {
	case wavFile != "":
		cfg.Source.Kind = bandglow.WAVSourceKind
		cfg.Source.File = wavFile
	case tone > 0:
		cfg.Source.Kind = bandglow.ToneSourceKind
		cfg.Source.Frequency = tone
	}

	return cfg, nil
}

func parseConfigFile() (*bandglow.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		// The default configuration file is optional.
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			return bandglow.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := bandglow.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func printDevices() error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}

	fmt.Println("serial ports:")
	for _, port := range ports {
		fmt.Println("  " + port)
	}

	fmt.Println("capture backends:")
	for _, name := range capture.BackendNames() {
		fmt.Println("  " + name)

		devices, err := capture.DeviceNames(name)
		if err != nil {
			slog.Warn("failed to list capture devices", "backend", name, "error", err)
			continue
		}
		for _, dev := range devices {
			fmt.Println("    " + dev)
		}
	}

	return nil
}
