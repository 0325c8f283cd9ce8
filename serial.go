package bandglow

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/ledserial"
)

// SerialLink sends frames to a pixel-driver controller speaking the ledserial
// protocol. Every packet written waits for the controller's ack, so frames
// never queue up on the link.
type SerialLink struct {
	port   io.ReadWriter
	logger *slog.Logger
	acks   chan ledserial.IncomingPacketType
	done   chan struct{}
	err    error
}

var _ led.FrameWriter = (*SerialLink)(nil)

// OpenSerialPort opens the serial device at path for use with a SerialLink.
func OpenSerialPort(path string, baud int) (serial.Port, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	return port, nil
}

// NewSerialLink creates a new SerialLink over port. Run must be running for
// writes to complete.
func NewSerialLink(port io.ReadWriter, logger *slog.Logger) *SerialLink {
	return &SerialLink{
		port:   port,
		logger: logger,
		acks:   make(chan ledserial.IncomingPacketType, 1),
		done:   make(chan struct{}),
	}
}

// Run reads packets from the controller until ctx is canceled or the
// controller reports an error. Closing the port unblocks it.
func (l *SerialLink) Run(ctx context.Context) error {
	l.err = l.readPackets(ctx)
	close(l.done)
	return l.err
}

func (l *SerialLink) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(l.port, ledserial.ReadContext{})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return errors.Wrap(err, "failed to read packet")
		}

		l.logger.Debug(
			"received packet from controller",
			"type", p.Type())

		switch p := p.(type) {
		case ledserial.AckPacket:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case l.acks <- p.IncomingPacketType:
			}

		case ledserial.ErrorPacket:
			l.logger.Warn(
				"received error packet from controller",
				"message", p.Message)
			return errors.Errorf("controller reported error: %s", p.Message)

		case ledserial.PanicPacket:
			l.logger.Error("controller unrecoverably panicked")
			return errors.New("controller panicked")

		case ledserial.LogPacket:
			l.logger.Info(
				"received log packet from controller",
				"message", p.Message)

		default:
			return fmt.Errorf("received unknown packet from controller: %s", p.Type())
		}
	}

	return ctx.Err()
}

// Initialize tells the controller how many LEDs it drives.
func (l *SerialLink) Initialize(numLEDs int) error {
	return l.writePacket(ledserial.InitializePacket{
		NumLEDs: uint16(numLEDs),
	})
}

// Clear turns off every LED on the controller.
func (l *SerialLink) Clear() error {
	return l.writePacket(ledserial.ClearPacket{})
}

// WriteFrame implements led.FrameWriter. It sends the whole frame as one set
// packet.
func (l *SerialLink) WriteFrame(leds led.LEDs) error {
	return l.writePacket(ledserial.SetPacket{
		Pix: leds.AsPixels(),
	})
}

func (l *SerialLink) writePacket(p ledserial.IncomingPacket) error {
	l.logger.Debug(
		"writing packet",
		"type", p.Type())

	if err := ledserial.WriteIncomingPacket(l.port, p); err != nil {
		return errors.Wrapf(err, "failed to write %s packet", p.Type())
	}

	select {
	case acked := <-l.acks:
		if acked != p.Type() {
			return errors.Errorf("controller acked %s, want %s", acked, p.Type())
		}
		return nil
	case <-l.done:
		if l.err != nil {
			return errors.Wrap(l.err, "serial link closed")
		}
		return errors.New("serial link closed")
	}
}
