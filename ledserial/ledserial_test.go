package ledserial

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomingPackets(t *testing.T) {
	pix := []uint8{0, 0, 80, 0, 0, 25}

	var buf bytes.Buffer
	require.NoError(t, WriteIncomingPacket(&buf, InitializePacket{NumLEDs: 2}))
	require.NoError(t, WriteIncomingPacket(&buf, ClearPacket{}))
	require.NoError(t, WriteIncomingPacket(&buf, SetPacket{Pix: pix}))

	// type + uint16 + crc, type + crc, type + pixels + crc
	assert.Equal(t, (1+2+4)+(1+4)+(1+len(pix)+4), buf.Len())

	var ctx ReadContext

	p, err := ReadIncomingPacket(&buf, ctx)
	require.NoError(t, err)
	require.Equal(t, InitializePacket{NumLEDs: 2}, p)
	ctx.LEDBuffer = make([]uint8, 3*p.(InitializePacket).NumLEDs)

	p, err = ReadIncomingPacket(&buf, ctx)
	require.NoError(t, err)
	assert.Equal(t, ClearPacket{}, p)

	p, err = ReadIncomingPacket(&buf, ctx)
	require.NoError(t, err)
	assert.Equal(t, SetPacket{Pix: pix}, p)
	assert.Equal(t, pix, ctx.LEDBuffer, "pixels are read into the LED buffer")

	_, err = ReadIncomingPacket(&buf, ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSetPacketBeforeInitialize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{1, 2, 3}}))

	_, err := ReadIncomingPacket(&buf, ReadContext{})
	assert.ErrorContains(t, err, "before initialize")
}

func TestSetPacketSizedByBuffer(t *testing.T) {
	ctx := ReadContext{LEDBuffer: make([]uint8, 6)}

	var buf bytes.Buffer
	require.NoError(t, WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{1, 2, 3, 4, 5, 6}}))

	p, err := ReadIncomingPacket(&buf, ctx)
	require.NoError(t, err)
	assert.Len(t, p.(SetPacket).Pix, len(ctx.LEDBuffer))

	// A frame for more LEDs than initialized never decodes.
	buf.Reset()
	require.NoError(t, WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}}))

	_, err = ReadIncomingPacket(&buf, ctx)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestOutgoingPackets(t *testing.T) {
	packets := []OutgoingPacket{
		AckPacket{IncomingPacketType: TypeSetPacket},
		LogPacket{Message: "received packet: set"},
		ErrorPacket{Message: "invalid number of LEDs: 0"},
		PanicPacket{},
	}

	var buf bytes.Buffer
	for _, p := range packets {
		require.NoError(t, WriteOutgoingPacket(&buf, p))
	}

	for _, want := range packets {
		p, err := ReadOutgoingPacket(&buf, ReadContext{})
		require.NoError(t, err)
		assert.Equal(t, want, p)
		assert.Equal(t, want.Type(), p.Type())
	}
}

func TestChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutgoingPacket(&buf, LogPacket{Message: "hello"}))

	b := buf.Bytes()
	b[4] ^= 0xFF // corrupt the message

	_, err := ReadOutgoingPacket(bytes.NewReader(b), ReadContext{})
	assert.ErrorIs(t, err, ErrChecksum)

	buf.Reset()
	require.NoError(t, WriteIncomingPacket(&buf, InitializePacket{NumLEDs: 25}))
	b = buf.Bytes()
	b[len(b)-1] ^= 0xFF // corrupt the checksum

	_, err = ReadIncomingPacket(bytes.NewReader(b), ReadContext{})
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestUnknownPacketType(t *testing.T) {
	_, err := ReadIncomingPacket(bytes.NewReader([]byte{0xF0}), ReadContext{})
	assert.ErrorContains(t, err, "IncomingPacketType(240)")

	_, err = ReadOutgoingPacket(bytes.NewReader([]byte{0xF0}), ReadContext{})
	assert.ErrorContains(t, err, "OutgoingPacketType(240)")
}

func TestPacketTypeStrings(t *testing.T) {
	assert.Equal(t, "set", TypeSetPacket.String())
	assert.Equal(t, "ack", TypeAckPacket.String())
	assert.Equal(t, "initialize", InitializePacket{}.Type().String())
}
