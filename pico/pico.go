// Package pico contains the board support shared by the RP2040 firmware.
package pico

import (
	"machine"
	"time"
)

var (
	// MicPin is the microphone input, ADC channel 2.
	MicPin = machine.ADC2 // GPIO28
	// GridPin drives the data line of the WS2812 grid.
	GridPin = machine.GPIO7
	// ActivityPin is the onboard LED.
	ActivityPin = machine.LED
)

// BootDelay is how long the firmware waits after reset before touching the
// peripherals, so that a serial console can attach.
const BootDelay = 5 * time.Second
