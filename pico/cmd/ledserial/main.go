// Command ledserial turns an RP2040 board into a serial pixel driver for the
// bandglow daemon.
package main

import (
	"machine"
	"time"

	"libdb.so/bandglow/pico"
)

func main() {
	time.Sleep(pico.BootDelay)

	d := NewDevice(machine.Serial, pico.GridPin)
	d.Run()
}
