// Command spectrum runs the spectrum visualizer on an RP2040 board: it reads
// the microphone through the ADC and draws the band bar graph on a WS2812
// grid.
package main

import (
	"context"
	"time"

	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/internal/pipeline"
	"libdb.so/bandglow/pico"
)

func main() {
	time.Sleep(pico.BootDelay)

	src := pico.NewADCSource(pico.MicPin)
	strip := pico.NewStrip(pico.GridPin)

	p := pipeline.New(src, led.NewFrameDriver(led.GridSize, strip))
	for {
		err := p.Run(context.Background(), pipeline.Period)
		println("spectrum: cycle failed:", err.Error())
		time.Sleep(time.Second)
	}
}
