// Package ledvis draws band energies onto the LED grid.
package ledvis

import (
	"libdb.so/bandglow/internal/led"
	"libdb.so/bandglow/spectrum"
)

const (
	// ScaleFactor is the band energy that fills one row of the grid.
	ScaleFactor = 20
	// BrightnessGain is the brightness of a row per unit of intensity above
	// it.
	BrightnessGain = 50
	// MaxBrightness caps the blue channel of every LED.
	MaxBrightness = 80
)

// Intensity converts a band energy into the number of lit rows, clamped to
// [0, GridRows]. The fractional part dims the topmost lit row.
func Intensity(energy float64) float64 {
	return clamp(energy/ScaleFactor, 0, led.GridRows)
}

// Brightness returns the brightness of the given row for a column with the
// given intensity, in [0, MaxBrightness].
func Brightness(intensity float64, row int) uint8 {
	if intensity <= float64(row) {
		return 0
	}
	return uint8(clamp((intensity-float64(row))*BrightnessGain, 0, MaxBrightness))
}

// BarGraph draws one column per frequency band onto a 5x5 grid. Row 0 is the
// bottom of each bar.
type BarGraph struct {
	driver led.Driver
}

// NewBarGraph creates a BarGraph that draws onto the given driver. The driver
// must hold at least led.GridSize pixels.
func NewBarGraph(driver led.Driver) *BarGraph {
	return &BarGraph{driver: driver}
}

// Render draws the energies and flushes the frame. Every pixel of the grid is
// set before the single flush.
func (g *BarGraph) Render(energies spectrum.Energies) error {
	g.driver.Clear()

	for band, energy := range energies {
		intensity := Intensity(energy)
		for row := 0; row < led.GridRows; row++ {
			g.driver.SetPixel(led.GridIndex(band, row), led.Blue(Brightness(intensity, row)))
		}
	}

	return g.driver.Flush()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
