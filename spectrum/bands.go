package spectrum

// NumBands is the number of frequency bands.
const NumBands = 5

// BandEdges are the boundaries of the frequency bands in Hz. Band i covers
// [BandEdges[i], BandEdges[i+1]).
var BandEdges = [NumBands + 1]float64{100, 500, 1000, 3000, 6000, 10000}

// Band is a half-open frequency range [Low, High) in Hz.
type Band struct {
	Low  float64
	High float64
}

// Contains returns true if f lies within the band.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f < b.High
}

// Bands are the frequency bands built from BandEdges, in ascending order.
var Bands = func() [NumBands]Band {
	var bands [NumBands]Band
	for i := range bands {
		bands[i] = Band{Low: BandEdges[i], High: BandEdges[i+1]}
	}
	return bands
}()

// BandOf returns the index of the first band containing f. It returns false if
// f is below the first edge or at or above the last edge.
func BandOf(f float64) (int, bool) {
	for i, band := range Bands {
		if band.Contains(f) {
			return i, true
		}
	}
	return 0, false
}

// Energies holds the summed magnitude of each band.
type Energies [NumBands]float64

// Aggregate sums the magnitudes of m into their bands. Bins outside of all
// bands are dropped.
func Aggregate(m *Magnitudes) Energies {
	var e Energies
	for i, mag := range m {
		if band, ok := BandOf(BinFrequency(i)); ok {
			e[band] += mag
		}
	}
	return e
}

// Peak returns the index of the band with the most energy.
func (e Energies) Peak() int {
	var peak int
	for i, v := range e {
		if v > e[peak] {
			peak = i
		}
	}
	return peak
}
