package led

const (
	// GridColumns is the number of columns on the LED grid.
	GridColumns = 5
	// GridRows is the number of rows on the LED grid.
	GridRows = 5
	// GridSize is the number of LEDs on the grid.
	GridSize = GridColumns * GridRows
)

// GridIndex returns the strip index of the LED at the given column and row.
// The strip snakes across the grid: even rows run left to right and odd rows
// run right to left.
func GridIndex(col, row int) int {
	if col < 0 || col >= GridColumns || row < 0 || row >= GridRows {
		panic("led: grid position out of range")
	}
	if row%2 == 1 {
		col = GridColumns - 1 - col
	}
	return row*GridColumns + col
}
