package spectrum

import (
	"math"
	"math/bits"
)

// FFT performs an in-place radix-2 decimation-in-time Cooley-Tukey transform
// of the complex sequence (re, im). No scaling is applied.
//
// The recursive even/odd split is flattened into a bit-reversal permutation
// followed by log2(n) butterfly passes, so no scratch memory is needed.
// len(re) must equal len(im) and be a power of two.
func FFT(re, im []float64) {
	n := len(re)
	if len(im) != n {
		panic("spectrum: real and imaginary parts differ in length")
	}
	if n == 0 || n&(n-1) != 0 {
		panic("spectrum: FFT length must be a power of two")
	}
	if n == 1 {
		return
	}

	permute(re, im)

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2 * math.Pi / float64(size)
		for k := 0; k < half; k++ {
			sin, cos := math.Sincos(step * float64(k))
			for even := k; even < n; even += size {
				odd := even + half
				tr := cos*re[odd] - sin*im[odd]
				ti := sin*re[odd] + cos*im[odd]
				re[odd] = re[even] - tr
				im[odd] = im[even] - ti
				re[even] += tr
				im[even] += ti
			}
		}
	}
}

// permute reorders (re, im) into bit-reversed index order.
func permute(re, im []float64) {
	shift := bits.UintSize - bits.TrailingZeros(uint(len(re)))
	for i := range re {
		j := int(bits.Reverse(uint(i)) >> shift)
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}
