package audio

import "math"

const fullScale = 32768.0

// Level returns the RMS of samples normalized to [0, 1].
// Empty input yields 0. The result is clamped because -32768 normalizes
// to exactly -1 while +32767 stays below 1.
func Level(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sumSquares float64
	for _, s := range samples {
		v := float64(s) / fullScale
		sumSquares += v * v
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))
	return math.Min(1, rms)
}
