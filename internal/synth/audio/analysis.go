package audio

import "math"

// Goertzel returns the normalized power of freq in samples. A full-scale
// sine at exactly freq yields roughly 0.25; silence yields 0.
func Goertzel(samples []float64, rate int, freq float64) float64 {
	n := len(samples)
	if n == 0 || rate <= 0 {
		return 0
	}
	k := math.Round(float64(n) * freq / float64(rate))
	omega := 2 * math.Pi * k / float64(n)
	coeff := 2 * math.Cos(omega)
	var s1, s2 float64
	for _, x := range samples {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / (float64(n) * float64(n))
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Dominant returns the candidate frequency with the most power in samples
// together with that power.
func Dominant(samples []float64, rate int, candidates []float64) (float64, float64) {
	var best, bestPower float64
	for _, f := range candidates {
		if p := Goertzel(samples, rate, f); p > bestPower {
			best, bestPower = f, p
		}
	}
	return best, bestPower
}
