package sample

// Decimate reduces src to at most maxPoints evenly strided entries for
// drawing, reusing dst's backing array when it is large enough. When the
// trace is longer than the budget, the first and last entries are always
// kept so the newest value is never dropped from the plot.
func Decimate[T any](dst, src []T, maxPoints int) []T {
	if maxPoints <= 0 {
		return dst[:0]
	}

	if len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
		} else {
			dst = make([]T, len(src))
		}
		copy(dst, src)
		return dst
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	if maxPoints == 1 {
		return append(dst, src[len(src)-1])
	}

	stride := float64(len(src)-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints-1; i++ {
		dst = append(dst, src[int(float64(i)*stride)])
	}
	return append(dst, src[len(src)-1])
}

// DownsampleSamples decimates a sample trace to the scope's point budget.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	return Decimate(dst, samples, maxPoints)
}

// DownsampleDerivatives decimates a speed trace to the scope's point budget.
func DownsampleDerivatives(dst []float64, derivatives []float64, maxPoints int) []float64 {
	return Decimate(dst, derivatives, maxPoints)
}
