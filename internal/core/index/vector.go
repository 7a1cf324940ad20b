package index

import "math"

// Cosine computes the cosine similarity between two vectors of equal
// length, in [-1, 1]. Zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Mean computes the element-wise mean of the given vectors.
// All vectors must share the same length. Returns nil for empty input.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range v {
			out[i] += float64(v[i])
		}
	}
	mean := make([]float32, len(out))
	n := float64(len(vectors))
	for i := range out {
		mean[i] = float32(out[i] / n)
	}
	return mean
}
