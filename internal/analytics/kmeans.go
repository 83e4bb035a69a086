package analytics

import (
	"math"
	"math/rand"
)

const kmeansMaxIterations = 50

// clusterVectors runs plain k-means over the vectors and returns the cluster
// assignment for each input, in order. k is clamped to the number of vectors.
func clusterVectors(vectors [][]float32, k int, seed int64) []int {
	if len(vectors) == 0 || k <= 0 {
		return nil
	}
	if k > len(vectors) {
		k = len(vectors)
	}

	rng := rand.New(rand.NewSource(seed))
	dim := len(vectors[0])

	// Seed centroids from distinct input vectors.
	centroids := make([][]float32, k)
	for i, idx := range rng.Perm(len(vectors))[:k] {
		centroids[i] = append([]float32(nil), vectors[idx]...)
	}

	assignments := make([]int, len(vectors))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best, bestDist := 0, math.MaxFloat64
			for c, centroid := range centroids {
				if d := squaredDistance(v, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for i, v := range vectors {
			c := assignments[i]
			counts[c]++
			for j, x := range v {
				sums[c][j] += float64(x)
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = float32(sums[c][j] / float64(counts[c]))
			}
		}
	}

	return assignments
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
