// Package similarity provides the cosine-similarity primitives shared by the
// simplification and retrieval pipelines.
package similarity

import (
	"math"
	"sort"
)

// Cosine calculates the cosine similarity between two float32 vectors.
// Returns 0 if vectors have different lengths, are empty, or either has zero
// magnitude; it never divides by zero and never produces NaN. The result is
// in the range [-1, 1].
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeRows returns unit-length float64 copies of the input rows.
// Zero-norm rows come back as nil, which downstream code treats as
// similarity 0 against everything.
func normalizeRows(vectors [][]float32) [][]float64 {
	normalized := make([][]float64, len(vectors))
	for i, v := range vectors {
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = float64(x) / norm
		}
		normalized[i] = row
	}
	return normalized
}

// Matrix computes the symmetric N x N cosine similarity matrix for the given
// vectors. Rows are normalized once up front, so the work is a single
// inner-product sweep over the upper triangle and rounding error stays
// bounded: the diagonal of any non-zero vector is exactly 1 and the matrix is
// exactly symmetric by construction.
func Matrix(vectors [][]float32) [][]float64 {
	n := len(vectors)
	normalized := normalizeRows(vectors)

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if normalized[i] == nil {
			continue
		}
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			if normalized[j] == nil || len(normalized[i]) != len(normalized[j]) {
				continue
			}
			var dot float64
			for k := range normalized[i] {
				dot += normalized[i][k] * normalized[j][k]
			}
			matrix[i][j] = dot
			matrix[j][i] = dot
		}
	}
	return matrix
}

// Pair is a strictly-upper-triangular similarity pair (I < J).
type Pair struct {
	I     int
	J     int
	Score float64
}

// SimilarPairs returns every pair (i, j) with i < j whose cosine similarity
// is strictly greater than the threshold, sorted by similarity descending.
// The descending order is load-bearing: the simplifier processes merges
// greedily in similarity order. Ties are broken by (I, J) ascending so the
// output is deterministic for a fixed input ordering.
func SimilarPairs(vectors [][]float32, threshold float64) []Pair {
	matrix := Matrix(vectors)
	var pairs []Pair
	for i := range matrix {
		for j := i + 1; j < len(matrix); j++ {
			if matrix[i][j] > threshold {
				pairs = append(pairs, Pair{I: i, J: j, Score: matrix[i][j]})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Score != pairs[b].Score {
			return pairs[a].Score > pairs[b].Score
		}
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs
}
