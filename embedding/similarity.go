package embedding

import (
	"fmt"
	"math"
)

// SimilarityType represents the similarity metric TopKSimilar scores
// candidate vectors with.
type SimilarityType string

// SimilarityTypeEuclidean uses Euclidean distance (converted to
// similarity). It is the only metric Index ever builds or searches with.
const SimilarityTypeEuclidean SimilarityType = "euclidean"

// EuclideanDistance calculates the Euclidean distance between two vectors.
// Returns a non-negative value where 0 means identical vectors.
func EuclideanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have same length: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vectors must not be empty")
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// EuclideanSimilarity converts Euclidean distance to a similarity score.
// Returns a value between 0 and 1, where 1 means identical vectors.
func EuclideanSimilarity(a, b []float64) (float64, error) {
	dist, err := EuclideanDistance(a, b)
	if err != nil {
		return 0, err
	}
	// Convert distance to similarity: 1 / (1 + distance)
	return 1.0 / (1.0 + dist), nil
}

// Similarity calculates similarity between two vectors using the
// specified metric.
func Similarity(a, b []float64, simType SimilarityType) (float64, error) {
	switch simType {
	case SimilarityTypeEuclidean:
		return EuclideanSimilarity(a, b)
	default:
		return 0, fmt.Errorf("unsupported similarity type: %s", simType)
	}
}

// TopKSimilar finds the top K most similar vectors to a query vector.
// Returns indices and similarity scores sorted by similarity (descending).
func TopKSimilar(query []float64, vectors [][]float64, k int, simType SimilarityType) ([]int, []float64, error) {
	if k <= 0 {
		return nil, nil, fmt.Errorf("k must be positive")
	}
	if len(vectors) == 0 {
		return nil, nil, nil
	}
	if k > len(vectors) {
		k = len(vectors)
	}

	// Calculate all similarities
	type scoredIndex struct {
		index int
		score float64
	}
	scores := make([]scoredIndex, len(vectors))

	for i, v := range vectors {
		sim, err := Similarity(query, v, simType)
		if err != nil {
			return nil, nil, fmt.Errorf("error computing similarity for vector %d: %w", i, err)
		}
		scores[i] = scoredIndex{index: i, score: sim}
	}

	// Simple selection sort for top K (efficient for small K)
	for i := 0; i < k; i++ {
		maxIdx := i
		for j := i + 1; j < len(scores); j++ {
			if scores[j].score > scores[maxIdx].score {
				maxIdx = j
			}
		}
		scores[i], scores[maxIdx] = scores[maxIdx], scores[i]
	}

	// Extract top K results
	indices := make([]int, k)
	similarities := make([]float64, k)
	for i := 0; i < k; i++ {
		indices[i] = scores[i].index
		similarities[i] = scores[i].score
	}

	return indices, similarities, nil
}
