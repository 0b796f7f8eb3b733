package distance

import "math"

// PopularityScore rewards review volume without letting it dominate rating.
// With no reviews the rating is returned unchanged.
func PopularityScore(rating float64, reviewCount int) float64 {
	if reviewCount <= 0 {
		return rating
	}
	return rating * math.Log10(float64(reviewCount)+1)
}
