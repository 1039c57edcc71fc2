package catalog

import (
	"fmt"
	"math"
)

var (
	ratingWords = map[int]string{
		1: "Very low",
		2: "Low",
		3: "Moderate",
		4: "High",
		5: "Very high",
	}

	surfLevels = []string{
		"beginner", "beginner-intermediate", "intermediate",
		"intermediate-advanced", "advanced", "advanced-pro", "pro", "expert-pro",
	}

	tidePhases = []string{"low tide", "mid-low tide", "mid tide", "mid-high tide", "high tide"}
)

// StarRatings is the sentence form of the three star ratings.
type StarRatings struct {
	Consistency string
	CrowdFactor string
	Localism    string
}

// DescribeStarRatings turns 1-5 star values into words. Missing or out of range
// values read "No data".
func DescribeStarRatings(ratings map[string]int) StarRatings {
	word := func(key string) string {
		if w, ok := ratingWords[ratings[key]]; ok {
			return w
		}
		return "No data"
	}
	return StarRatings{
		Consistency: word("Consistency") + " consistency",
		CrowdFactor: word("Crowd Factor") + " crowd factor",
		Localism:    word("Localism") + " sense of localism",
	}
}

// DescribeSurfLevel summarizes the eight surf level boxes; "dark" marks a suitable level.
func DescribeSurfLevel(boxes []string) string {
	if len(boxes) != len(surfLevels) {
		return "Invalid Surf Level data format."
	}
	dark := darkIndices(boxes)
	if len(dark) == 0 {
		return "Not suitable for any surf level."
	}
	lo, hi, center := spread(dark)
	switch {
	case len(dark) == len(boxes):
		return "suitable for all surf levels"
	case hi-lo <= 2:
		return "best suited for " + surfLevels[int(math.RoundToEven(center))]
	default:
		return fmt.Sprintf("most suitable from %s to %s", surfLevels[lo], surfLevels[hi])
	}
}

// DescribeTide summarizes the tide boxes, scaling the centre onto five phases.
func DescribeTide(boxes []string) string {
	dark := darkIndices(boxes)
	if len(dark) == 0 {
		return "This spot is not ideal for surfing."
	}
	lo, hi, center := spread(dark)
	switch {
	case hi-lo <= 1:
		scaled := center
		if len(boxes) > 1 {
			scaled = center * float64(len(tidePhases)-1) / float64(len(boxes)-1)
		}
		return "best surfable during " + tidePhases[clamp(int(math.RoundToEven(scaled)), len(tidePhases))]
	case hi-lo <= 3:
		return fmt.Sprintf("surfable from %s to %s", tidePhases[clamp(lo, len(tidePhases))], tidePhases[clamp(hi, len(tidePhases))])
	default:
		return "surfable across most tide levels"
	}
}

// Enrich appends the rating, surf level and tide sentences to the description.
func Enrich(d Details) string {
	consistency := "No consistency information"
	crowd := "No crowd factor information"
	localism := "No localism information"
	if d.StarRatings != nil {
		r := DescribeStarRatings(d.StarRatings)
		consistency, crowd, localism = r.Consistency, r.CrowdFactor, r.Localism
	}
	surfLevel := "No surf level description available."
	if d.SurfLevelBoxColors != nil {
		surfLevel = DescribeSurfLevel(d.SurfLevelBoxColors)
	}
	tide := "No tide description available."
	if d.BestTideBoxColors != nil {
		tide = DescribeTide(d.BestTideBoxColors)
	}
	return fmt.Sprintf("%s\n\nThe spot has %s, %s, and %s.\nSurf level: %s\nTide information: %s",
		d.SpotDescription, consistency, crowd, localism, surfLevel, tide)
}

// needsEnrichment reports whether raw box or rating data is present.
func needsEnrichment(d Details) bool {
	return d.StarRatings != nil || d.SurfLevelBoxColors != nil || d.BestTideBoxColors != nil
}

func darkIndices(boxes []string) []int {
	var out []int
	for i, v := range boxes {
		if v == "dark" {
			out = append(out, i)
		}
	}
	return out
}

func spread(indices []int) (lo, hi int, center float64) {
	lo, hi = indices[0], indices[0]
	sum := 0
	for _, i := range indices {
		if i < lo {
			lo = i
		}
		if i > hi {
			hi = i
		}
		sum += i
	}
	return lo, hi, float64(sum) / float64(len(indices))
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
