package spots

import (
	"regexp"
	"sort"
	"strings"
)

var (
	levelRangePattern = regexp.MustCompile(`(?:from|for|suitable for)\s+(\w+)(?:\s+to\s+|\s+-\s+)(\w+)`)

	levelKeywords = []struct {
		pattern *regexp.Regexp
		level   string
	}{
		{regexp.MustCompile(`\bbeginner\b`), "Beginner"},
		{regexp.MustCompile(`\bnovice\b`), "Beginner"},
		{regexp.MustCompile(`\bintermediate\b`), "Intermediate"},
		{regexp.MustCompile(`\badvanced\b`), "Advanced"},
		{regexp.MustCompile(`\bexpert\b`), "Expert"},
		{regexp.MustCompile(`\bpro\b`), "Expert"},
	}

	levelRank = map[string]int{
		"Beginner":     0,
		"Intermediate": 1,
		"Advanced":     2,
		"Expert":       3,
	}

	levelAliases = map[string]string{
		"beginner":     "Beginner",
		"novice":       "Beginner",
		"intermediate": "Intermediate",
		"advance":      "Advanced",
		"advanced":     "Advanced",
		"expert":       "Expert",
		"pro":          "Expert",
	}

	// checked in order, first hit wins
	crowdPatterns = []struct {
		level   string
		pattern *regexp.Regexp
	}{
		{"High", regexp.MustCompile(`(high|crowded|busy|very busy)\s+(crowd|people|surfers)`)},
		{"Medium", regexp.MustCompile(`(moderate|average|normal|regular)\s+(crowd|people|surfers)`)},
		{"Low", regexp.MustCompile(`(low|less|light|quiet|few)\s+(crowd|people|surfers)`)},
	}
)

// ExtractSurfLevel derives a skill label such as "Intermediate to Advanced" from free text.
func ExtractSurfLevel(description string) string {
	clean := strings.ToLower(description)
	clean = strings.ReplaceAll(clean, "-", " ")
	clean = strings.ReplaceAll(clean, "pro", "expert")

	if m := levelRangePattern.FindStringSubmatch(clean); m != nil {
		return StandardizeLevel(m[1]) + " to " + StandardizeLevel(m[2])
	}

	seen := make(map[string]struct{})
	var levels []string
	for _, kw := range levelKeywords {
		if !kw.pattern.MatchString(clean) {
			continue
		}
		if _, ok := seen[kw.level]; ok {
			continue
		}
		seen[kw.level] = struct{}{}
		levels = append(levels, kw.level)
	}
	if len(levels) == 0 {
		return NotSpecified
	}
	sort.Slice(levels, func(i, j int) bool {
		return levelRank[levels[i]] < levelRank[levels[j]]
	})
	return strings.Join(levels, " to ")
}

// StandardizeLevel maps a single level word onto the fixed skill vocabulary.
func StandardizeLevel(level string) string {
	if std, ok := levelAliases[strings.ToLower(strings.TrimSpace(level))]; ok {
		return std
	}
	return NotSpecified
}

// ExtractCrowdLevel returns High, Medium, Low or Not Specified.
func ExtractCrowdLevel(description string) string {
	clean := strings.ToLower(description)
	for _, p := range crowdPatterns {
		if p.pattern.MatchString(clean) {
			return p.level
		}
	}
	return NotSpecified
}
