package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/spots"
)

const (
	rolePreamble = "You are a professional surf reporter tasked with creating a cohesive weekend surf report."

	requirements = "Using the above data, please write a 300-400 word surf report that:\n" +
		"- Explains the forecasted conditions (e.g., wave heights, water temperatures, and tide timings)\n" +
		"- Integrates each spot's features (surf level, crowd factor, etc.) with the forecast\n" +
		"- Provides recommendations for surfers of various skill levels\n" +
		"- Uses smooth transitions to connect the forecast with spot details\n\n" +
		"Pay close attention to faithfulness, answer relevancy, and context relevancy.\n\n" +
		"Pay close attention to the user's query and preferences so the report feels personal to them."

	tideNotSpecified = "Not specified"
)

// weekendDays are looked up by name for the per-spot lines.
var weekendDays = []string{"saturday", "sunday"}

var tideKeywords = []struct {
	phrase string
	label  string
}{
	{"low tide", "Low"},
	{"mid tide", "Mid"},
	{"high tide", "High"},
}

// BuildPrompt assembles the instruction text sent to the generation model.
func BuildPrompt(spotList []spots.SpotRecord, weekend forecast.WeekendForecast, query string, previewChars int) string {
	var b strings.Builder
	b.WriteString(rolePreamble)
	b.WriteString("\n\n")
	b.WriteString(formatForecast(weekend))
	b.WriteString("\n")
	b.WriteString(formatSpots(spotList, weekend, previewChars))
	b.WriteString("\n\n")
	b.WriteString(requirements)
	b.WriteString("\n\nUser Query: ")
	b.WriteString(query)
	return b.String()
}

// formatForecast renders every present day in mapping order.
func formatForecast(weekend forecast.WeekendForecast) string {
	var b strings.Builder
	b.WriteString("General Forecast Overview:\n")
	for _, d := range weekend.Days() {
		fmt.Fprintf(&b, "%s:\n", spots.Canonicalize(d.DayName))
		fmt.Fprintf(&b, "- Wave Height: %s-%sm\n", formatFloat(d.SwellHeightMin), formatFloat(d.SwellHeightMax))
		fmt.Fprintf(&b, "- Swell Period: %s-%ss\n", formatFloat(d.SwellPeriodMin), formatFloat(d.SwellPeriodMax))
		fmt.Fprintf(&b, "- Swell Direction: %s\n", d.PrimaryWaveDirection)
		fmt.Fprintf(&b, "- Water Temp: %s-%s°C\n\n", formatFloat(d.SeaSurfaceTempMin), formatFloat(d.SeaSurfaceTempMax))
	}
	return b.String()
}

func formatSpots(spotList []spots.SpotRecord, weekend forecast.WeekendForecast, previewChars int) string {
	var b strings.Builder
	b.WriteString("Surf Spot Details:\n")
	for _, s := range spotList {
		b.WriteString(formatSpot(s, weekend, previewChars))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func formatSpot(s spots.SpotRecord, weekend forecast.WeekendForecast, previewChars int) string {
	return fmt.Sprintf("Spot: %s\nDescription: %s...\nSurf Level: %s\nCrowd Factor: %s\nWave Size: %s\nWater Temp: %s\nBest Tide: %s",
		s.Name,
		preview(s.Description, previewChars),
		s.SurfLevel,
		s.CrowdFactor,
		waveSize(weekend),
		waterTemp(weekend),
		ExtractTide(s.Description),
	)
}

// waveSize reports the location-wide forecast, identical for every spot.
func waveSize(weekend forecast.WeekendForecast) string {
	var sizes []string
	for _, name := range weekendDays {
		d, ok := weekend.Get(name)
		if !ok {
			continue
		}
		sizes = append(sizes, fmt.Sprintf("%s: %s-%sm", spots.Canonicalize(name), formatFloat(d.SwellHeightMin), formatFloat(d.SwellHeightMax)))
	}
	return strings.Join(sizes, " | ")
}

// waterTemp deduplicates and lexically sorts the weekend temperature ranges.
func waterTemp(weekend forecast.WeekendForecast) string {
	seen := make(map[string]struct{})
	var temps []string
	for _, name := range weekendDays {
		d, ok := weekend.Get(name)
		if !ok {
			continue
		}
		t := fmt.Sprintf("%s-%s°C", formatFloat(d.SeaSurfaceTempMin), formatFloat(d.SeaSurfaceTempMax))
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		temps = append(temps, t)
	}
	sort.Strings(temps)
	return strings.Join(temps, "/")
}

// ExtractTide finds the literal phrases "low tide", "mid tide" and "high tide".
// Variants such as "mid-tide" are not recognised.
func ExtractTide(description string) string {
	lower := strings.ToLower(description)
	var found []string
	for _, kw := range tideKeywords {
		if strings.Contains(lower, kw.phrase) {
			found = append(found, kw.label)
		}
	}
	if len(found) == 0 {
		return tideNotSpecified
	}
	sort.Strings(found)
	return strings.Join(found, ", ")
}

// formatFloat always keeps a fractional part: 2 renders as "2.0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}

func preview(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
