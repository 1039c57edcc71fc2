package report

import (
	"time"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/pkg/metrics"
)

// Config configures prompt rendering and generation defaults.
type Config struct {
	DefaultModel       string
	DefaultTemperature float64
	MaxOutputTokens    int
	PreviewChars       int
	Timeout            time.Duration
}

// Input is everything the composer needs for one report.
type Input struct {
	Spots    []spots.SpotRecord
	Forecast forecast.WeekendForecast
	Query    string
	Model    string
	// Temperature falls back to Config.DefaultTemperature when nil.
	Temperature *float64
}

// Output is the generated report.
type Output struct {
	Text         string             `json:"text"`
	Empty        bool               `json:"empty"`
	Model        string             `json:"model"`
	PromptTokens int                `json:"promptTokens"`
	TokenUsage   metrics.TokenUsage `json:"tokenUsage"`
}
