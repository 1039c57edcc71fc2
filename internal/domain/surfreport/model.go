package surfreport

import (
	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/pkg/metrics"
)

// Report statuses.
const (
	StatusOK          = "ok"
	StatusNoSpots     = "no_spots"
	StatusEmptyReport = "empty_report"
)

// Config holds request defaults.
type Config struct {
	DefaultTopK        int
	DefaultModel       string
	DefaultTemperature float64
}

// Request is the incoming report payload.
type Request struct {
	Query       string   `json:"query"`
	Direction   string   `json:"direction"`
	Bottom      string   `json:"bottom"`
	TopK        int      `json:"topK,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Response is returned by Generate.
type Response struct {
	Status     string                 `json:"status"`
	Report     string                 `json:"report"`
	Model      string                 `json:"model"`
	Spots      []spots.SpotRecord     `json:"spots"`
	Forecast   []forecast.DayForecast `json:"forecast"`
	DurationMs int64                  `json:"durationMs"`
	TokenUsage *metrics.TokenUsage    `json:"tokenUsage,omitempty"`
}
