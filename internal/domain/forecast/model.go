package forecast

import "time"

// DayForecast is one day of ocean conditions for the configured coastal location.
type DayForecast struct {
	Date                 string  `json:"date"`
	DayName              string  `json:"dayName"`
	SwellHeightMin       float64 `json:"swellHeightMin"`
	SwellHeightMax       float64 `json:"swellHeightMax"`
	SwellPeriodMin       float64 `json:"swellPeriodMin"`
	SwellPeriodMax       float64 `json:"swellPeriodMax"`
	PrimaryWaveDirection string  `json:"primaryWaveDirection"`
	SeaSurfaceTempMin    float64 `json:"seaSurfaceTempMin"`
	SeaSurfaceTempMax    float64 `json:"seaSurfaceTempMax"`
}

// WeekendForecast maps lowercase weekday names to forecasts, keeping insertion order.
type WeekendForecast struct {
	days []DayForecast
}

// Put stores a forecast under its weekday name. A repeated weekday replaces the
// earlier entry without moving it.
func (w *WeekendForecast) Put(day DayForecast) {
	for i := range w.days {
		if w.days[i].DayName == day.DayName {
			w.days[i] = day
			return
		}
	}
	w.days = append(w.days, day)
}

// Get looks a forecast up by lowercase weekday name.
func (w WeekendForecast) Get(dayName string) (DayForecast, bool) {
	for _, d := range w.days {
		if d.DayName == dayName {
			return d, true
		}
	}
	return DayForecast{}, false
}

// Days returns the entries in insertion order.
func (w WeekendForecast) Days() []DayForecast {
	out := make([]DayForecast, len(w.days))
	copy(out, w.days)
	return out
}

// Len reports how many days are present.
func (w WeekendForecast) Len() int {
	return len(w.days)
}

// NewWeekendForecast builds a mapping from days in the given order.
func NewWeekendForecast(days ...DayForecast) WeekendForecast {
	var w WeekendForecast
	for _, d := range days {
		w.Put(d)
	}
	return w
}

// DailyPayload is the provider's per-day document: a forecast date and one
// record per coastal location.
type DailyPayload struct {
	ForecastDate string
	Locations    []LocationRecord
}

// LocationRecord keeps the provider field names; numeric values arrive as text.
type LocationRecord struct {
	GlobalIDLocal int
	WaveHighMin   string
	WaveHighMax   string
	WavePeriodMin string
	WavePeriodMax string
	PredWaveDir   string
	SSTMin        string
	SSTMax        string
}

// Config wires runtime settings for the forecast domain.
type Config struct {
	LocationID int
	DayOffsets []int
	CacheTTL   time.Duration
	Timeout    time.Duration
}
