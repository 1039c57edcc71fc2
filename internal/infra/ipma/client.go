package ipma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/surf-report/internal/domain/forecast"
)

const defaultURLTemplate = "https://api.ipma.pt/open-data/forecast/oceanography/daily/hp-daily-sea-forecast-day{day}.json"

// Client fetches daily sea forecasts from the IPMA open data API.
type Client struct {
	urlTemplate string
	apiKey      string
	httpClient  *http.Client
}

// NewClient builds an API client. urlTemplate must contain a {day} placeholder.
func NewClient(urlTemplate, apiKey string) *Client {
	tmpl := strings.TrimSpace(urlTemplate)
	if tmpl == "" {
		tmpl = defaultURLTemplate
	}
	return &Client{
		urlTemplate: tmpl,
		apiKey:      apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchDay retrieves the forecast document for a day offset (1 = tomorrow in IPMA terms).
func (c *Client) FetchDay(ctx context.Context, offset int) (forecast.DailyPayload, error) {
	endpoint := strings.ReplaceAll(c.urlTemplate, "{day}", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return forecast.DailyPayload{}, fmt.Errorf("build forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return forecast.DailyPayload{}, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return forecast.DailyPayload{}, fmt.Errorf("forecast request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return forecast.DailyPayload{}, fmt.Errorf("read forecast response: %w", err)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return forecast.DailyPayload{}, fmt.Errorf("decode forecast response: %w", err)
	}
	return raw.toPayload(), nil
}

type apiResponse struct {
	Owner        string      `json:"owner"`
	Country      string      `json:"country"`
	ForecastDate string      `json:"forecastDate"`
	DataUpdate   string      `json:"dataUpdate"`
	Data         []apiRecord `json:"data"`
}

type apiRecord struct {
	GlobalIDLocal int        `json:"globalIdLocal"`
	WaveHighMin   textNumber `json:"waveHighMin"`
	WaveHighMax   textNumber `json:"waveHighMax"`
	WavePeriodMin textNumber `json:"wavePeriodMin"`
	WavePeriodMax textNumber `json:"wavePeriodMax"`
	PredWaveDir   string     `json:"predWaveDir"`
	SSTMin        textNumber `json:"sstMin"`
	SSTMax        textNumber `json:"sstMax"`
}

func (r apiResponse) toPayload() forecast.DailyPayload {
	locations := make([]forecast.LocationRecord, 0, len(r.Data))
	for _, rec := range r.Data {
		locations = append(locations, forecast.LocationRecord{
			GlobalIDLocal: rec.GlobalIDLocal,
			WaveHighMin:   string(rec.WaveHighMin),
			WaveHighMax:   string(rec.WaveHighMax),
			WavePeriodMin: string(rec.WavePeriodMin),
			WavePeriodMax: string(rec.WavePeriodMax),
			PredWaveDir:   rec.PredWaveDir,
			SSTMin:        string(rec.SSTMin),
			SSTMax:        string(rec.SSTMax),
		})
	}
	return forecast.DailyPayload{
		ForecastDate: r.ForecastDate,
		Locations:    locations,
	}
}

// textNumber accepts IPMA's quoted decimals as well as bare JSON numbers.
type textNumber string

func (n *textNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = textNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return err
	}
	*n = textNumber(num.String())
	return nil
}

var _ forecast.Fetcher = (*Client)(nil)
