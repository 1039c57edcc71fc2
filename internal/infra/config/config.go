package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service. It is built
// once by Load and treated as read-only afterwards.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Credentials CredentialsConfig `yaml:"credentials"`
	SpotIndex   SpotIndexConfig   `yaml:"spotIndex"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Forecast    ForecastConfig    `yaml:"forecast"`
	Report      ReportConfig      `yaml:"report"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CredentialsConfig holds the four secrets the service cannot start without.
type CredentialsConfig struct {
	// VectorStore is the Postgres DSN of the pgvector spot index.
	VectorStore string `yaml:"vectorStore"`
	Weather     string `yaml:"weather"`
	OpenAI      string `yaml:"openai"`
	Google      string `yaml:"google"`
}

// SpotIndexConfig selects and tunes the vector index.
type SpotIndexConfig struct {
	Driver    string `yaml:"driver"`
	Table     string `yaml:"table"`
	Dimension int    `yaml:"dimension"`
	MaxConns  int32  `yaml:"maxConns"`
	MinConns  int32  `yaml:"minConns"`
}

// EmbeddingConfig selects the provider used to embed queries and catalog descriptions.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	OpenAIBaseURL string `yaml:"openaiBaseUrl"`
	GoogleBaseURL string `yaml:"googleBaseUrl"`
}

// ForecastConfig points at the marine forecast provider.
type ForecastConfig struct {
	URLTemplate string        `yaml:"urlTemplate"`
	LocationID  int           `yaml:"locationId"`
	DayOffsets  []int         `yaml:"dayOffsets"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
	Valkey      ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ReportConfig controls the report composer.
type ReportConfig struct {
	DefaultModel       string  `yaml:"defaultModel"`
	DefaultTemperature float64 `yaml:"defaultTemperature"`
	DefaultTopK        int     `yaml:"defaultTopK"`
	MaxOutputTokens    int     `yaml:"maxOutputTokens"`
	PreviewChars       int     `yaml:"previewChars"`
	TokenEncoding      string  `yaml:"tokenEncoding"`
	OpenAIBaseURL      string  `yaml:"openaiBaseUrl"`
	GoogleBaseURL      string  `yaml:"googleBaseUrl"`
}

// CatalogConfig describes where the enriched spot catalog lives.
type CatalogConfig struct {
	Source      string              `yaml:"source"`
	Path        string              `yaml:"path"`
	SeedOnStart bool                `yaml:"seedOnStart"`
	BatchSize   int                 `yaml:"batchSize"`
	Object      ObjectStorageConfig `yaml:"object"`
}

// ObjectStorageConfig configures the S3 compatible catalog bucket.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// TimeoutConfig bounds every outbound call.
type TimeoutConfig struct {
	Embedding    time.Duration `yaml:"embedding"`
	VectorSearch time.Duration `yaml:"vectorSearch"`
	Forecast     time.Duration `yaml:"forecast"`
	Generation   time.Duration `yaml:"generation"`
}

// Load reads configuration from a .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv never overrides variables that are already present in the environment.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv %s: %w", path, err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.Credentials.VectorStore, "VECTOR_STORE_DSN")
	setString(&cfg.Credentials.Weather, "IPMA_API_KEY")
	setString(&cfg.Credentials.OpenAI, "OPENAI_API_KEY")
	setString(&cfg.Credentials.Google, "GOOGLE_API_KEY")

	setString(&cfg.SpotIndex.Driver, "SPOT_INDEX_DRIVER")
	setString(&cfg.SpotIndex.Table, "SPOT_INDEX_TABLE")
	setInt(&cfg.SpotIndex.Dimension, "SPOT_INDEX_DIMENSION")
	if v := os.Getenv("SPOT_INDEX_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.SpotIndex.MaxConns = int32(parsed)
		}
	}

	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")

	setString(&cfg.Forecast.URLTemplate, "FORECAST_URL_TEMPLATE")
	setInt(&cfg.Forecast.LocationID, "FORECAST_LOCATION_ID")
	setDuration(&cfg.Forecast.CacheTTL, "FORECAST_CACHE_TTL")
	setBool(&cfg.Forecast.Valkey.Enabled, "FORECAST_VALKEY_ENABLED")
	setString(&cfg.Forecast.Valkey.Addr, "FORECAST_VALKEY_ADDR")

	setString(&cfg.Report.DefaultModel, "REPORT_DEFAULT_MODEL")
	if v := os.Getenv("REPORT_DEFAULT_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Report.DefaultTemperature = parsed
		}
	}
	setInt(&cfg.Report.MaxOutputTokens, "REPORT_MAX_OUTPUT_TOKENS")

	setString(&cfg.Catalog.Source, "CATALOG_SOURCE")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")
	setBool(&cfg.Catalog.SeedOnStart, "CATALOG_SEED_ON_START")
	setString(&cfg.Catalog.Object.Endpoint, "CATALOG_OBJECT_ENDPOINT")
	setString(&cfg.Catalog.Object.AccessKey, "CATALOG_OBJECT_ACCESS_KEY")
	setString(&cfg.Catalog.Object.SecretKey, "CATALOG_OBJECT_SECRET_KEY")
	setString(&cfg.Catalog.Object.Bucket, "CATALOG_OBJECT_BUCKET")
	setString(&cfg.Catalog.Object.Key, "CATALOG_OBJECT_KEY")

	setDuration(&cfg.Timeouts.Embedding, "TIMEOUT_EMBEDDING")
	setDuration(&cfg.Timeouts.VectorSearch, "TIMEOUT_VECTOR_SEARCH")
	setDuration(&cfg.Timeouts.Forecast, "TIMEOUT_FORECAST")
	setDuration(&cfg.Timeouts.Generation, "TIMEOUT_GENERATION")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 2,
				BaseBackoff: 250 * time.Millisecond,
				Exclude: []string{
					"/api/v1/reports",
				},
			},
		},
		SpotIndex: SpotIndexConfig{
			Driver:    "postgres",
			Table:     "surf_spots",
			Dimension: 3072,
			MaxConns:  4,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-large",
		},
		Forecast: ForecastConfig{
			URLTemplate: "https://api.ipma.pt/open-data/forecast/oceanography/daily/hp-daily-sea-forecast-day{day}.json",
			LocationID:  1111026,
			DayOffsets:  []int{1, 2},
			CacheTTL:    30 * time.Minute,
			Valkey: ValkeyConfig{
				Prefix: "surfreport:forecast",
			},
		},
		Report: ReportConfig{
			DefaultModel:       "gpt-4o",
			DefaultTemperature: 0.3,
			DefaultTopK:        3,
			MaxOutputTokens:    1500,
			PreviewChars:       200,
			TokenEncoding:      "o200k_base",
		},
		Catalog: CatalogConfig{
			Source:    "file",
			Path:      "data/surf_spots.json",
			BatchSize: 64,
		},
		Timeouts: TimeoutConfig{
			Embedding:    15 * time.Second,
			VectorSearch: 10 * time.Second,
			Forecast:     10 * time.Second,
			Generation:   60 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if err := c.Credentials.validate(); err != nil {
		return err
	}
	switch c.SpotIndex.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("spotIndex.driver %q is not supported", c.SpotIndex.Driver)
	}
	if c.SpotIndex.Dimension <= 0 {
		return errors.New("spotIndex.dimension must be positive")
	}
	if strings.TrimSpace(c.SpotIndex.Table) == "" {
		return errors.New("spotIndex.table cannot be empty")
	}
	switch c.Embedding.Provider {
	case "openai", "google":
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if strings.TrimSpace(c.Embedding.Model) == "" {
		return errors.New("embedding.model cannot be empty")
	}
	if err := c.Embedding.validateDimension(c.SpotIndex.Dimension); err != nil {
		return err
	}
	if !strings.Contains(c.Forecast.URLTemplate, "{day}") {
		return errors.New("forecast.urlTemplate must contain the {day} placeholder")
	}
	if len(c.Forecast.DayOffsets) == 0 {
		return errors.New("forecast.dayOffsets cannot be empty")
	}
	if c.Forecast.CacheTTL < 0 {
		return errors.New("forecast.cacheTtl cannot be negative")
	}
	if c.Forecast.Valkey.Enabled && strings.TrimSpace(c.Forecast.Valkey.Addr) == "" {
		return errors.New("forecast.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.Report.DefaultTemperature < 0 || c.Report.DefaultTemperature > 1 {
		return errors.New("report.defaultTemperature must be within [0,1]")
	}
	if c.Report.MaxOutputTokens <= 0 {
		return errors.New("report.maxOutputTokens must be positive")
	}
	if c.Report.DefaultTopK <= 0 {
		return errors.New("report.defaultTopK must be positive")
	}
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.SeedOnStart && strings.TrimSpace(c.Catalog.Path) == "" {
			return errors.New("catalog.path cannot be empty when seeding from a file")
		}
	case "object":
		if strings.TrimSpace(c.Catalog.Object.Bucket) == "" || strings.TrimSpace(c.Catalog.Object.Key) == "" {
			return errors.New("catalog.object.bucket and catalog.object.key are required for object sources")
		}
	default:
		return fmt.Errorf("catalog.source %q is not supported", c.Catalog.Source)
	}
	if c.Timeouts.Embedding <= 0 || c.Timeouts.VectorSearch <= 0 || c.Timeouts.Forecast <= 0 || c.Timeouts.Generation <= 0 {
		return errors.New("timeouts must all be positive")
	}
	if budget := c.ReportBudget(); c.HTTP.WriteTimeout > 0 && c.HTTP.WriteTimeout <= budget {
		return fmt.Errorf("http.writeTimeout %s must exceed the report call budget %s", c.HTTP.WriteTimeout, budget)
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

// ReportBudget is the worst-case time a report request spends on outbound calls:
// one embedding, one vector search, one forecast fetch per day and one generation.
func (c *Config) ReportBudget() time.Duration {
	return c.Timeouts.Embedding +
		c.Timeouts.VectorSearch +
		c.Timeouts.Forecast*time.Duration(len(c.Forecast.DayOffsets)) +
		c.Timeouts.Generation
}

type embeddingModel struct {
	provider    string
	dimension   int
	shortenable bool // accepts a smaller requested dimension
}

var knownEmbeddingModels = map[string]embeddingModel{
	"text-embedding-3-large":    {provider: "openai", dimension: 3072, shortenable: true},
	"text-embedding-3-small":    {provider: "openai", dimension: 1536, shortenable: true},
	"text-embedding-ada-002":    {provider: "openai", dimension: 1536},
	"models/embedding-001":      {provider: "google", dimension: 768},
	"models/text-embedding-004": {provider: "google", dimension: 768},
}

// validateDimension rejects known models whose vectors cannot fill the index column.
// Unknown models are checked at startup by embedding a sample text.
func (e EmbeddingConfig) validateDimension(indexDimension int) error {
	name := strings.TrimSpace(e.Model)
	model, ok := knownEmbeddingModels[name]
	if !ok {
		model, ok = knownEmbeddingModels["models/"+name]
	}
	if !ok {
		return nil
	}
	if model.provider != e.Provider {
		return fmt.Errorf("embedding.model %q is not a %s model", e.Model, e.Provider)
	}
	switch {
	case model.dimension == indexDimension:
		return nil
	case model.shortenable && indexDimension < model.dimension:
		return nil
	default:
		return fmt.Errorf("embedding.model %q produces %d dimensions, spotIndex.dimension is %d", e.Model, model.dimension, indexDimension)
	}
}

func (c CredentialsConfig) validate() error {
	var missing []string
	if strings.TrimSpace(c.VectorStore) == "" {
		missing = append(missing, "credentials.vectorStore (VECTOR_STORE_DSN)")
	}
	if strings.TrimSpace(c.Weather) == "" {
		missing = append(missing, "credentials.weather (IPMA_API_KEY)")
	}
	if strings.TrimSpace(c.OpenAI) == "" {
		missing = append(missing, "credentials.openai (OPENAI_API_KEY)")
	}
	if strings.TrimSpace(c.Google) == "" {
		missing = append(missing, "credentials.google (GOOGLE_API_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
