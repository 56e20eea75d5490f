package app

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	WMSAPIURL     string        `envconfig:"WMS_API_URL" required:"true"`
	WMSAPIToken   string        `envconfig:"WMS_API_TOKEN"`
	WMSAPITimeout time.Duration `envconfig:"WMS_API_TIMEOUT" default:"15s"`

	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`

	DraftIdleTTL       time.Duration `envconfig:"DRAFT_IDLE_TTL" default:"2h"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	CatalogWarmupCron  string        `envconfig:"CATALOG_WARMUP_CRON" default:"*/15 * * * *"`

	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.WMSAPIURL) == "" {
		return nil, errors.New("wms api url must be provided")
	}
	if u, err := url.Parse(cfg.WMSAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("wms api url must be absolute")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
