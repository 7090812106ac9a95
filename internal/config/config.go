package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Estrategias de obtención de la página del paradero
const (
	StrategyBrowser = "browser"
	StrategyHTTP    = "http"
)

// BrowserConfig agrupa las opciones de Chrome headless
type BrowserConfig struct {
	Headless       bool          `yaml:"headless"`
	Sandbox        bool          `yaml:"sandbox"`
	BinaryPath     string        `yaml:"binary_path"`
	SettleInterval time.Duration `yaml:"settle_interval" validate:"gte=0"`
	ReadyTimeout   time.Duration `yaml:"ready_timeout" validate:"gte=0"`
	UserAgent      string        `yaml:"user_agent"`
}

// Config contiene toda la configuración del servidor
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" validate:"required,numeric"`

	// ProviderBaseURL es el host de NextRide, sin el path /stops
	ProviderBaseURL string `yaml:"provider_base_url" validate:"required,url"`
	FetchStrategy   string `yaml:"fetch_strategy" validate:"oneof=browser http"`

	// DataPathTemplate es el path del endpoint JSON derivado del paradero,
	// con el placeholder {stop}. Vacío deshabilita la consulta secundaria.
	DataPathTemplate string `yaml:"data_path_template" validate:"omitempty,startswith=/,contains={stop}"`

	LoadingMarker  string        `yaml:"loading_marker" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	RetryNotReady  int           `yaml:"retry_not_ready" validate:"gte=0,lte=3"`
	RetryDelay     time.Duration `yaml:"retry_delay" validate:"gte=0"`

	Browser BrowserConfig `yaml:"browser"`

	AppVersion     string `yaml:"app_version"`
	DebugDashboard bool   `yaml:"debug_dashboard"`
}

// Default retorna la configuración usada cuando no hay archivo ni variables
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            "8000",
		ProviderBaseURL: "https://nextride.grt.ca",
		FetchStrategy:   StrategyBrowser,
		LoadingMarker:   "Loading",
		RequestTimeout:  15 * time.Second,
		RetryNotReady:   1,
		RetryDelay:      500 * time.Millisecond,
		Browser: BrowserConfig{
			Headless:       true,
			Sandbox:        false,
			SettleInterval: 2 * time.Second,
			ReadyTimeout:   5 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		AppVersion: "1.0.0",
	}
}

// Load arma la configuración en tres capas: valores por defecto, archivo YAML
// opcional (CONFIG_FILE) y variables de entorno. El .env lo carga main con godotenv.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate revisa los campos con go-playground/validator
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Addr retorna host:port para Listen
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = envString("HOST", c.Host)
	c.Port = envString("PORT", c.Port)
	c.ProviderBaseURL = strings.TrimRight(envString("PROVIDER_BASE_URL", c.ProviderBaseURL), "/")
	c.FetchStrategy = strings.ToLower(envString("FETCH_STRATEGY", c.FetchStrategy))
	c.DataPathTemplate = envString("DATA_PATH_TEMPLATE", c.DataPathTemplate)
	c.LoadingMarker = envString("LOADING_MARKER", c.LoadingMarker)
	c.AppVersion = envString("APP_VERSION", c.AppVersion)
	c.Browser.BinaryPath = envString("CHROME_PATH", c.Browser.BinaryPath)
	c.Browser.UserAgent = envString("USER_AGENT", c.Browser.UserAgent)

	var err error
	if c.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.RetryDelay, err = envDuration("RETRY_DELAY", c.RetryDelay); err != nil {
		return err
	}
	if c.Browser.SettleInterval, err = envDuration("SETTLE_INTERVAL", c.Browser.SettleInterval); err != nil {
		return err
	}
	if c.Browser.ReadyTimeout, err = envDuration("READY_TIMEOUT", c.Browser.ReadyTimeout); err != nil {
		return err
	}
	if c.RetryNotReady, err = envInt("RETRY_NOT_READY", c.RetryNotReady); err != nil {
		return err
	}
	if c.Browser.Headless, err = envBool("CHROME_HEADLESS", c.Browser.Headless); err != nil {
		return err
	}
	if c.Browser.Sandbox, err = envBool("CHROME_SANDBOX", c.Browser.Sandbox); err != nil {
		return err
	}
	if c.DebugDashboard, err = envBool("DEBUG_DASHBOARD", c.DebugDashboard); err != nil {
		return err
	}
	return nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be a duration like 2s", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", key)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "%s must be true or false", key)
	}
	return b, nil
}
