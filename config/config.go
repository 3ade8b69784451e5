package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const DefaultStatusPath = "/api/check-connectivity"

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type StatusConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Path    string `mapstructure:"path"`
	Timeout string `mapstructure:"timeout"`
}

type PollerConfig struct {
	Interval string `mapstructure:"interval"`
}

type RefreshConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
}

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Status   StatusConfig    `mapstructure:"status"`
	Poller   PollerConfig    `mapstructure:"poller"`
	Refresh  RefreshConfig   `mapstructure:"refresh"`
	Services []ServiceConfig `mapstructure:"services"`
}

// defaultServices mirrors the boat network the dashboard was first built for.
var defaultServices = []map[string]any{
	{"name": "Navigation", "display_name": "Navigation"},
	{"name": "Router", "display_name": "Router"},
	{"name": "AIS", "display_name": "AIS"},
	{"name": "SignalK", "display_name": "SignalK"},
	{"name": "InfluxDB", "display_name": "InfluxDB"},
	{"name": "Dashboard", "display_name": "Dashboard"},
	{"name": "SmartSolar", "display_name": "SmartSolar"},
}

// Loader reads configuration from defaults, a YAML file, environment
// variables and command line flags, in increasing order of precedence.
type Loader struct {
	v *viper.Viper
}

// Flags returns the command line flags understood by NewLoader.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("statusboard", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (default ./config/config.yaml or ./config.yaml)")
	fs.String("address", "", "address the page is served on")
	fs.String("status-url", "", "base URL of the connectivity status endpoint")
	fs.String("interval", "", "automatic refresh interval")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	return fs
}

// NewLoader prepares a viper instance with defaults and binds flags when
// fs is non-nil. fs is expected to be parsed already.
func NewLoader(fs *pflag.FlagSet) (*Loader, error) {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("status.base_url", "http://localhost:8000")
	v.SetDefault("status.path", DefaultStatusPath)
	v.SetDefault("status.timeout", "0s")
	v.SetDefault("poller.interval", "30s")
	v.SetDefault("refresh.rate", 1.0)
	v.SetDefault("refresh.burst", 5)
	v.SetDefault("services", defaultServices)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if fs != nil {
		bindings := map[string]string{
			"server.address":  "address",
			"status.base_url": "status-url",
			"poller.interval": "interval",
			"logging.level":   "log-level",
		}
		for key, name := range bindings {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}

		if path, err := fs.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
		}
	}

	return &Loader{v: v}, nil
}

// Load reads the config file if one exists and returns the validated result.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", l.v.ConfigFileUsed()))
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// Load builds a loader without flags and loads the configuration.
func Load() (*Config, error) {
	l, err := NewLoader(nil)
	if err != nil {
		return nil, err
	}
	return l.Load()
}

// PollInterval returns the parsed automatic refresh interval.
func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Poller.Interval)
	return d
}

// StatusTimeout returns the parsed client timeout. Zero leaves the
// transport defaults in charge.
func (c *Config) StatusTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Status.Timeout)
	return d
}

// StatusURL joins the base URL and the endpoint path.
func (c *Config) StatusURL() string {
	return strings.TrimRight(c.Status.BaseURL, "/") + "/" + strings.TrimLeft(c.Status.Path, "/")
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Status,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(StatusConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a StatusConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.BaseURL,
						validation.Required,
						validation.By(validateServerURL),
					),
					validation.Field(&sc.Path,
						validation.Required,
						validation.By(validatePath),
					),
					validation.Field(&sc.Timeout,
						validation.By(validateOptionalDuration),
					),
				)
			}),
		),
		validation.Field(&c.Poller,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PollerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PollerConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Refresh,
			validation.Required,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RefreshConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RefreshConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Rate,
						validation.Required,
						validation.Min(0.01),
					),
					validation.Field(&rc.Burst,
						validation.Required,
						validation.Min(1),
					),
				)
			}),
		),
		validation.Field(&c.Services,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateServiceConfig)),
			validation.By(validateUniqueServices),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_non_positive_duration", "must be greater than zero")
	}

	return nil
}

func validateOptionalDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if durationStr == "" {
		return nil
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "cannot be negative")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if serverURL == "" {
		return validation.NewError("validation_empty_url", "server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validatePath(value interface{}) error {
	path, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(path, "/") {
		return validation.NewError("validation_invalid_path", "path must start with /")
	}

	return nil
}

func validateServiceConfig(value interface{}) error {
	service, ok := value.(ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a ServiceConfig")
	}

	if strings.TrimSpace(service.Name) == "" {
		return validation.NewError("validation_empty_name", "service name cannot be empty")
	}

	if strings.ContainsAny(service.Name, "\"<>") {
		return validation.NewError("validation_invalid_name", "service name cannot contain quotes or angle brackets")
	}

	return nil
}

func validateUniqueServices(value interface{}) error {
	services, ok := value.([]ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of ServiceConfig")
	}

	seen := make(map[string]struct{}, len(services))
	for _, s := range services {
		if _, dup := seen[s.Name]; dup {
			return validation.NewError("validation_duplicate_service", "service names must be unique: "+s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	return nil
}
