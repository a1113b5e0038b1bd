// Package config loads the configuration of the apistore server from a
// config file, APISTORE_* environment variables and command line flags.
package config

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bluescreen10/apistore/cookiestore"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "APISTORE"

var (
	ErrInvalidSameSite  = errors.New("invalid cookie same_site")
	ErrInvalidLogFormat = errors.New("invalid log_format")
)

// Config is the server configuration.
type Config struct {
	ListenAddress string `mapstructure:"listen_address"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	Cookie        Cookie `mapstructure:"cookie"`
}

// Cookie holds the attributes of the cookies written by the cookie storage.
type Cookie struct {
	Path          string        `mapstructure:"path"`
	Domain        string        `mapstructure:"domain"`
	Secure        bool          `mapstructure:"secure"`
	HttpOnly      bool          `mapstructure:"http_only"`
	SameSite      string        `mapstructure:"same_site"`
	Partitioned   bool          `mapstructure:"partitioned"`
	Lifetime      time.Duration `mapstructure:"lifetime"`
	ExpiredOffset time.Duration `mapstructure:"expired_offset"`
}

// SetDefaults registers the default of every key on v. Keys need a default
// for environment variables to be picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", "localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cookie.path", "/")
	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cookie.http_only", true)
	v.SetDefault("cookie.same_site", "lax")
	v.SetDefault("cookie.partitioned", false)
	v.SetDefault("cookie.lifetime", time.Duration(0))
	v.SetDefault("cookie.expired_offset", cookiestore.DefaultExpiredOffset)
}

// Load reads the configuration into a Config. cfgFile is optional.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Cookie.sameSite(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Wrap(ErrInvalidLogFormat, c.LogFormat)
	}

	return nil
}

func (c Cookie) sameSite() (http.SameSite, error) {
	switch strings.ToLower(c.SameSite) {
	case "", "default":
		return http.SameSiteDefaultMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, errors.Wrap(ErrInvalidSameSite, c.SameSite)
	}
}

// Options returns the cookie storage options for c.
func (c Cookie) Options(logger logrus.FieldLogger, reg prometheus.Registerer) []cookiestore.Option {
	sameSite, _ := c.sameSite()

	return []cookiestore.Option{
		cookiestore.WithPath(c.Path),
		cookiestore.WithDomain(c.Domain),
		cookiestore.WithSecure(c.Secure),
		cookiestore.WithHttpOnly(c.HttpOnly),
		cookiestore.WithSameSite(sameSite),
		cookiestore.WithPartitioned(c.Partitioned),
		cookiestore.WithLifetime(c.Lifetime),
		cookiestore.WithExpiredOffset(c.ExpiredOffset),
		cookiestore.WithLogger(logger),
		cookiestore.WithMetrics(reg),
	}
}

// Logger returns a logrus logger writing to stderr with the configured
// level and format.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
