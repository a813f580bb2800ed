package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr             string
	MetricsAddr      string
	ShutdownTimeout  time.Duration
	MaxConnections   int
	MaxBodyBytes     int64
	StrictValidation bool
	LogFormat        string
	LogLevel         string
}

const (
	defaultAddr            = ":5000"
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxBodyBytes    = 1 << 20
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Server{
		Addr:            get("USERMGMT_ADDR"),
		MetricsAddr:     get("USERMGMT_METRICS_ADDR"),
		ShutdownTimeout: defaultShutdownTimeout,
		MaxBodyBytes:    defaultMaxBodyBytes,
		LogFormat:       strings.ToLower(get("USERMGMT_LOG_FORMAT")),
		LogLevel:        strings.ToLower(get("USERMGMT_LOG_LEVEL")),
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if v := get("USERMGMT_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Server{}, fmt.Errorf("USERMGMT_SHUTDOWN_TIMEOUT: invalid duration %q", v)
		}
		cfg.ShutdownTimeout = d
	}
	if v := get("USERMGMT_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Server{}, fmt.Errorf("USERMGMT_MAX_CONNECTIONS: invalid value %q", v)
		}
		cfg.MaxConnections = n
	}
	if v := get("USERMGMT_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("USERMGMT_MAX_BODY_BYTES: invalid value %q", v)
		}
		cfg.MaxBodyBytes = n
	}
	if v := get("USERMGMT_STRICT_VALIDATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Server{}, fmt.Errorf("USERMGMT_STRICT_VALIDATION: invalid bool %q", v)
		}
		cfg.StrictValidation = b
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Server{}, fmt.Errorf("USERMGMT_LOG_FORMAT: must be json or text, got %q", cfg.LogFormat)
	}
	return cfg, nil
}
