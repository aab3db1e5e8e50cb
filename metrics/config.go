package metrics

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultMetricsHost           = "127.0.0.1"
	defaultMetricsPort           = 2112
	defaultMetricsUpdateInterval = 100 * time.Millisecond
)

// Config holds the metrics server configuration.
type Config struct {
	Host           string        `long:"host" description:"IP of the Prometheus server"`
	Port           int           `long:"port" description:"Port of the Prometheus server"`
	UpdateInterval time.Duration `long:"updateinterval" description:"The interval of Prometheus metrics updated"`
}

func (cfg *Config) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	ip := net.ParseIP(cfg.Host)
	if ip == nil {
		return fmt.Errorf("invalid host: %v", cfg.Host)
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %v", cfg.Port)
	}

	return nil
}

func (cfg *Config) Address() (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	return net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)), nil
}

// DefaultDispatcherConfig returns the default metrics configuration for a
// dispatcher process.
func DefaultDispatcherConfig() *Config {
	return &Config{
		Host:           defaultMetricsHost,
		Port:           defaultMetricsPort,
		UpdateInterval: defaultMetricsUpdateInterval,
	}
}
