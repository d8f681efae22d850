package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for both binaries. Values come
// from an optional config.yaml and EMS_-prefixed environment variables,
// with the defaults below.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	Server    ServerConfig    `mapstructure:"server"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// ServerConfig configures the ingestion service.
type ServerConfig struct {
	// Listen address, host:port. Host empty means all interfaces.
	Addr string `mapstructure:"addr"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// Maximum accepted request body size in bytes
	MaxBodySize int64 `mapstructure:"max_body_size"`
}

// SimulatorConfig configures the reading source.
type SimulatorConfig struct {
	// Base URL of the ingestion service
	TargetURL string `mapstructure:"target_url"`

	DeviceID string `mapstructure:"device_id"`

	// Delay between generated samples
	Interval time.Duration `mapstructure:"interval"`

	// Timeouts for single-item and buffered-batch delivery
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// Load reads configuration from the given path (directory containing an
// optional config.yaml) and the environment. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("EMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.max_body_size", 1<<20)

	v.SetDefault("simulator.target_url", "http://localhost:8000")
	v.SetDefault("simulator.device_id", "PV_SIM")
	v.SetDefault("simulator.interval", 3*time.Second)
	v.SetDefault("simulator.send_timeout", 2*time.Second)
	v.SetDefault("simulator.batch_timeout", 5*time.Second)
}
