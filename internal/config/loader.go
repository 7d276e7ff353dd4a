package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads YAML config from path, expanding ${ENV} references before
// unmarshalling, and applies defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = 7480
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Encoding == "" {
		cfg.Logger.Encoding = "console"
	}
	if cfg.OTP.CodeLength < 4 || cfg.OTP.CodeLength > 8 {
		cfg.OTP.CodeLength = 6
	}
	if cfg.OTP.TTL == 0 {
		cfg.OTP.TTL = 5 * time.Minute
	}
	if cfg.SMS.Timeout == 0 {
		cfg.SMS.Timeout = 10 * time.Second
	}
	if cfg.Admin.TokenTTL == 0 {
		cfg.Admin.TokenTTL = time.Hour
	}
	if cfg.RateLimit.MaxPerDay == 0 {
		cfg.RateLimit.MaxPerDay = 10
	}
	if cfg.RateLimit.MaxPerMinute == 0 {
		cfg.RateLimit.MaxPerMinute = 3
	}
}
