package config

import "time"

// Config is built once at startup and passed into constructors.
// Request-handling code never reads ambient environment state.
type Config struct {
	Env         string `yaml:"env"`
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	Logger    LoggerConfig    `yaml:"logger"`
	OTP       OTPConfig       `yaml:"otp"`
	SMS       SMSConfig       `yaml:"sms"`
	Email     EmailConfig     `yaml:"email"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"otp_rate_limit"`
	Translate TranslateConfig `yaml:"translate"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type OTPConfig struct {
	CodeLength int           `yaml:"code_length"`
	TTL        time.Duration `yaml:"ttl"`
}

// SMSConfig describes the outbound SMS gateway. With Simulate set the
// code is logged instead of sent, which is how development runs.
type SMSConfig struct {
	GatewayURL string        `yaml:"gateway_url"`
	APIKey     string        `yaml:"api_key"`
	Sender     string        `yaml:"sender"`
	Timeout    time.Duration `yaml:"timeout"`
	Simulate   bool          `yaml:"simulate"`
}

type EmailConfig struct {
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

type AdminConfig struct {
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// RateLimitConfig throttles OTP issuance. Disabled by default; turning it
// on is an explicit product decision, not an accident of configuration.
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled"`
	MaxPerDay       int  `yaml:"max_per_day"`
	MaxPerMinute    int  `yaml:"max_per_minute"`
	StrictOnFailure bool `yaml:"strict_on_failure"`
}

type TranslateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
}

type TelemetryConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	BatchSize     int           `yaml:"batch_size"`
	FlushEvery    time.Duration `yaml:"flush_every"`
	QueueCapacity int           `yaml:"queue_capacity"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	TLS           bool          `yaml:"tls"`
}
