package client

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/InternLink/portal-service/internal/util/logger"
)

// RedisConfig defines configuration for the Redis client.
type RedisConfig struct {
	Address      string        `yaml:"address"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RedisClient wraps redis.Client with tracing hooks. The rate limiter is
// its only caller in this service.
type RedisClient struct {
	*redis.Client
	config RedisConfig
	mu     sync.Mutex
	closed bool
	tracer trace.Tracer
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*RedisClient, error) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = cfg.PoolSize / 2
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}

	cli := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	rc := &RedisClient{
		Client: cli,
		config: cfg,
		tracer: otel.Tracer("redis"),
	}
	cli.AddHook(tracingHook{})

	logger.Infof("Redis client connected to %s (DB:%d)", cfg.Address, cfg.DB)
	return rc, nil
}

func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.Client.Close()
}

func (c *RedisClient) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// IncrementWithTTL atomically increments a key, setting the TTL on first use.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	script := redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == false then
  current = 0
  redis.call("SET", KEYS[1], current, "EX", ARGV[1])
end
return redis.call("INCR", KEYS[1])
`)
	val, err := script.Run(ctx, c.Client, []string{key}, int(ttl.Seconds())).Int64()
	if err != nil {
		return 0, fmt.Errorf("incrementWithTTL failed: %w", err)
	}
	return val, nil
}

type tracingHook struct{}

func (tracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (tracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("db.system", "redis"),
				attribute.String("db.operation", cmd.Name()),
			)
		}
		err := next(ctx, cmd)
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			if cerr := cmd.Err(); cerr != nil && cerr != redis.Nil {
				span.RecordError(cerr)
			}
		}
		return err
	}
}

func (tracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("db.system", "redis"),
				attribute.String("db.operation", "pipeline"),
				attribute.Int("db.command_count", len(cmds)),
			)
		}
		return next(ctx, cmds)
	}
}
