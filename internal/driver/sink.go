package driver

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
)

// Sink receives every attempt made by a Driver.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// Record delivers one attempt. Errors are reported but never stop the driver.
	Record(ctx context.Context, a Attempt) error
}

// LogSink writes each attempt as an info-level log entry.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink. A nil logger discards output.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(_ context.Context, a Attempt) error {
	s.logger.Info(a.String(),
		zap.Int64("attempt", a.Seq),
		zap.Bool("consumed", a.Consumed),
	)
	return nil
}

// Publisher is the subset of a Redis client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisConfig for creating a RedisSink
type RedisConfig struct {
	Addr     string // Redis address (e.g., "localhost:6379")
	Password string // Redis password (empty for no auth)
	DB       int    // Redis database number
	Channel  string // Pub/sub channel receiving JSON-encoded attempts
}

// RedisSink publishes attempts as JSON on a Redis pub/sub channel so other
// processes can watch the demo. No limiter state is stored in Redis.
type RedisSink struct {
	publisher Publisher
	client    *redis.Client
	channel   string
}

// NewRedisSink creates a RedisSink with its own client.
func NewRedisSink(config RedisConfig) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisSink{
		publisher: client,
		client:    client,
		channel:   config.Channel,
	}
}

// NewRedisSinkWithPublisher creates a RedisSink on an existing publisher.
// Ping and Close are no-ops for sinks created this way.
func NewRedisSinkWithPublisher(publisher Publisher, channel string) *RedisSink {
	return &RedisSink{
		publisher: publisher,
		channel:   channel,
	}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Record(ctx context.Context, a Attempt) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return tberrors.NewOperationError("driver", "Record", err).WithContext("encode attempt")
	}

	if err := s.publisher.Publish(ctx, s.channel, payload).Err(); err != nil {
		return tberrors.NewOperationError("driver", "Record", err).WithContext("channel " + s.channel)
	}
	return nil
}

// Ping checks connectivity of the owned client.
func (s *RedisSink) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the owned client.
func (s *RedisSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
