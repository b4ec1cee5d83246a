package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/constants"
	"resume-insight-go/internal/tracing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNotFound is returned when a key is not found in Redis.
var ErrNotFound = redis.Nil

var tracer = otel.Tracer("resume-insight-go/storage")

// Redis wraps the Redis client，作为分类结果缓存使用
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		ttl = constants.DefaultCategoryCacheTTL
	}
	return &Redis{Client: client, ttl: ttl}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// CategoriesKey 由脱敏后的文本派生缓存键。
// 文本只以 SHA1 命名空间 UUID 的形式出现在键中，不会明文落入 Redis。
func CategoriesKey(cleanedText string, topK int) string {
	textID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(cleanedText))
	return fmt.Sprintf(constants.KeyResumeCategories, textID.String(), topK)
}

// GetCategories 读取缓存的分类结果，未命中时返回 (nil, false, nil)
func (r *Redis) GetCategories(ctx context.Context, cleanedText string, topK int) ([]string, bool, error) {
	if r == nil || r.Client == nil {
		return nil, false, nil
	}

	key := CategoriesKey(cleanedText, topK)
	ctx, span := tracer.Start(ctx, "Redis.GetCategories")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", tracing.SafeRedisKey(key)))

	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, false, fmt.Errorf("读取分类缓存失败: %w", err)
	}

	var categories []string
	if err := json.Unmarshal([]byte(val), &categories); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, false, fmt.Errorf("反序列化分类缓存失败: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return categories, true, nil
}

// SetCategories 写入分类结果并设置过期时间
func (r *Redis) SetCategories(ctx context.Context, cleanedText string, topK int, categories []string) error {
	if r == nil || r.Client == nil {
		return nil
	}

	key := CategoriesKey(cleanedText, topK)
	ctx, span := tracer.Start(ctx, "Redis.SetCategories")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", tracing.SafeRedisKey(key)))

	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("序列化分类结果失败: %w", err)
	}
	if err := r.Client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入分类缓存失败: %w", err)
	}
	return nil
}
