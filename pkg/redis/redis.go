package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"logmein/config"
	log "logmein/pkg/logger"
)

// ErrNil 键不存在
var ErrNil = redis.Nil

// Client Redis客户端接口
type Client interface {
	// Set 设置键值对，expiration 为 0 表示不过期
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get 获取字符串值，键不存在时返回 ErrNil
	Get(ctx context.Context, key string) (string, error)

	// Del 删除一个或多个键
	Del(ctx context.Context, keys ...string) error

	// Ping 测试Redis连接
	Ping(ctx context.Context) error

	// Close 关闭Redis连接
	Close() error
}

// redisClient Redis客户端实现，所有键自动加上前缀
type redisClient struct {
	client *redis.Client
	prefix string
}

// InitRedis 初始化Redis连接
func InitRedis(cfg *config.RedisConfig) (Client, error) {
	log.Info("开始初始化Redis连接",
		zap.String("addr", cfg.GetAddr()),
		zap.Int("db", cfg.DB),
	)

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.GetDialTimeout(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Error("Redis连接测试失败", zap.Error(err))
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Info("Redis连接成功", zap.String("addr", cfg.GetAddr()))
	return NewClient(client, cfg.KeyPrefix), nil
}

// NewClient 包装已有的 go-redis 客户端
func NewClient(client *redis.Client, prefix string) Client {
	return &redisClient{client: client, prefix: prefix}
}

func (r *redisClient) key(key string) string {
	return r.prefix + key
}

// Set 设置键值对
func (r *redisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, expiration).Err()
}

// Get 获取字符串值
func (r *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNil
	}
	return val, err
}

// Del 删除一个或多个键
func (r *redisClient) Del(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	return r.client.Del(ctx, prefixed...).Err()
}

// Ping 测试Redis连接
func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func (r *redisClient) Close() error {
	return r.client.Close()
}
