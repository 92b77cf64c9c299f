package preference

import (
	"context"
	"errors"
	"fmt"

	"logmein/pkg/redis"
)

// RedisStore 把偏好保存在 Redis 中，便于多台机器共用同一个选中账号
type RedisStore struct {
	client   redis.Client
	fallback string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client redis.Client, fallback string) *RedisStore {
	return &RedisStore{client: client, fallback: fallback}
}

func (s *RedisStore) CurrentUsername(ctx context.Context) (string, error) {
	username, err := s.client.Get(ctx, KeyCurrentUsername)
	if errors.Is(err, redis.ErrNil) || (err == nil && username == "") {
		return s.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("读取当前用户名失败: %w", err)
	}
	return username, nil
}

func (s *RedisStore) SetCurrentUsername(ctx context.Context, username string) error {
	var err error
	if username == "" {
		err = s.client.Del(ctx, KeyCurrentUsername)
	} else {
		err = s.client.Set(ctx, KeyCurrentUsername, username, 0)
	}
	if err != nil {
		return fmt.Errorf("保存当前用户名失败: %w", err)
	}
	return nil
}
