package toast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "toasts:"

// RedisStore Redis 通知队列（RPUSH 入队，LPOP 出队保持顺序）
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 从 URL 创建 Redis 通知队列
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Toast/Redis] Connected to %s", opts.Addr)
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient 从现有 Redis 客户端创建通知队列
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Push(ctx context.Context, sessionID string, t Toast) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal toast: %w", err)
	}
	key := redisKeyPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, queueTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Drain(ctx context.Context, sessionID string) ([]Toast, error) {
	key := redisKeyPrefix + sessionID
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("drain toasts: %w", err)
	}

	raw, err := items.Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	now := time.Now()
	toasts := make([]Toast, 0, len(raw))
	for _, r := range raw {
		var t Toast
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			log.Printf("[Toast/Redis] drop malformed toast: %v", err)
			continue
		}
		if t.expired(now) {
			continue
		}
		toasts = append(toasts, t)
	}
	return toasts, nil
}

func (s *RedisStore) Dismiss(ctx context.Context, sessionID, toastID string) error {
	key := redisKeyPrefix + sessionID
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("dismiss toast: %w", err)
	}
	for _, r := range raw {
		var t Toast
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			continue
		}
		if t.ID == toastID {
			// 按原始序列化值精确删除这一条
			return s.client.LRem(ctx, key, 1, r).Err()
		}
	}
	return nil
}

// Close 关闭 Redis 连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
