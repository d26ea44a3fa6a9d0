package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 会话不存在或已失效
var ErrNotFound = errors.New("session not found")

// Store 会话存储接口
//
// Save 的 ttl 是存储层的过期兜底；逻辑过期以 Session.ExpiresAt 为准。
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
