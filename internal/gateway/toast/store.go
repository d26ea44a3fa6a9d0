package toast

import (
	"context"
	"sync"
	"time"
)

// Store 通知队列存储接口
//
// Push 入队，Drain 按入队顺序取走并清空队列（已过期的不返回），
// Dismiss 按 ID 删除单条（前端手动关闭）。
type Store interface {
	Push(ctx context.Context, sessionID string, t Toast) error
	Drain(ctx context.Context, sessionID string) ([]Toast, error)
	Dismiss(ctx context.Context, sessionID, toastID string) error
	Close() error
}

// ============================================================================
// 内存实现（开发环境 / 测试用）
// ============================================================================

// MemoryStore 内存通知队列
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string][]Toast
}

// NewMemoryStore 创建内存通知队列
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: make(map[string][]Toast)}
}

func (s *MemoryStore) Push(ctx context.Context, sessionID string, t Toast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[sessionID] = append(s.queues[sessionID], t)
	return nil
}

func (s *MemoryStore) Drain(ctx context.Context, sessionID string) ([]Toast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	toasts := []Toast{}
	for _, t := range s.queues[sessionID] {
		if t.expired(now) {
			continue
		}
		toasts = append(toasts, t)
	}
	delete(s.queues, sessionID)
	return toasts, nil
}

func (s *MemoryStore) Dismiss(ctx context.Context, sessionID, toastID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[sessionID]
	for i, t := range queue {
		if t.ID == toastID {
			s.queues[sessionID] = append(queue[:i:i], queue[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close 实现 Store 接口
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
