// Package toast 会话级通知队列
//
// 网关在处理请求的过程中产生的提示（购物车数量被调整、订单创建成功等）
// 进入当前会话的队列，前端轮询 GET /api/toasts 一次性取走展示。
// 队列按入队顺序出队，匿名访客用匿名队列键（基于 Cookie 之前不存在时为空，
// 直接丢弃）。
package toast

import (
	"time"

	"github.com/google/uuid"
)

// Severity 通知级别
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Toast 一条通知
type Toast struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New 创建一条通知
func New(severity Severity, message string) Toast {
	now := time.Now()
	return Toast{
		ID:        uuid.New().String(),
		Severity:  severity,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(queueTTL),
	}
}

// expired 通知是否已过截止时间（零值截止时间视为不过期，兼容旧数据）
func (t Toast) expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// 通知的过期时间：没人来取的通知不会永远留着
const queueTTL = 30 * time.Minute
