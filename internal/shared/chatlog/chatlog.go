// Package chatlog 咨询对话的转录存储
//
// 转录用于后台排查推荐质量问题，属于旁路写入：
// 存储故障只记日志，绝不影响咨询请求本身。
package chatlog

import (
	"context"
	"time"
)

// Entry 一次问答的转录记录
type Entry struct {
	SessionID string    `bson:"session_id" json:"session_id"`
	UserID    int       `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Question  string    `bson:"question" json:"question"`
	Answer    string    `bson:"answer" json:"answer"`
	Source    string    `bson:"source" json:"source"` // "http" 或 "ws"
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Recorder 转录存储接口
type Recorder interface {
	// Record 写入一条转录
	Record(ctx context.Context, entry Entry) error
	// Recent 按时间倒序返回某个会话最近的转录
	Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error)
	// Close 释放底层连接
	Close() error
}

// NopRecorder 未配置转录存储时的空实现
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

func (NopRecorder) Recent(context.Context, string, int) ([]Entry, error) {
	return []Entry{}, nil
}

func (NopRecorder) Close() error { return nil }
