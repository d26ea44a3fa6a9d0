package upstream

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Error 后端调用的统一错误
//
// 两类失败：
//   - 服务端报告的失败：Status 为 4xx/5xx，Message 取自响应体
//   - 网络失败（请求没有得到响应）：Status 为 0
type Error struct {
	Status  int    // HTTP 状态码；0 表示无响应
	Message string // 人类可读信息
	Err     error  // 底层错误（可能为 nil）
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// noResponseError 网络层失败（连接拒绝、超时、DNS 失败等）
func noResponseError(err error) *Error {
	return &Error{Status: 0, Message: "no response from server", Err: err}
}

// malformedResponseError 后端返回 2xx 但响应体缺少预期的数据字段
func malformedResponseError(field string) *Error {
	return &Error{
		Status:  http.StatusBadGateway,
		Message: "unexpected response from server: missing " + field,
	}
}

// normalizeError 把后端的各种错误响应形态归一化
//
// 后端可能返回 {"error": "X"}、{"message": "X"} 或纯文本 "X"；
// 都提取为 Message=X，其余形态退化为通用信息。
func normalizeError(status int, contentType string, body []byte) *Error {
	e := &Error{Status: status, Message: "request failed"}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return e
	}

	var shaped struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &shaped); err == nil {
		if shaped.Error != "" {
			e.Message = shaped.Error
			return e
		}
		if shaped.Message != "" {
			e.Message = shaped.Message
			return e
		}
		// JSON 但没有已知字段：保持通用信息
		if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
			return e
		}
	}

	// 纯文本响应体
	if !strings.Contains(strings.ToLower(contentType), "html") {
		e.Message = text
	}
	return e
}

// IsUnauthorized 后端报告 401（会话失效，需要转为 anonymous）
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

// IsForbidden 后端报告 403
func IsForbidden(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusForbidden
}

// IsNotFound 后端报告 404
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsNoResponse 网络失败（与服务端报告的失败区分开）
func IsNoResponse(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 0
}

// StatusOf 返回错误携带的 HTTP 状态码；非 *Error 返回 502
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		if e.Status == 0 {
			return http.StatusBadGateway
		}
		return e.Status
	}
	return http.StatusBadGateway
}
