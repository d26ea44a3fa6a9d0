// Package upstream 后端 REST API 的类型化客户端
//
// 网关所有业务数据（库存、价格、账号、订单）都由外部后端持有，
// 本包是唯一的出口：统一的 HTTP 客户端封装加上按领域拆分的
// 薄服务函数（auth.go / books.go / cart.go / ...）。
//
// 约定：
//   - 凭证随 context 注入（WithCredential），客户端自动附加到每个请求
//   - 所有失败归一化为 *Error（见 error.go），服务函数不吞错误
//   - 每个请求带超时，由调用方 context 或客户端默认值控制
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// 默认请求超时（源实现没有超时策略，这里作为加固补上）
const defaultTimeout = 15 * time.Second

// Credential 后端会话凭证（后端下发的会话 Cookie，形如 "session=..."）
type Credential string

type ctxKey int

const ctxKeyCredential ctxKey = iota

// WithCredential 将后端会话凭证注入 context
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, ctxKeyCredential, cred)
}

// CredentialFrom 从 context 取出后端会话凭证
func CredentialFrom(ctx context.Context) Credential {
	cred, _ := ctx.Value(ctxKeyCredential).(Credential)
	return cred
}

// Client 后端 API 客户端
type Client struct {
	base    *url.URL
	httpc   *http.Client
	timeout time.Duration
}

// New 创建后端客户端
//
// baseURL 指向后端 API 根路径，如 "http://backend:5000/api"
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url: %q", baseURL)
	}
	return &Client{
		base:    u,
		httpc:   &http.Client{},
		timeout: defaultTimeout,
	}, nil
}

// SetTimeout 覆盖默认请求超时（0 表示不限制）
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetTransport 替换底层 Transport（测试注入用）
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpc.Transport = rt
}

// BaseURL 返回后端根路径
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ============================================================================
// 请求执行
// ============================================================================

// do 执行请求并把响应解码到 out（out 为 nil 时丢弃响应体）
//
// 返回的 *http.Response 已读完并关闭 Body，仅用于读取响应头
// （登录/注册需要捕获后端下发的 Set-Cookie）。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*http.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredential(req)

	return c.roundTrip(req, out)
}

// doMultipart 执行 multipart/form-data 请求（图片上传）
func (c *Client) doMultipart(ctx context.Context, path string, query url.Values, field, filename string, file io.Reader, out interface{}) (*http.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, query), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.attachCredential(req)

	return c.roundTrip(req, out)
}

// roundTrip 发送请求，归一化错误，解码成功响应
func (c *Client) roundTrip(req *http.Request, out interface{}) (*http.Response, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		// 网络层失败：请求根本没有得到响应
		return nil, noResponseError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp, noResponseError(err)
	}

	if resp.StatusCode >= 400 {
		return resp, normalizeError(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, &Error{Status: resp.StatusCode, Message: "request failed", Err: err}
		}
	}
	return resp, nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.base.String() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// attachCredential 自动附加后端会话凭证
func (c *Client) attachCredential(req *http.Request) {
	if cred := CredentialFrom(req.Context()); cred != "" {
		req.Header.Set("Cookie", string(cred))
	}
}

// sessionCookie 从响应头提取后端下发的会话 Cookie
//
// 后端用 Cookie 维持登录态；登录/注册成功后网关保存该凭证，
// 后续所有代发请求自动携带。
func sessionCookie(resp *http.Response) Credential {
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return Credential(c.Name + "=" + c.Value)
		}
	}
	return ""
}

// get / post / put / delete 快捷方法

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.do(ctx, http.MethodPut, path, nil, body, out)
	return err
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}
