package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-gateway/internal/shared/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

// ============================================================================
// 错误归一化
// ============================================================================

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
	}{
		{"error 字段", 400, "application/json", `{"error": "X"}`, "X"},
		{"message 字段", 400, "application/json", `{"message": "X"}`, "X"},
		{"纯文本", 500, "text/plain", `X`, "X"},
		{"未知 JSON 形态", 500, "application/json", `{"detail": "X"}`, "request failed"},
		{"空响应体", 502, "", ``, "request failed"},
		{"HTML 错误页", 503, "text/html", `<html>oops</html>`, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))

			err := c.get(context.Background(), "/books", nil, nil)
			require.Error(t, err)

			var ue *Error
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.status, ue.Status)
			assert.Equal(t, tt.wantMsg, ue.Message)
			assert.False(t, IsNoResponse(err))
		})
	}
}

func TestNoResponseError(t *testing.T) {
	// 指向已关闭的服务器端口，请求不会得到任何响应
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	err = c.get(context.Background(), "/books", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNoResponse(err))
	assert.Equal(t, "no response from server", err.Error())

	// 连接失败必须与服务端报告的失败可区分
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestErrorPredicates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "Yêu cầu đăng nhập"}`)
	}))

	err := c.get(context.Background(), "/me", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, "Yêu cầu đăng nhập", err.Error())
}

// ============================================================================
// 凭证附加
// ============================================================================

func TestCredentialAttachment(t *testing.T) {
	var gotCookie string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, `{"cart": []}`)
	}))

	ctx := WithCredential(context.Background(), "session=abc123")
	_, err := c.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session=abc123", gotCookie)
}

func TestCredentialAbsent(t *testing.T) {
	var gotCookie string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, `{"categories": []}`)
	}))

	_, err := c.ListCategories(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, gotCookie)
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-1", Path: "/"})
		fmt.Fprint(w, `{"user": {"id": 7, "username": "alice", "role": "customer", "is_active": true}}`)
	}))

	user, cred, err := c.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.Equal(t, Credential("session=tok-1"), cred)
}

// ============================================================================
// 分页拼接
// ============================================================================

func TestListAllBooksConcatenation(t *testing.T) {
	// 25 本书，每页 10 本：3 页拼接后应无重复无遗漏且保持顺序
	total := 25
	perPage := 10
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 1
		fmt.Sscan(r.URL.Query().Get("page"), &page)

		start := (page - 1) * perPage
		end := start + perPage
		if end > total {
			end = total
		}
		books := make([]model.Book, 0, perPage)
		for i := start; i < end; i++ {
			books = append(books, model.Book{ID: i + 1, Title: fmt.Sprintf("Book %d", i+1)})
		}
		resp := map[string]interface{}{
			"books":    books,
			"total":    total,
			"page":     page,
			"per_page": perPage,
			"pages":    (total + perPage - 1) / perPage,
		}
		json.NewEncoder(w).Encode(resp)
	}))

	all, err := c.ListAllBooks(context.Background(), BookQuery{PerPage: perPage})
	require.NoError(t, err)
	require.Len(t, all, total)

	seen := make(map[int]bool, total)
	for i, b := range all {
		assert.Equal(t, i+1, b.ID, "顺序必须与后端一致")
		assert.False(t, seen[b.ID], "不得出现重复")
		seen[b.ID] = true
	}
}

func TestListBooksPageSize(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `{"books": [{"id": 6}, {"id": 7}], "total": 7, "page": 2, "per_page": 5, "pages": 2}`)
	}))

	page, err := c.ListBooks(context.Background(), BookQuery{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Books), 5)
	assert.False(t, page.HasMore())
}

// ============================================================================
// 响应适配
// ============================================================================

func TestOrderItemsAdapter(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"orders": [
			{"id": 1, "total_amount": 100, "order_items": [{"id": 11, "book_id": 5, "quantity": 2, "price": 50}]},
			{"id": 2, "total_amount": 0}
		]}`)
	}))

	orders, err := c.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// order_items 重命名为 items
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 5, orders[0].Items[0].BookID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	// 无行项目时 items 是空切片而不是 null
	assert.NotNil(t, orders[1].Items)
	assert.Empty(t, orders[1].Items)
}

// TestOrderMissingEnvelope 2xx 响应缺少 order 字段按网关错误处理，不返回空订单
func TestOrderMissingEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))

	order, err := c.Order(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, order)

	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)

	order, err = c.CreateOrder(context.Background(), "12 Nguyễn Huệ, Quận 1")
	require.Error(t, err)
	assert.Nil(t, order)
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
}

func TestChatbotAsk(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Có sách gì hay?", req["question"])
		fmt.Fprint(w, `{"answer": "Đắc Nhân Tâm đang bán chạy."}`)
	}))

	answer, err := c.Ask(context.Background(), "Có sách gì hay?")
	require.NoError(t, err)
	assert.Equal(t, "Đắc Nhân Tâm đang bán chạy.", answer)
}
