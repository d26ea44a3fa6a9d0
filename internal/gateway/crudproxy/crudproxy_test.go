package crudproxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// fakeAdminBackend 记录收到的请求，返回固定成功响应
type fakeAdminBackend struct {
	mux      *http.ServeMux
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

func newFakeAdminBackend() *fakeAdminBackend {
	b := &fakeAdminBackend{mux: http.NewServeMux()}
	record := func(entity string, status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			req := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
			if r.Body != nil {
				json.NewDecoder(r.Body).Decode(&req.Body)
			}
			b.requests = append(b.requests, req)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if entity != "" {
				json.NewEncoder(w).Encode(map[string]interface{}{
					entity: map[string]interface{}{"id": 1},
				})
			} else {
				json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
			}
		}
	}
	b.mux.HandleFunc("GET /books", func(w http.ResponseWriter, r *http.Request) {
		b.requests = append(b.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"books": []interface{}{}, "total": 0, "page": 1, "per_page": 20, "pages": 0,
		})
	})
	b.mux.HandleFunc("POST /books", record("book", http.StatusCreated))
	b.mux.HandleFunc("PUT /books/{id}", record("book", http.StatusOK))
	b.mux.HandleFunc("DELETE /books/{id}", record("", http.StatusOK))
	b.mux.HandleFunc("POST /admin/categories", record("category", http.StatusCreated))
	b.mux.HandleFunc("POST /admin/banners", record("banner", http.StatusCreated))
	b.mux.HandleFunc("PUT /admin/banners/{id}/toggle", record("banner", http.StatusOK))
	b.mux.HandleFunc("POST /admin/users", record("user", http.StatusCreated))
	b.mux.HandleFunc("PUT /admin/users/{id}", record("user", http.StatusOK))
	return b
}

func (b *fakeAdminBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	if len(b.requests) == 0 {
		t.Fatal("backend 未收到任何请求")
	}
	return b.requests[len(b.requests)-1]
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeAdminBackend) {
	t.Helper()
	backend := newFakeAdminBackend()
	srv := httptest.NewServer(backend.mux)
	t.Cleanup(srv.Close)

	client, err := upstream.New(srv.URL)
	if err != nil {
		t.Fatalf("创建后端客户端失败: %v", err)
	}
	mux := http.NewServeMux()
	NewHandler(Resources(client)).RegisterRoutes(mux)
	return mux, backend
}

// asRole 构造携带指定角色会话的请求
func asRole(req *http.Request, role model.Role) *http.Request {
	s := &session.Session{
		ID:   "test-session",
		User: &model.User{ID: 1, Username: "tester", Role: role},
	}
	return req.WithContext(auth.WithSession(req.Context(), s))
}

func TestGuards(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name       string
		role       model.Role
		anonymous  bool
		wantStatus int
	}{
		{name: "匿名请求返回 401", anonymous: true, wantStatus: http.StatusUnauthorized},
		{name: "顾客返回 403", role: model.RoleCustomer, wantStatus: http.StatusForbidden},
		{name: "编辑可以访问", role: model.RoleEditor, wantStatus: http.StatusOK},
		{name: "管理员可以访问", role: model.RoleAdmin, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/books", nil)
			if !tt.anonymous {
				req = asRole(req, tt.role)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, 期望 %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeleteRequiresConfirmHeader(t *testing.T) {
	mux, backend := newTestMux(t)

	tests := []struct {
		name       string
		confirm    string
		wantStatus int
	}{
		{name: "缺少 X-Confirm 头返回 428", confirm: "", wantStatus: http.StatusPreconditionRequired},
		{name: "X-Confirm 值不匹配返回 428", confirm: "banner", wantStatus: http.StatusPreconditionRequired},
		{name: "X-Confirm 正确时放行", confirm: "book", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asRole(httptest.NewRequest(http.MethodDelete, "/api/admin/books/7", nil), model.RoleAdmin)
			if tt.confirm != "" {
				req.Header.Set("X-Confirm", tt.confirm)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("状态码 = %d, 期望 %d, body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	// 只有带正确确认头的那次真正到达了后端
	if len(backend.requests) != 1 {
		t.Fatalf("后端收到 %d 个请求, 期望 1", len(backend.requests))
	}
	if got := backend.last(t); got.Method != http.MethodDelete || got.Path != "/books/7" {
		t.Errorf("后端请求 = %s %s, 期望 DELETE /books/7", got.Method, got.Path)
	}
}

func TestCreateBook_GeneratesSlug(t *testing.T) {
	mux, backend := newTestMux(t)

	body := `{"title": "Sách Thiếu Nhi", "author": "Tô Hoài", "category": "thieu-nhi", "price": 50000, "stock": 10}`
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/admin/books", strings.NewReader(body)), model.RoleEditor)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("状态码 = %d, body=%s", rec.Code, rec.Body.String())
	}
	sent := backend.last(t)
	if got := sent.Body["slug"]; got != "sach-thieu-nhi" {
		t.Errorf("转发的 slug = %v, 期望 sach-thieu-nhi", got)
	}
}

func TestCreateBook_Validation(t *testing.T) {
	mux, backend := newTestMux(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "缺少标题", body: `{"author": "a", "category": "c", "price": 1, "stock": 1}`},
		{name: "缺少作者", body: `{"title": "t", "category": "c", "price": 1, "stock": 1}`},
		{name: "价格必须为正", body: `{"title": "t", "author": "a", "category": "c", "price": 0, "stock": 1}`},
		{name: "库存不能为负", body: `{"title": "t", "author": "a", "category": "c", "price": 1, "stock": -1}`},
		{name: "请求体不是 JSON", body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asRole(httptest.NewRequest(http.MethodPost, "/api/admin/books", strings.NewReader(tt.body)), model.RoleAdmin)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("状态码 = %d, 期望 400", rec.Code)
			}
		})
	}
	if len(backend.requests) != 0 {
		t.Errorf("校验失败的请求不应到达后端, 实际收到 %d 个", len(backend.requests))
	}
}

func TestListBooks_PaginationClamp(t *testing.T) {
	mux, backend := newTestMux(t)

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/admin/books?page=0&per_page=500", nil), model.RoleEditor)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", rec.Code)
	}
	sent := backend.last(t)
	q, err := url.ParseQuery(sent.Query)
	if err != nil {
		t.Fatalf("解析查询参数失败: %v", err)
	}
	if q.Get("page") != "1" || q.Get("per_page") != "100" {
		t.Errorf("转发的查询参数 = %q, 期望 page=1 且 per_page=100", sent.Query)
	}
}

func TestCreateCategory_KeyAndSlug(t *testing.T) {
	mux, backend := newTestMux(t)

	body := `{"name": "Sách Tiếng Việt"}`
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(body)), model.RoleAdmin)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("状态码 = %d, body=%s", rec.Code, rec.Body.String())
	}
	sent := backend.last(t)
	if got := sent.Body["slug"]; got != "sach-tieng-viet" {
		t.Errorf("slug = %v, 期望 sach-tieng-viet", got)
	}
	if got := sent.Body["key"]; got != "SACH_TIENG_VIET" {
		t.Errorf("key = %v, 期望 SACH_TIENG_VIET", got)
	}
}

func TestBannerToggle(t *testing.T) {
	mux, backend := newTestMux(t)

	req := asRole(httptest.NewRequest(http.MethodPut, "/api/admin/banners/3/toggle", strings.NewReader(`{}`)), model.RoleEditor)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, body=%s", rec.Code, rec.Body.String())
	}
	sent := backend.last(t)
	if sent.Method != http.MethodPut || sent.Path != "/admin/banners/3/toggle" {
		t.Errorf("后端请求 = %s %s, 期望 PUT /admin/banners/3/toggle", sent.Method, sent.Path)
	}
}

func TestBannerPositionValidation(t *testing.T) {
	mux, backend := newTestMux(t)

	body := `{"title": "Khuyến mãi hè", "image_url": "/uploads/banners/a.jpg", "position": "footer"}`
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/admin/banners", strings.NewReader(body)), model.RoleAdmin)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
	if len(backend.requests) != 0 {
		t.Errorf("非法 position 不应转发到后端")
	}
}

func TestStaff_AdminRoleGuard(t *testing.T) {
	mux, backend := newTestMux(t)

	newStaffBody := func(role string) string {
		return `{"username": "newstaff", "email": "s@example.com", "password": "secret123", "role": "` + role + `"}`
	}

	tests := []struct {
		name       string
		caller     model.Role
		body       string
		wantStatus int
	}{
		{name: "版主可以创建编辑账号", caller: model.RoleModerator, body: newStaffBody("editor"), wantStatus: http.StatusCreated},
		{name: "版主不能创建管理员账号", caller: model.RoleModerator, body: newStaffBody("admin"), wantStatus: http.StatusForbidden},
		{name: "管理员可以创建管理员账号", caller: model.RoleAdmin, body: newStaffBody("admin"), wantStatus: http.StatusCreated},
		{name: "customer 不是后台角色", caller: model.RoleAdmin, body: newStaffBody("customer"), wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asRole(httptest.NewRequest(http.MethodPost, "/api/admin/staff", strings.NewReader(tt.body)), tt.caller)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, 期望 %d, body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	// 两次放行的创建都到达了后端
	if len(backend.requests) != 2 {
		t.Errorf("后端收到 %d 个请求, 期望 2", len(backend.requests))
	}
}
