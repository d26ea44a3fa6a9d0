package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// fakeBackend 固定数据的后台接口
type fakeBackend struct {
	mux          *http.ServeMux
	statusBodies []map[string]interface{}
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{mux: http.NewServeMux()}
	b.mux.HandleFunc("GET /admin/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders": [
			{"id": 1, "status": "pending", "payment_status": "pending", "total_amount": 150000,
			 "shipping_address": "12 Nguyễn Huệ", "order_items": [{"id": 1, "book_id": 5, "quantity": 3, "price": 50000}]},
			{"id": 2, "status": "completed", "payment_status": "paid", "total_amount": 80000,
			 "shipping_address": "5 Lê Lợi", "order_items": []}
		]}`))
	})
	b.mux.HandleFunc("PUT /admin/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		b.statusBodies = append(b.statusBodies, body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order": {"id": 1, "status": "confirmed", "payment_status": "paid", "order_items": []}}`))
	})
	b.mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("role") != "customer" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "expected role=customer"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users": [{"id": 9, "username": "khach", "role": "customer", "is_active": true}]}`))
	})
	b.mux.HandleFunc("PUT /admin/users/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		b.statusBodies = append(b.statusBodies, body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user": {"id": 9, "username": "khach", "role": "customer", "is_active": false}}`))
	})
	b.mux.HandleFunc("GET /admin/statistics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_books": 120, "total_orders": 45, "total_customers": 30,
			"total_revenue": 12500000, "pending_orders": 4, "low_stock_books": 7}`))
	})
	return b
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.mux)
	t.Cleanup(srv.Close)

	client, err := upstream.New(srv.URL)
	if err != nil {
		t.Fatalf("创建后端客户端失败: %v", err)
	}
	mux := http.NewServeMux()
	NewHandler(client).RegisterRoutes(mux)
	return mux, backend
}

func asStaff(req *http.Request) *http.Request {
	s := &session.Session{
		ID:   "test-session",
		User: &model.User{ID: 2, Username: "mod", Role: model.RoleModerator},
	}
	return req.WithContext(auth.WithSession(req.Context(), s))
}

func TestListOrders(t *testing.T) {
	mux, _ := newTestMux(t)

	req := asStaff(httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Orders []model.Order `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Orders) != 2 {
		t.Fatalf("订单数 = %d, 期望 2", len(resp.Orders))
	}
	// order_items 已适配为 items，空订单也是空数组而不是 null
	if len(resp.Orders[0].Items) != 1 {
		t.Errorf("订单 1 的行项目数 = %d, 期望 1", len(resp.Orders[0].Items))
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("空订单的 items 应为空数组: %s", rec.Body.String())
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	mux, backend := newTestMux(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "更新订单状态", body: `{"status": "confirmed"}`, wantStatus: http.StatusOK},
		{name: "更新支付状态", body: `{"payment_status": "paid"}`, wantStatus: http.StatusOK},
		{name: "两个字段都为空", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "未知订单状态", body: `{"status": "shipped"}`, wantStatus: http.StatusBadRequest},
		{name: "未知支付状态", body: `{"payment_status": "refunded"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asStaff(httptest.NewRequest(http.MethodPut, "/api/admin/orders/1/status", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, 期望 %d, body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
	if len(backend.statusBodies) != 2 {
		t.Errorf("后端收到 %d 次状态更新, 期望 2", len(backend.statusBodies))
	}
}

func TestListCustomers(t *testing.T) {
	mux, _ := newTestMux(t)

	req := asStaff(httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Users []model.User `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].Username != "khach" {
		t.Errorf("客户列表 = %+v", resp.Users)
	}
}

func TestUpdateCustomerStatus(t *testing.T) {
	mux, backend := newTestMux(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "停用账号", body: `{"is_active": false}`, wantStatus: http.StatusOK},
		{name: "缺少 is_active", body: `{}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asStaff(httptest.NewRequest(http.MethodPut, "/api/admin/customers/9/status", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, 期望 %d", rec.Code, tt.wantStatus)
			}
		})
	}
	if len(backend.statusBodies) != 1 {
		t.Fatalf("后端收到 %d 次状态更新, 期望 1", len(backend.statusBodies))
	}
	if got := backend.statusBodies[0]["is_active"]; got != false {
		t.Errorf("转发的 is_active = %v, 期望 false", got)
	}
}

func TestStatistics(t *testing.T) {
	mux, _ := newTestMux(t)

	req := asStaff(httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", rec.Code)
	}
	var stats model.Statistics
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if stats.TotalBooks != 120 || stats.PendingOrders != 4 {
		t.Errorf("统计数据 = %+v", stats)
	}
}

func TestGuards(t *testing.T) {
	mux, _ := newTestMux(t)

	asCustomer := func(req *http.Request) *http.Request {
		s := &session.Session{ID: "c", User: &model.User{ID: 9, Role: model.RoleCustomer}}
		return req.WithContext(auth.WithSession(req.Context(), s))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("匿名请求状态码 = %d, 期望 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil)))
	if rec.Code != http.StatusForbidden {
		t.Errorf("顾客请求状态码 = %d, 期望 403", rec.Code)
	}
}
