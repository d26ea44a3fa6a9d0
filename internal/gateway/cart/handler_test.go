package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/upstream"
)

// fakeCartBackend 模拟后端购物车：同一本书加购合并数量
type fakeCartBackend struct {
	mu    sync.Mutex
	stock map[int]int    // bookID → 库存
	title map[int]string // bookID → 书名
	items map[int]*fakeItem
	next  int
}

type fakeItem struct {
	ID       int `json:"id"`
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

func newFakeCartBackend() *fakeCartBackend {
	return &fakeCartBackend{
		stock: map[int]int{5: 3, 6: 10},
		title: map[int]string{5: "Đắc Nhân Tâm", 6: "Nhà Giả Kim"},
		items: make(map[int]*fakeItem),
		next:  100,
	}
}

func (f *fakeCartBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscan(r.PathValue("id"), &id)
		f.mu.Lock()
		stock, ok := f.stock[id]
		title := f.title[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": "not found"}`)
			return
		}
		fmt.Fprintf(w, `{"book": {"id": %d, "title": %q, "price": 50000, "stock": %d}}`, id, title, stock)
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var out []map[string]interface{}
		for _, it := range f.items {
			out = append(out, map[string]interface{}{
				"id": it.ID, "book_id": it.BookID, "quantity": it.Quantity,
				"book": map[string]interface{}{"id": it.BookID, "title": f.title[it.BookID], "price": 50000, "stock": f.stock[it.BookID]},
			})
		}
		if out == nil {
			out = []map[string]interface{}{}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"cart": out})
	})
	mux.HandleFunc("POST /cart", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BookID   int `json:"book_id"`
			Quantity int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.Quantity > f.stock[req.BookID] {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "not enough stock"}`)
			return
		}
		for _, it := range f.items {
			if it.BookID == req.BookID {
				it.Quantity += req.Quantity
				json.NewEncoder(w).Encode(map[string]interface{}{"cart_item": it})
				return
			}
		}
		f.next++
		it := &fakeItem{ID: f.next, BookID: req.BookID, Quantity: req.Quantity}
		f.items[it.ID] = it
		json.NewEncoder(w).Encode(map[string]interface{}{"cart_item": it})
	})
	mux.HandleFunc("PUT /cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscan(r.PathValue("id"), &id)
		var req struct {
			Quantity int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		it, ok := f.items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": "not found"}`)
			return
		}
		it.Quantity = req.Quantity
		json.NewEncoder(w).Encode(map[string]interface{}{"cart_item": it})
	})
	mux.HandleFunc("DELETE /cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscan(r.PathValue("id"), &id)
		f.mu.Lock()
		delete(f.items, id)
		f.mu.Unlock()
		fmt.Fprint(w, `{"message": "ok"}`)
	})
	return mux
}

func newTestHandler(t *testing.T) (*Handler, *fakeCartBackend, *toast.MemoryStore) {
	t.Helper()
	backend := newFakeCartBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client, err := upstream.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	toastStore := toast.NewMemoryStore()
	return NewHandler(client, toast.NewHandler(toastStore)), backend, toastStore
}

// withSession 给请求挂上已登录会话
func withSession(req *http.Request) *http.Request {
	s := &session.Session{ID: "test-session"}
	return req.WithContext(auth.WithSession(req.Context(), s))
}

// TestAdd_MergesQuantity 重复加购同一本书合并为一行
func TestAdd_MergesQuantity(t *testing.T) {
	h, backend, _ := newTestHandler(t)

	for i := 0; i < 2; i++ {
		req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 6, "quantity": 2}`)))
		w := httptest.NewRecorder()
		h.Add(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("add #%d: status = %d, body %s", i, w.Code, w.Body.String())
		}
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.items) != 1 {
		t.Fatalf("items = %d, want 1 (merged)", len(backend.items))
	}
	for _, it := range backend.items {
		if it.Quantity != 4 {
			t.Errorf("quantity = %d, want 4", it.Quantity)
		}
	}
}

// TestAdd_ClampsToStock 超过库存的数量被夹到库存并推 warning
func TestAdd_ClampsToStock(t *testing.T) {
	h, backend, toastStore := newTestHandler(t)

	// 书 5 库存 3，请求 10
	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 5, "quantity": 10}`)))
	w := httptest.NewRecorder()
	h.Add(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	backend.mu.Lock()
	for _, it := range backend.items {
		if it.Quantity != 3 {
			t.Errorf("quantity = %d, want clamped to 3", it.Quantity)
		}
	}
	backend.mu.Unlock()

	toasts, _ := toastStore.Drain(context.Background(), "test-session")
	if len(toasts) != 1 || toasts[0].Severity != toast.SeverityWarning {
		t.Errorf("toasts = %+v, want one warning", toasts)
	}
}

// TestAdd_OutOfStock 零库存直接 400
func TestAdd_OutOfStock(t *testing.T) {
	h, backend, _ := newTestHandler(t)
	backend.stock[5] = 0

	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 5, "quantity": 1}`)))
	w := httptest.NewRecorder()
	h.Add(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// TestAdd_UnknownBook 后端 404 透传
func TestAdd_UnknownBook(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 999, "quantity": 1}`)))
	w := httptest.NewRecorder()
	h.Add(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

// TestUpdate_ClampsToStock 改数量同样受库存约束
func TestUpdate_ClampsToStock(t *testing.T) {
	h, backend, toastStore := newTestHandler(t)

	// 先加一行（书 5 库存 3）
	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 5, "quantity": 1}`)))
	h.Add(httptest.NewRecorder(), req)

	var itemID int
	backend.mu.Lock()
	for id := range backend.items {
		itemID = id
	}
	backend.mu.Unlock()

	req = withSession(httptest.NewRequest("PUT", fmt.Sprintf("/api/cart/%d", itemID), strings.NewReader(`{"quantity": 99}`)))
	req.SetPathValue("id", fmt.Sprint(itemID))
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	backend.mu.Lock()
	if got := backend.items[itemID].Quantity; got != 3 {
		t.Errorf("quantity = %d, want 3", got)
	}
	backend.mu.Unlock()

	toasts, _ := toastStore.Drain(context.Background(), "test-session")
	if len(toasts) == 0 {
		t.Error("expected a warning toast for clamped quantity")
	}
}

// TestList_Total 列表响应带合计
func TestList_Total(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 6, "quantity": 2}`)))
	h.Add(httptest.NewRecorder(), req)

	req = withSession(httptest.NewRequest("GET", "/api/cart", nil))
	w := httptest.NewRecorder()
	h.List(w, req)

	var resp struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 100000 {
		t.Errorf("total = %v, want 100000 (2 × 50000)", resp.Total)
	}
}

// TestRemove 移除一行
func TestRemove(t *testing.T) {
	h, backend, _ := newTestHandler(t)

	req := withSession(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"book_id": 6, "quantity": 1}`)))
	h.Add(httptest.NewRecorder(), req)

	var itemID int
	backend.mu.Lock()
	for id := range backend.items {
		itemID = id
	}
	backend.mu.Unlock()

	req = withSession(httptest.NewRequest("DELETE", fmt.Sprintf("/api/cart/%d", itemID), nil))
	req.SetPathValue("id", fmt.Sprint(itemID))
	w := httptest.NewRecorder()
	h.Remove(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	backend.mu.Lock()
	if len(backend.items) != 0 {
		t.Error("item should be removed")
	}
	backend.mu.Unlock()
}
