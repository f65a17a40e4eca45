package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"joules-shop/internal/cart"
	"joules-shop/internal/catalog"
	"joules-shop/internal/middleware"
	"joules-shop/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type cartTestEnv struct {
	router   chi.Router
	registry *cart.Registry
	session  string
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	sessions := session.NewRedisStore(client, time.Hour)
	registry := cart.NewRegistry(time.Hour)
	t.Cleanup(registry.Close)

	cat := catalog.NewMemory(catalog.Seed())
	handler := NewCartHandler(registry, cat, sessions, logger)

	router := chi.NewRouter()
	router.Use(middleware.SessionMiddleware(sessions, time.Hour, logger))
	handler.RegisterRoutes(router)

	return &cartTestEnv{
		router:   router,
		registry: registry,
		session:  uuid.NewString(),
	}
}

func (e *cartTestEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: e.session})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode cart response: %v", err)
	}
	return resp
}

func TestCartViewStartsEmpty(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.do(t, "GET", "/api/cart", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decodeCart(t, w)
	if len(resp.Items) != 0 || resp.ItemCount != 0 {
		t.Errorf("Expected empty cart, got %+v", resp)
	}
	if resp.Total != "0.00" {
		t.Errorf("Expected total 0.00, got %s", resp.Total)
	}
}

func TestAddItemAndViewTotal(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Add: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "POST", "/api/cart/items", `{"product_id":"p2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Add: expected 200, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/cart/items", `{"product_id":"p2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Add: expected 200, got %d", w.Code)
	}

	w = env.do(t, "GET", "/api/cart", "")
	resp := decodeCart(t, w)

	if len(resp.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(resp.Items))
	}
	if resp.ItemCount != 3 {
		t.Errorf("Expected 3 units, got %d", resp.ItemCount)
	}
	if resp.Total != "129.99" {
		t.Errorf("Expected total 129.99, got %s", resp.Total)
	}
}

func TestAddUnknownProductReturns404(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p404"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = env.do(t, "GET", "/api/cart", "")
	if resp := decodeCart(t, w); len(resp.Items) != 0 {
		t.Error("Cart must stay empty after failed add")
	}
}

func TestAddFlashMessageAppearsOnceInView(t *testing.T) {
	env := newCartTestEnv(t)

	if w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p1"}`); w.Code != http.StatusOK {
		t.Fatalf("Add failed: %d", w.Code)
	}

	resp := decodeCart(t, env.do(t, "GET", "/api/cart", ""))
	if !strings.Contains(resp.Message, "added to cart") {
		t.Errorf("Expected an added-to-cart flash, got %q", resp.Message)
	}

	// One-shot: the next view has no message.
	resp = decodeCart(t, env.do(t, "GET", "/api/cart", ""))
	if resp.Message != "" {
		t.Errorf("Expected no flash on second view, got %q", resp.Message)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	env := newCartTestEnv(t)

	if w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p3"}`); w.Code != http.StatusOK {
		t.Fatalf("Add failed: %d", w.Code)
	}

	w := env.do(t, "PUT", "/api/cart/items/p3", `{"quantity":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Update: expected 200, got %d", w.Code)
	}

	resp := decodeCart(t, w)
	if resp.ItemCount != 4 {
		t.Errorf("Expected 4 units, got %d", resp.ItemCount)
	}
	if resp.Total != "222.00" {
		t.Errorf("Expected total 222.00, got %s", resp.Total)
	}
}

func TestUpdateItemToZeroRemovesIt(t *testing.T) {
	env := newCartTestEnv(t)

	if w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p1"}`); w.Code != http.StatusOK {
		t.Fatalf("Add failed: %d", w.Code)
	}

	w := env.do(t, "PUT", "/api/cart/items/p1", `{"quantity":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Update: expected 200, got %d", w.Code)
	}

	if resp := decodeCart(t, w); len(resp.Items) != 0 {
		t.Error("Quantity zero must remove the line")
	}
}

func TestUpdateUnknownItemReturns404(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.do(t, "PUT", "/api/cart/items/p1", `{"quantity":2}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	env := newCartTestEnv(t)

	if w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p1"}`); w.Code != http.StatusOK {
		t.Fatalf("Add failed: %d", w.Code)
	}

	w := env.do(t, "DELETE", "/api/cart/items/p1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Remove: expected 200, got %d", w.Code)
	}
	if resp := decodeCart(t, w); len(resp.Items) != 0 {
		t.Error("Expected empty cart after removal")
	}

	w = env.do(t, "DELETE", "/api/cart/items/p1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on removing an absent item, got %d", w.Code)
	}
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	env := newCartTestEnv(t)

	if w := env.do(t, "POST", "/api/cart/items", `{"product_id":"p1"}`); w.Code != http.StatusOK {
		t.Fatalf("Add failed: %d", w.Code)
	}

	// A second client with its own cookie sees an empty cart.
	other := &cartTestEnv{router: env.router, registry: env.registry, session: uuid.NewString()}
	resp := decodeCart(t, other.do(t, "GET", "/api/cart", ""))
	if len(resp.Items) != 0 {
		t.Error("Another session must not see this session's cart")
	}
}
