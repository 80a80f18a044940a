package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/i18n"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
	"github.com/ury-pos/pos-core/internal/service"
)

type httpFixture struct {
	voids    *MockVoidOperations
	orders   *MockOrderStatusReader
	errorLog *MockErrorLogReader
	health   func(ctx context.Context) error
}

func (f *httpFixture) router() http.Handler {
	if f.voids == nil {
		f.voids = &MockVoidOperations{}
	}
	if f.orders == nil {
		f.orders = &MockOrderStatusReader{}
	}
	if f.errorLog == nil {
		f.errorLog = &MockErrorLogReader{}
	}
	messages, err := i18n.New("ar")
	if err != nil {
		panic(err)
	}
	return NewHTTPHandler(f.voids, f.orders, f.errorLog, f.health, messages, logger.Nop()).Routes(time.Second)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		health func(ctx context.Context) error
		want   int
	}{
		{name: "noCheck", want: http.StatusOK},
		{name: "healthy", health: func(context.Context) error { return nil }, want: http.StatusOK},
		{name: "databaseDown", health: func(context.Context) error { return stderrors.New("dial tcp: refused") }, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &httpFixture{health: tt.health}
			rec := serve(f.router(), httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestValidateManagerHTTP(t *testing.T) {
	var got service.ValidateManagerRequest
	f := &httpFixture{voids: &MockVoidOperations{
		ValidateManagerFunc: func(ctx context.Context, rc service.RequestContext, req service.ValidateManagerRequest) service.Result {
			got = req
			return service.Fail(service.KindUnauthorized, "not allowed")
		},
	}}

	body := `{"username":"mgr","password":"pw","pos_profile":"Main"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/void/validate-manager", strings.NewReader(body))
	req.Header.Set(HeaderSessionUser, "cashier@ury")
	req.Header.Set(HeaderBranch, "Downtown")
	req.Header.Set(HeaderAcceptLanguage, "en")
	rec := serve(f.router(), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Username != "mgr" || got.Password != "pw" || got.POSProfile != "Main" {
		t.Errorf("request = %+v", got)
	}
	rc := f.voids.lastRC
	if rc.SessionUser != "cashier@ury" || rc.Branch != "Downtown" || rc.Locale != "en" {
		t.Errorf("request context = %+v", rc)
	}

	var resp ResultResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Kind != string(service.KindUnauthorized) || resp.Message != "not allowed" {
		t.Errorf("response = %+v", resp)
	}
}

func TestVoidEndpointsRejectBadBody(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		want   string
	}{
		{name: "validateManagerArabicDefault", path: "/api/v1/void/validate-manager", want: "الطلب غير صالح."},
		{name: "voidItemsEnglish", path: "/api/v1/void/items", accept: "en", want: "Invalid request body."},
		{name: "unsupportedLanguage", path: "/api/v1/void/items", accept: "fr", want: "الطلب غير صالح."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &httpFixture{}
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader("{"))
			if tt.accept != "" {
				req.Header.Set(HeaderAcceptLanguage, tt.accept)
			}
			rec := serve(f.router(), req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp ResultResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Success || resp.Message != tt.want {
				t.Errorf("response = %+v, want message %q", resp, tt.want)
			}
		})
	}
}

func TestProcessVoidItemHTTPDecodesEntries(t *testing.T) {
	var got service.ProcessVoidItemRequest
	f := &httpFixture{voids: &MockVoidOperations{
		ProcessVoidItemFunc: func(ctx context.Context, rc service.RequestContext, req service.ProcessVoidItemRequest) service.Result {
			got = req
			return service.OK()
		},
	}}

	body := `{
		"invoice_no": "INV-1",
		"items": [
			{"item": {"item": "TEA", "rate": "2.50"}, "quantity": 2},
			{"item": null, "quantity": 1},
			{"item": {"item": "CAKE", "rate": 4}}
		],
		"accountability": "Kitchen",
		"notes": "burnt",
		"username": "mgr",
		"password": "pw",
		"pos_profile": "Main",
		"session_user": "cashier@ury"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/void/items", strings.NewReader(body))
	rec := serve(f.router(), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.InvoiceNo != "INV-1" || got.Accountability != "Kitchen" || got.SessionUser != "cashier@ury" {
		t.Errorf("request = %+v", got)
	}
	if len(got.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(got.Items))
	}
	first := got.Items[0]
	if first.Item == nil || first.Item.Item != "TEA" || first.Item.Rate.String() != "2.5" {
		t.Errorf("first item = %+v", first.Item)
	}
	if first.Quantity == nil || first.Quantity.String() != "2" {
		t.Errorf("first quantity = %v", first.Quantity)
	}
	if got.Items[1].Item != nil {
		t.Errorf("null item should decode to nil")
	}
	if got.Items[2].Quantity != nil {
		t.Errorf("missing quantity should decode to nil")
	}

	var resp ResultResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Success {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetOrderStatusHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		orders     []service.OrderStatus
		wantStatus int
		wantError  string
	}{
		{
			name:       "missingParameter",
			err:        &service.OrderStatusError{Kind: service.KindMissingParameter, Message: "table and invoice are required"},
			wantStatus: http.StatusBadRequest,
			wantError:  "table and invoice are required",
		},
		{
			name:       "noOrders",
			err:        &service.OrderStatusError{Kind: service.KindNoOrdersFound, Message: "No orders found"},
			wantStatus: http.StatusNotFound,
			wantError:  "No orders found",
		},
		{
			name:       "storeFailure",
			err:        errors.Wrap(stderrors.New("conn reset"), errors.ErrCodeInternal, "order status unavailable"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "order status unavailable",
		},
		{
			name: "ok",
			orders: []service.OrderStatus{{
				OrderID:       "KOT-1",
				Table:         "T1",
				Invoice:       "INV-1",
				ElapsedTime:   3.5,
				RemainingTime: 6.5,
				OrderStatus:   "Ready For Prepare",
				Items:         []service.OrderItemStatus{{ItemName: "Tea", Quantity: 2, PreparationTime: 5, IsReady: true}},
				Type:          "New Order",
			}},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var table, invoice string
			f := &httpFixture{orders: &MockOrderStatusReader{
				GetOrderStatusFunc: func(ctx context.Context, rc service.RequestContext, tb, inv string) ([]service.OrderStatus, error) {
					table, invoice = tb, inv
					return tt.orders, tt.err
				},
			}}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/status?table=T1&invoice=INV-1", nil)
			rec := serve(f.router(), req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if table != "T1" || invoice != "INV-1" {
				t.Errorf("query = %q %q", table, invoice)
			}
			if tt.wantError != "" {
				var resp ErrorResponse
				json.NewDecoder(rec.Body).Decode(&resp)
				if resp.Error != tt.wantError {
					t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
				}
				return
			}
			var resp []OrderStatus
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp) != 1 || resp[0].OrderID != "KOT-1" || resp[0].RemainingTime != 6.5 || !resp[0].Items[0].IsReady {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestListErrorLogHTTP(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotLimit int
	f := &httpFixture{errorLog: &MockErrorLogReader{
		ListRecentFunc: func(ctx context.Context, limit int) ([]*repository.ErrorLogEntry, error) {
			gotLimit = limit
			return []*repository.ErrorLogEntry{{ID: "e1", Title: "Void Processing Error", Message: "boom", CreatedAt: created}}, nil
		},
	}}
	router := f.router()

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/error-log?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}
	var resp []ErrorLogEntry
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp) != 1 || resp[0].CreatedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("response = %+v", resp)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/error-log?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/error-log", nil))
	if rec.Code != http.StatusOK || gotLimit != 0 {
		t.Errorf("default limit: status = %d, limit = %d", rec.Code, gotLimit)
	}
}

func TestListErrorLogHTTPStoreFailure(t *testing.T) {
	f := &httpFixture{errorLog: &MockErrorLogReader{
		ListRecentFunc: func(ctx context.Context, limit int) ([]*repository.ErrorLogEntry, error) {
			return nil, stderrors.New("relation does not exist")
		},
	}}
	rec := serve(f.router(), httptest.NewRequest(http.MethodGet, "/api/v1/error-log", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "internal error" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestUnknownRoute(t *testing.T) {
	f := &httpFixture{}
	rec := serve(f.router(), httptest.NewRequest(http.MethodGet, "/api/v1/void/items", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
