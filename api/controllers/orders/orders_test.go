package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internalorders "github.com/angelmondragon/garmentz-backend/internal/orders"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
)

type stubOrdersService struct {
	recordFn func(ctx context.Context, input internalorders.StatusChangeInput) (*internalorders.StatusChange, error)
}

func (s stubOrdersService) RecordStatusChange(ctx context.Context, input internalorders.StatusChangeInput) (*internalorders.StatusChange, error) {
	return s.recordFn(ctx, input)
}

func withOrderID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	supplierID := uuid.New()
	svc := stubOrdersService{recordFn: func(_ context.Context, input internalorders.StatusChangeInput) (*internalorders.StatusChange, error) {
		if input.OrderID != orderID || input.Status != enums.OrderStatusDelivered {
			t.Fatalf("unexpected input %+v", input)
		}
		return &internalorders.StatusChange{OrderID: orderID, SupplierID: &supplierID, From: enums.OrderStatusShipped, To: enums.OrderStatusDelivered, Changed: true}, nil
	}}

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"delivered"}`)), orderID.String())
	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalorders.StatusChange `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Changed || envelope.Data.To != enums.OrderStatusDelivered {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := stubOrdersService{recordFn: func(context.Context, internalorders.StatusChangeInput) (*internalorders.StatusChange, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"lost"}`)), uuid.NewString())
	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	req = withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"delivered"}`)), "nope")
	resp = httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusMapsServiceErrors(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeNotFound:      http.StatusNotFound,
		pkgerrors.CodeStateConflict: http.StatusUnprocessableEntity,
	}
	for code, want := range cases {
		svc := stubOrdersService{recordFn: func(context.Context, internalorders.StatusChangeInput) (*internalorders.StatusChange, error) {
			return nil, pkgerrors.New(code, "nope")
		}}
		req := withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"shipped"}`)), uuid.NewString())
		resp := httptest.NewRecorder()
		UpdateStatus(svc, nil).ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d got %d", code, want, resp.Code)
		}
	}
}
