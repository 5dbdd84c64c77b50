package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
)

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := statusForCode(tt.code); got != tt.expected {
				t.Errorf("statusForCode(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestError_DomainErrors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "validation error surfaces its message",
			err:             domain.Invalid("cart.add_item", "Quantity must be a positive integer"),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Quantity must be a positive integer",
		},
		{
			name:            "not found",
			err:             domain.ErrOrderNotFound,
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Order not found",
		},
		{
			name:            "forbidden",
			err:             domain.ErrNotOrderOwner,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Unauthorized",
		},
		{
			name:            "internal details are hidden",
			err:             errors.New("pq: connection refused"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			Error(rec, req, logger, tt.err)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Message != tt.expectedMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.expectedMessage)
			}
		})
	}
}

func TestError_StockErrorShape(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	productID := uuid.New()

	err := domain.NewStockError("checkout", []domain.Shortage{
		{ProductID: productID, ProductName: "Coffee", AvailableStock: 2, RequestedQuantity: 5},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", nil)
	rec := httptest.NewRecorder()
	Error(rec, req, logger, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Message           string `json:"message"`
		InsufficientStock []struct {
			ProductID         string `json:"productId"`
			ProductName       string `json:"productName"`
			AvailableStock    int32  `json:"availableStock"`
			RequestedQuantity int32  `json:"requestedQuantity"`
		} `json:"insufficientStock"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Message != "Insufficient stock for some items" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.InsufficientStock) != 1 {
		t.Fatalf("insufficientStock has %d entries", len(resp.InsufficientStock))
	}
	item := resp.InsufficientStock[0]
	if item.ProductID != productID.String() || item.AvailableStock != 2 || item.RequestedQuantity != 5 {
		t.Errorf("unexpected shortage entry: %+v", item)
	}
}

func TestBind_ValidationFailure(t *testing.T) {
	type payload struct {
		CustomerID uuid.UUID `json:"customerId" validate:"required"`
		Quantity   int32     `json:"quantity" validate:"required,gt=0"`
	}

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"customerId": `},
		{"missing fields", `{}`},
		{"zero quantity", `{"customerId":"` + uuid.New().String() + `","quantity":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))

			var dst payload
			err := Bind(req, &dst)
			if err == nil {
				t.Fatal("expected an error")
			}
			if domain.ErrorCode(err) != domain.EINVALID {
				t.Errorf("code = %q, want EINVALID", domain.ErrorCode(err))
			}
		})
	}
}
