package storefront_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/handler/storefront"
	"github.com/rcabrera/tindahan/internal/memory"
	"github.com/rcabrera/tindahan/internal/router"
	"github.com/rcabrera/tindahan/internal/routes"
	"github.com/rcabrera/tindahan/internal/service"
)

type fixture struct {
	store  *memory.Store
	router *router.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	cartService := service.NewCartService(store, store)
	checkoutService := service.NewCheckoutService(store, store, store, store, nil)
	orderService := service.NewOrderService(store, store, nil, nil)
	chatService := service.NewChatService(store, store, nil, nil)

	r := router.New()
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		CartHandler:         storefront.NewCartHandler(cartService, nil),
		OrderHandler:        storefront.NewOrderHandler(checkoutService, orderService, nil),
		NotificationHandler: storefront.NewNotificationHandler(orderService, nil),
		ChatHandler:         storefront.NewChatHandler(chatService, nil),
	})
	return &fixture{store: store, router: r}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seed(t *testing.T, stock int32, cartQty int32) (*domain.Customer, *domain.Product) {
	t.Helper()
	ctx := context.Background()

	customer := &domain.Customer{Name: "maria", Email: "maria@example.com"}
	require.NoError(t, f.store.CreateCustomer(ctx, customer))

	product := &domain.Product{
		Name:     "Coffee",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, f.store.CreateProduct(ctx, product))

	if cartQty > 0 {
		cart, err := f.store.CreateCart(ctx, customer.ID)
		require.NoError(t, err)
		require.NoError(t, f.store.AddItem(ctx, cart.ID, product.ID, cartQty))
	}
	return customer, product
}

func TestCheckoutEndpoint_Created(t *testing.T) {
	f := newFixture(t)
	customer, product := f.seed(t, 5, 2)

	body := fmt.Sprintf(`{"customerId":%q,"deliveryType":"pickup","paymentMethod":"cash"}`, customer.ID)
	rec := f.do(t, http.MethodPost, "/api/orders/checkout", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, customer.ID, order.CustomerID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.TotalAmount))
}

func TestCheckoutEndpoint_InsufficientStockShape(t *testing.T) {
	f := newFixture(t)
	customer, product := f.seed(t, 1, 3)

	body := fmt.Sprintf(`{"customerId":%q,"deliveryType":"pickup","paymentMethod":"cash"}`, customer.ID)
	rec := f.do(t, http.MethodPost, "/api/orders/checkout", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message           string            `json:"message"`
		InsufficientStock []domain.Shortage `json:"insufficientStock"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Insufficient stock for some items", resp.Message)
	require.Len(t, resp.InsufficientStock, 1)
	assert.Equal(t, product.ID, resp.InsufficientStock[0].ProductID)
	assert.Equal(t, int32(1), resp.InsufficientStock[0].AvailableStock)
	assert.Equal(t, int32(3), resp.InsufficientStock[0].RequestedQuantity)
}

func TestCheckoutEndpoint_BadRequests(t *testing.T) {
	f := newFixture(t)
	customer, _ := f.seed(t, 5, 2)

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{}`},
		{"malformed json", `{"customerId":`},
		{
			"invalid delivery type",
			fmt.Sprintf(`{"customerId":%q,"deliveryType":"teleport","paymentMethod":"cash"}`, customer.ID),
		},
		{
			"delivery without address",
			fmt.Sprintf(`{"customerId":%q,"deliveryType":"delivery","paymentMethod":"gcash"}`, customer.ID),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/orders/checkout", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCancelEndpoint(t *testing.T) {
	f := newFixture(t)
	customer, product := f.seed(t, 5, 3)

	body := fmt.Sprintf(`{"customerId":%q,"deliveryType":"pickup","paymentMethod":"cash"}`, customer.ID)
	rec := f.do(t, http.MethodPost, "/api/orders/checkout", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))

	// A stranger cannot cancel.
	rec = f.do(t, http.MethodPut, "/api/orders/"+order.ID.String()+"/cancel",
		fmt.Sprintf(`{"customerId":%q}`, uuid.New()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can, and stock comes back.
	rec = f.do(t, http.MethodPut, "/api/orders/"+order.ID.String()+"/cancel",
		fmt.Sprintf(`{"customerId":%q}`, customer.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := f.store.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(5), p.Stock)
}

func TestOrderListEndpoints_EmptyIsArray(t *testing.T) {
	f := newFixture(t)
	customer, _ := f.seed(t, 5, 0)

	for _, path := range []string{
		"/api/orders/customer/" + customer.ID.String(),
		"/api/orders/customer/" + customer.ID.String() + "/active",
		"/api/orders/customer/" + customer.ID.String() + "/history",
		"/api/orders/notifications/" + customer.ID.String(),
	} {
		rec := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
	}
}

func TestGetOrderEndpoint_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/orders/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
