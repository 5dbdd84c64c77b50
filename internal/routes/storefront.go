package routes

import (
	"github.com/rcabrera/tindahan/internal/router"
)

// RegisterStorefrontRoutes registers the customer-facing API routes.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Cart
	r.Post("/api/cart", deps.CartHandler.Add)
	r.Get("/api/cart/{customerID}", deps.CartHandler.Get)
	r.Delete("/api/cart/item", deps.CartHandler.Remove)
	r.Patch("/api/cart/item", deps.CartHandler.SetQuantity)

	// Checkout and orders
	r.Post("/api/orders/checkout", deps.OrderHandler.Checkout)
	r.Get("/api/orders/customer/{customerID}", deps.OrderHandler.List)
	r.Get("/api/orders/customer/{customerID}/active", deps.OrderHandler.ListActive)
	r.Get("/api/orders/customer/{customerID}/history", deps.OrderHandler.ListHistory)
	r.Get("/api/orders/{orderID}", deps.OrderHandler.Get)
	r.Put("/api/orders/{orderID}/cancel", deps.OrderHandler.Cancel)

	// Notifications
	r.Get("/api/orders/notifications/{customerID}", deps.NotificationHandler.List)
	r.Put("/api/orders/notifications/read", deps.NotificationHandler.MarkRead)

	// Chat
	r.Get("/api/chat/{customerID}", deps.ChatHandler.Get)
	r.Get("/api/chat/{customerID}/history", deps.ChatHandler.History)
	r.Get("/api/chat/{customerID}/unread", deps.ChatHandler.UnreadCount)
	r.Post("/api/chat/send", deps.ChatHandler.Send)
	r.Put("/api/chat/read", deps.ChatHandler.MarkRead)
	r.Delete("/api/chat/{customerID}", deps.ChatHandler.Delete)
}
