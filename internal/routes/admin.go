package routes

import (
	"github.com/rcabrera/tindahan/internal/router"
)

// RegisterAdminRoutes registers the store-operator API routes.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	// Order dashboard
	r.Get("/api/admin/orders", deps.OrderHandler.List)
	r.Get("/api/admin/orders/pending", deps.OrderHandler.ListPending)
	r.Get("/api/admin/orders/pickup", deps.OrderHandler.ListPickupQueue)
	r.Get("/api/admin/orders/delivery", deps.OrderHandler.ListDeliveryQueue)
	r.Get("/api/admin/orders/statistics", deps.OrderHandler.Statistics)
	r.Get("/api/admin/orders/{orderID}", deps.OrderHandler.Get)

	// Fulfillment transitions
	r.Put("/api/admin/orders/{orderID}/ready-for-pickup", deps.OrderHandler.MarkReadyForPickup)
	r.Put("/api/admin/orders/{orderID}/out-for-delivery", deps.OrderHandler.MarkOutForDelivery)
	r.Put("/api/admin/orders/{orderID}/complete", deps.OrderHandler.Complete)
	r.Put("/api/admin/orders/{orderID}/cancel", deps.OrderHandler.Cancel)
	r.Put("/api/admin/orders/{orderID}/notes", deps.OrderHandler.UpdateNotes)

	// Chat dashboard
	r.Get("/api/admin/chats", deps.ChatHandler.List)
	r.Post("/api/admin/chat/send", deps.ChatHandler.Send)
	r.Put("/api/admin/chat/read", deps.ChatHandler.MarkRead)
	r.Put("/api/admin/chat/close", deps.ChatHandler.Close)
}
