// Package routes wires handlers onto the router.
package routes

import (
	"github.com/rcabrera/tindahan/internal/handler/admin"
	"github.com/rcabrera/tindahan/internal/handler/storefront"
)

// StorefrontDeps contains the customer-facing handlers.
type StorefrontDeps struct {
	CartHandler         *storefront.CartHandler
	OrderHandler        *storefront.OrderHandler
	NotificationHandler *storefront.NotificationHandler
	ChatHandler         *storefront.ChatHandler
}

// AdminDeps contains the store-operator handlers.
type AdminDeps struct {
	OrderHandler *admin.OrderHandler
	ChatHandler  *admin.ChatHandler
}
