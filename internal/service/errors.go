package service

import (
	"github.com/rcabrera/tindahan/internal/domain"
)

// Cart errors - use domain.EINVALID / domain.ENOTFOUND
var (
	ErrNoItemsInCart = domain.Errorf(domain.EINVALID, "", "No items in cart")
)

// Order transition errors - use domain.EINVALID, messages name the required
// source state(s)
var (
	ErrPickupOrdersOnly    = domain.Errorf(domain.EINVALID, "", "This action is only for pickup orders")
	ErrDeliveryOrdersOnly  = domain.Errorf(domain.EINVALID, "", "This action is only for delivery orders")
	ErrOrderNotPending     = domain.Errorf(domain.EINVALID, "", "Order must be in pending status")
	ErrOrderNotFulfillable = domain.Errorf(domain.EINVALID, "", "Order must be ready for pickup or out for delivery to be completed")
	ErrCannotCancelAtStage = domain.Errorf(domain.EINVALID, "", "Order cannot be cancelled at this stage")
)
