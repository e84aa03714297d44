package statemachine

import (
	"errors"

	"emptio-backend/models"
)

// AllStatuses is the closed set of order statuses, in workflow order.
var AllStatuses = []models.OrderStatus{
	models.StatusPlaced,
	models.StatusConfirmed,
	models.StatusShipped,
	models.StatusOutForDelivery,
	models.StatusDelivered,
	models.StatusCancelled,
	models.StatusReturned,
}

var statusSet = func() map[models.OrderStatus]bool {
	m := make(map[models.OrderStatus]bool, len(AllStatuses))
	for _, s := range AllStatuses {
		m[s] = true
	}
	return m
}()

// notCancellable lists statuses from which a customer cancellation is
// rejected: once the order left the warehouse it can only be returned, not
// cancelled.
var notCancellable = map[models.OrderStatus]bool{
	models.StatusShipped:        true,
	models.StatusOutForDelivery: true,
	models.StatusDelivered:      true,
}

var (
	ErrCannotCancel = errors.New("order cannot be cancelled at this stage")
	ErrCannotReturn = errors.New("order must be delivered to request return")
)

// IsValidStatus reports membership in the closed status set.
func IsValidStatus(status models.OrderStatus) bool {
	return statusSet[status]
}

// IsTerminal reports whether the status ends the normal workflow.
// The generic admin transition path does not enforce this; the product
// decision on whether it should is still open.
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusCancelled || status == models.StatusReturned
}

// CanCancel checks the customer cancellation precondition.
func CanCancel(current models.OrderStatus) error {
	if notCancellable[current] {
		return ErrCannotCancel
	}
	return nil
}

// CanReturn checks the return-request precondition.
func CanReturn(current models.OrderStatus) error {
	if current != models.StatusDelivered {
		return ErrCannotReturn
	}
	return nil
}

// LifecycleStep describes one stage of the normal fulfilment flow, used by
// the informational endpoint.
type LifecycleStep struct {
	Status      models.OrderStatus `json:"status"`
	Description string             `json:"description"`
}

// Lifecycle returns the normal fulfilment progression plus the two terminal
// exits, for documentation purposes.
func Lifecycle() []LifecycleStep {
	return []LifecycleStep{
		{models.StatusPlaced, "Order received, awaiting confirmation"},
		{models.StatusConfirmed, "Order confirmed, delivery estimate locked in"},
		{models.StatusShipped, "Order handed to the carrier"},
		{models.StatusOutForDelivery, "Order is on the delivery vehicle"},
		{models.StatusDelivered, "Order delivered to the customer"},
		{models.StatusCancelled, "Terminal: cancelled before shipping"},
		{models.StatusReturned, "Terminal: return requested after delivery"},
	}
}
