package fulfillment

import (
	"time"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

// Request is one attempted status transition by one actor.
type Request struct {
	OrderNumber string
	Actor       orders.Actor
	ActorID     string
	Target      orders.Status

	// SHIPPED inputs. An empty DeliveryPartnerID means the seller ships
	// the parcel themselves; the tracking number is always required.
	DeliveryPartnerID string
	TrackingNumber    string
}

// Guard validates a transition request against the loaded order without
// touching any state. Rejections here leave status and version exactly
// as they were.
func Guard(o *orders.Order, req Request, now time.Time, returnWindow time.Duration) error {
	if req.Target == orders.StatusCancelled && !orders.Cancellable(o.Status) {
		switch o.Status {
		case orders.StatusProcessing, orders.StatusShipped, orders.StatusOutForDelivery:
			return orders.ErrCancellationWindowClosed
		default:
			return orders.ErrInvalidTransition
		}
	}
	if !orders.CanTransition(o.Status, req.Target) {
		return orders.ErrInvalidTransition
	}
	if !orders.ActorAllowed(o.Status, req.Target, req.Actor) {
		return orders.ErrActorNotAllowed
	}
	if err := checkOwnership(o, req); err != nil {
		return err
	}

	switch req.Target {
	case orders.StatusConfirmed:
		// prepaid orders confirm only after the gateway completed payment
		if o.PaymentMethod != orders.PaymentMethodCOD && o.PaymentStatus != orders.PaymentCompleted {
			return orders.ErrPaymentNotCompleted
		}
	case orders.StatusShipped:
		if req.TrackingNumber == "" {
			return orders.ErrTrackingRequired
		}
	case orders.StatusReturned:
		if o.DeliveredAt == nil || now.After(o.DeliveredAt.Add(returnWindow)) {
			return orders.ErrReturnWindowClosed
		}
	}
	return nil
}

// checkOwnership ties the acting party to the order when an actor id is
// supplied: customers to their own orders, sellers to theirs, assigned
// delivery partners to their parcels.
func checkOwnership(o *orders.Order, req Request) error {
	if req.ActorID == "" {
		return nil
	}
	switch req.Actor {
	case orders.ActorCustomer:
		if req.ActorID != o.UserID {
			return orders.ErrActorNotAllowed
		}
	case orders.ActorSeller:
		if req.ActorID != o.SellerID {
			return orders.ErrActorNotAllowed
		}
	case orders.ActorDelivery:
		if o.DeliveryPartnerID != "" && req.ActorID != o.DeliveryPartnerID {
			return orders.ErrActorNotAllowed
		}
	}
	return nil
}
