package fulfillment

import (
	"errors"
	"testing"
	"time"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

const window = 7 * 24 * time.Hour

func baseOrder(status orders.Status) *orders.Order {
	return &orders.Order{
		OrderNumber:   "PP-20260831-AABBCCDD",
		UserID:        "U-1",
		SellerID:      "S-01",
		Status:        status,
		PaymentStatus: orders.PaymentPending,
		PaymentMethod: orders.PaymentMethodCOD,
		Subtotal:      100,
		FinalAmount:   100,
		Items:         []orders.Item{{ProductID: "P-1", Qty: 1, UnitPrice: 100, LineTotal: 100}},
	}
}

func TestGuardHappyPath(t *testing.T) {
	now := time.Now()

	steps := []struct {
		from, to orders.Status
		actor    orders.Actor
		req      Request
	}{
		{orders.StatusPending, orders.StatusConfirmed, orders.ActorSeller, Request{}},
		{orders.StatusConfirmed, orders.StatusProcessing, orders.ActorSeller, Request{}},
		{orders.StatusProcessing, orders.StatusShipped, orders.ActorSeller, Request{TrackingNumber: "TRK-1"}},
		{orders.StatusShipped, orders.StatusOutForDelivery, orders.ActorDelivery, Request{}},
		{orders.StatusOutForDelivery, orders.StatusDelivered, orders.ActorDelivery, Request{}},
	}
	for _, s := range steps {
		o := baseOrder(s.from)
		req := s.req
		req.Actor = s.actor
		req.Target = s.to
		if err := Guard(o, req, now, window); err != nil {
			t.Errorf("%s -> %s by %s: %v", s.from, s.to, s.actor, err)
		}
	}
}

func TestGuardLateCancellation(t *testing.T) {
	now := time.Now()
	for _, from := range []orders.Status{orders.StatusProcessing, orders.StatusShipped, orders.StatusOutForDelivery} {
		o := baseOrder(from)
		err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusCancelled}, now, window)
		if !errors.Is(err, orders.ErrCancellationWindowClosed) {
			t.Errorf("cancel from %s: got %v, want ErrCancellationWindowClosed", from, err)
		}
	}

	// terminal states are plain invalid transitions, not a closed window
	for _, from := range []orders.Status{orders.StatusCancelled, orders.StatusReturned, orders.StatusDelivered} {
		o := baseOrder(from)
		err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusCancelled}, now, window)
		if !errors.Is(err, orders.ErrInvalidTransition) {
			t.Errorf("cancel from %s: got %v, want ErrInvalidTransition", from, err)
		}
	}
}

func TestGuardCancelActors(t *testing.T) {
	now := time.Now()

	o := baseOrder(orders.StatusPending)
	if err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusCancelled}, now, window); err != nil {
		t.Errorf("customer cancel at PENDING: %v", err)
	}

	// once confirmed only the seller may cancel
	o = baseOrder(orders.StatusConfirmed)
	err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusCancelled}, now, window)
	if !errors.Is(err, orders.ErrActorNotAllowed) {
		t.Errorf("customer cancel at CONFIRMED: got %v, want ErrActorNotAllowed", err)
	}
	if err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusCancelled}, now, window); err != nil {
		t.Errorf("seller cancel at CONFIRMED: %v", err)
	}
}

func TestGuardPaymentGate(t *testing.T) {
	now := time.Now()

	o := baseOrder(orders.StatusPending)
	o.PaymentMethod = orders.PaymentMethodCard
	err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusConfirmed}, now, window)
	if !errors.Is(err, orders.ErrPaymentNotCompleted) {
		t.Fatalf("prepaid confirm without payment: got %v, want ErrPaymentNotCompleted", err)
	}

	o.PaymentStatus = orders.PaymentCompleted
	if err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusConfirmed}, now, window); err != nil {
		t.Fatalf("prepaid confirm after payment: %v", err)
	}

	// COD confirms with payment still pending
	o = baseOrder(orders.StatusPending)
	if err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusConfirmed}, now, window); err != nil {
		t.Fatalf("cod confirm: %v", err)
	}
}

func TestGuardTrackingRequired(t *testing.T) {
	now := time.Now()
	o := baseOrder(orders.StatusProcessing)
	err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusShipped}, now, window)
	if !errors.Is(err, orders.ErrTrackingRequired) {
		t.Fatalf("ship without tracking: got %v, want ErrTrackingRequired", err)
	}
}

func TestGuardReturnWindow(t *testing.T) {
	now := time.Now()

	o := baseOrder(orders.StatusDelivered)
	deliveredAt := now.Add(-2 * 24 * time.Hour)
	o.DeliveredAt = &deliveredAt
	if err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusReturned}, now, window); err != nil {
		t.Fatalf("return inside window: %v", err)
	}

	late := now.Add(-8 * 24 * time.Hour)
	o.DeliveredAt = &late
	err := Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusReturned}, now, window)
	if !errors.Is(err, orders.ErrReturnWindowClosed) {
		t.Fatalf("return outside window: got %v, want ErrReturnWindowClosed", err)
	}

	o.DeliveredAt = nil
	err = Guard(o, Request{Actor: orders.ActorCustomer, Target: orders.StatusReturned}, now, window)
	if !errors.Is(err, orders.ErrReturnWindowClosed) {
		t.Fatalf("return without delivered_at: got %v, want ErrReturnWindowClosed", err)
	}
}

func TestGuardOwnership(t *testing.T) {
	now := time.Now()

	o := baseOrder(orders.StatusPending)
	err := Guard(o, Request{Actor: orders.ActorCustomer, ActorID: "U-2", Target: orders.StatusCancelled}, now, window)
	if !errors.Is(err, orders.ErrActorNotAllowed) {
		t.Errorf("foreign customer: got %v, want ErrActorNotAllowed", err)
	}

	o = baseOrder(orders.StatusConfirmed)
	err = Guard(o, Request{Actor: orders.ActorSeller, ActorID: "S-99", Target: orders.StatusProcessing}, now, window)
	if !errors.Is(err, orders.ErrActorNotAllowed) {
		t.Errorf("foreign seller: got %v, want ErrActorNotAllowed", err)
	}

	o = baseOrder(orders.StatusShipped)
	o.DeliveryPartnerID = "D-1"
	err = Guard(o, Request{Actor: orders.ActorDelivery, ActorID: "D-2", Target: orders.StatusOutForDelivery}, now, window)
	if !errors.Is(err, orders.ErrActorNotAllowed) {
		t.Errorf("foreign partner: got %v, want ErrActorNotAllowed", err)
	}

	// unassigned parcel: any partner may pick it up
	o.DeliveryPartnerID = ""
	if err := Guard(o, Request{Actor: orders.ActorDelivery, ActorID: "D-2", Target: orders.StatusOutForDelivery}, now, window); err != nil {
		t.Errorf("unassigned parcel: %v", err)
	}
}

func TestGuardWrongActorOnEdge(t *testing.T) {
	now := time.Now()
	o := baseOrder(orders.StatusShipped)
	err := Guard(o, Request{Actor: orders.ActorSeller, Target: orders.StatusOutForDelivery}, now, window)
	if !errors.Is(err, orders.ErrActorNotAllowed) {
		t.Fatalf("seller on delivery edge: got %v, want ErrActorNotAllowed", err)
	}
}
