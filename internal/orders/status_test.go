package orders

import "testing"

func TestTransitionTable(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusReturned,
	}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:        true,
		{StatusPending, StatusCancelled}:        true,
		{StatusConfirmed, StatusProcessing}:     true,
		{StatusConfirmed, StatusCancelled}:      true,
		{StatusProcessing, StatusShipped}:       true,
		{StatusShipped, StatusOutForDelivery}:   true,
		{StatusOutForDelivery, StatusDelivered}: true,
		{StatusDelivered, StatusReturned}:       true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestActorAllowed(t *testing.T) {
	cases := []struct {
		from, to Status
		actor    Actor
		want     bool
	}{
		{StatusPending, StatusConfirmed, ActorSeller, true},
		{StatusPending, StatusConfirmed, ActorCustomer, false},
		{StatusPending, StatusCancelled, ActorCustomer, true},
		{StatusPending, StatusCancelled, ActorSeller, true},
		{StatusPending, StatusCancelled, ActorDelivery, false},
		{StatusConfirmed, StatusProcessing, ActorSeller, true},
		{StatusConfirmed, StatusCancelled, ActorSeller, true},
		{StatusConfirmed, StatusCancelled, ActorCustomer, false},
		{StatusProcessing, StatusShipped, ActorSeller, true},
		{StatusProcessing, StatusShipped, ActorDelivery, false},
		{StatusShipped, StatusOutForDelivery, ActorDelivery, true},
		{StatusShipped, StatusOutForDelivery, ActorSeller, false},
		{StatusOutForDelivery, StatusDelivered, ActorDelivery, true},
		{StatusDelivered, StatusReturned, ActorCustomer, true},
		{StatusDelivered, StatusReturned, ActorSeller, false},
	}
	for _, c := range cases {
		if got := ActorAllowed(c.from, c.to, c.actor); got != c.want {
			t.Errorf("ActorAllowed(%s, %s, %s) = %v, want %v", c.from, c.to, c.actor, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(StatusCancelled) {
		t.Error("CANCELLED should be terminal")
	}
	if !Terminal(StatusReturned) {
		t.Error("RETURNED should be terminal")
	}
	if Terminal(StatusDelivered) {
		t.Error("DELIVERED still has the RETURNED edge")
	}
	if Terminal(StatusPending) {
		t.Error("PENDING should not be terminal")
	}
}

func TestCancellable(t *testing.T) {
	if !Cancellable(StatusPending) || !Cancellable(StatusConfirmed) {
		t.Error("PENDING and CONFIRMED are inside the cancellation window")
	}
	for _, s := range []Status{StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusReturned} {
		if Cancellable(s) {
			t.Errorf("%s should not be cancellable", s)
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusOutForDelivery) {
		t.Error("OUT_FOR_DELIVERY is a valid status")
	}
	if ValidStatus(Status("SHIPPING")) {
		t.Error("unknown status accepted")
	}
}
