package orders

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusReturned       Status = "RETURNED"
)

// Actor identifies who is requesting a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorSeller   Actor = "seller"
	ActorDelivery Actor = "delivery_partner"
)

// validNext is the single source of truth for the fulfillment graph:
// for each current status, the reachable targets and the actors allowed
// to request each edge.
var validNext = map[Status]map[Status][]Actor{
	StatusPending: {
		StatusConfirmed: {ActorSeller},
		StatusCancelled: {ActorCustomer, ActorSeller},
	},
	StatusConfirmed: {
		StatusProcessing: {ActorSeller},
		StatusCancelled:  {ActorSeller},
	},
	StatusProcessing: {
		StatusShipped: {ActorSeller},
	},
	StatusShipped: {
		StatusOutForDelivery: {ActorDelivery},
	},
	StatusOutForDelivery: {
		StatusDelivered: {ActorDelivery},
	},
	StatusDelivered: {
		StatusReturned: {ActorCustomer},
	},
	StatusCancelled: {},
	StatusReturned:  {},
}

func CanTransition(from, to Status) bool {
	_, ok := validNext[from][to]
	return ok
}

func ActorAllowed(from, to Status, actor Actor) bool {
	for _, a := range validNext[from][to] {
		if a == actor {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves the status.
// DELIVERED keeps its single RETURNED edge, so it is not terminal here
// even though it ends the happy path.
func Terminal(s Status) bool {
	return len(validNext[s]) == 0
}

// Cancellable is the cancellation window: PENDING or CONFIRMED only.
func Cancellable(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
