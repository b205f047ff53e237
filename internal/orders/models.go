package orders

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// AddressSnapshot is copied into the order at checkout. Later edits to
// the user's address book never alter a placed order.
type AddressSnapshot struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// Item is a frozen order line. Prices are cents, captured at checkout.
type Item struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type Order struct {
	OrderNumber       string          `json:"order_number"`
	UserID            string          `json:"user_id"`
	SellerID          string          `json:"seller_id"`
	DeliveryPartnerID string          `json:"delivery_partner_id,omitempty"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	Address           AddressSnapshot `json:"address"`
	Items             []Item          `json:"items"`

	Subtotal    int64  `json:"subtotal"`
	ShippingFee int64  `json:"shipping_fee"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
	CouponCode  string `json:"coupon_code,omitempty"`

	Status        Status        `json:"order_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method"`

	// Order-level idempotence flags for ledger side effects.
	StockCommitted bool `json:"-"`
	StockReleased  bool `json:"-"`

	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// CheckAmounts asserts the monetary invariant
// finalAmount == subtotal + shippingFee - discount, and that the item
// line totals add up to the subtotal. Verified on create and re-read.
func (o *Order) CheckAmounts() error {
	var sum int64
	for _, it := range o.Items {
		if it.Qty < 1 || it.UnitPrice < 0 || it.LineTotal != it.Qty*it.UnitPrice {
			return ErrAmountInvariant
		}
		sum += it.LineTotal
	}
	if len(o.Items) > 0 && sum != o.Subtotal {
		return ErrAmountInvariant
	}
	if o.Subtotal < 0 || o.ShippingFee < 0 || o.Discount < 0 {
		return ErrAmountInvariant
	}
	if o.FinalAmount != o.Subtotal+o.ShippingFee-o.Discount {
		return ErrAmountInvariant
	}
	return nil
}
