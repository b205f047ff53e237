package cart

import "github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"

type Totals struct {
	Subtotal    int64
	ShippingFee int64
	Discount    int64
	FinalAmount int64
}

// ComputeTotals applies the shipping and discount policy. Shipping is a
// flat fee, waived once the subtotal reaches the free-shipping minimum.
// The discount is capped at the subtotal so totals never go negative.
func ComputeTotals(items []orders.Item, shippingFee, freeShippingMin, discount int64) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal
	}
	fee := shippingFee
	if freeShippingMin > 0 && subtotal >= freeShippingMin {
		fee = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return Totals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Discount:    discount,
		FinalAmount: subtotal + fee - discount,
	}
}
