package cart

import (
	"testing"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

func items(lineTotals ...int64) []orders.Item {
	out := make([]orders.Item, len(lineTotals))
	for i, lt := range lineTotals {
		out[i] = orders.Item{ProductID: "P", Qty: 1, UnitPrice: lt, LineTotal: lt}
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name                       string
		items                      []orders.Item
		fee, freeMin, discount     int64
		wantSub, wantFee, wantDisc int64
		wantFinal                  int64
	}{
		{"flat fee applies", items(10000, 20000), 4900, 50000, 0, 30000, 4900, 0, 34900},
		{"free shipping at threshold", items(30000, 20000), 4900, 50000, 0, 50000, 0, 0, 50000},
		{"free shipping above threshold", items(60000), 4900, 50000, 0, 60000, 0, 0, 60000},
		{"discount applied", items(30000), 4900, 50000, 10000, 30000, 4900, 10000, 24900},
		{"discount capped at subtotal", items(5000), 4900, 50000, 10000, 5000, 4900, 5000, 4900},
		{"zero threshold disables waiver", items(60000), 4900, 0, 0, 60000, 4900, 0, 64900},
		{"empty cart", nil, 4900, 50000, 0, 0, 4900, 0, 4900},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ComputeTotals(c.items, c.fee, c.freeMin, c.discount)
			if got.Subtotal != c.wantSub || got.ShippingFee != c.wantFee ||
				got.Discount != c.wantDisc || got.FinalAmount != c.wantFinal {
				t.Errorf("ComputeTotals = %+v, want sub=%d fee=%d disc=%d final=%d",
					got, c.wantSub, c.wantFee, c.wantDisc, c.wantFinal)
			}
		})
	}
}

func TestComputeTotalsInvariant(t *testing.T) {
	got := ComputeTotals(items(12300, 45600), 4900, 50000, 7000)
	if got.FinalAmount != got.Subtotal+got.ShippingFee-got.Discount {
		t.Fatalf("final=%d, want subtotal+fee-discount=%d",
			got.FinalAmount, got.Subtotal+got.ShippingFee-got.Discount)
	}
}
