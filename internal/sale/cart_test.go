package sale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tarekulislam03/medix-v1-sub001/internal/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleLine(name string, price string, qty int) CartLine {
	return CartLine{
		Name:           name,
		ReferencePrice: dec(price),
		CartPrice:      dec(price),
		Quantity:       qty,
	}
}

func TestAddLineDefaults(t *testing.T) {
	cart := NewCart()

	view := cart.AddLine(CartLine{Name: "Aspirin", ReferencePrice: dec("12.50")})
	require.Len(t, view.Lines, 1)
	ln := view.Lines[0]
	require.Equal(t, 1, ln.Quantity)
	require.True(t, ln.CartPrice.Equal(dec("12.50")), "price defaults to catalog price")
	require.True(t, ln.LineTotal.Equal(dec("12.50")))
}

func TestLineTotalRecomputedOnUpdate(t *testing.T) {
	cart := NewCart()
	cart.AddLine(CartLine{
		Name:            "Amoxicillin",
		CartPrice:       dec("100"),
		Quantity:        2,
		DiscountPercent: dec("10"),
		TaxPercent:      dec("5"),
	})

	view := cart.Snapshot()
	require.True(t, view.Lines[0].LineTotal.Equal(dec("189")), "100x2x0.90x1.05 = 189, got %s", view.Lines[0].LineTotal)

	qty := 3
	view, err := cart.UpdateLine(0, LineUpdate{Quantity: &qty})
	require.NoError(t, err)
	require.True(t, view.Lines[0].LineTotal.Equal(dec("283.5")))
}

func TestUpdateLineOnlyTouchesAddressedLine(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "10", 1))
	cart.AddLine(sampleLine("B", "20", 1))

	price := dec("15")
	view, err := cart.UpdateLine(0, LineUpdate{CartPrice: &price})
	require.NoError(t, err)
	require.True(t, view.Lines[0].LineTotal.Equal(dec("15")))
	require.True(t, view.Lines[1].LineTotal.Equal(dec("20")))
}

func TestUpdateLineClampsQuantity(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "10", 2))

	qty := 0
	view, err := cart.UpdateLine(0, LineUpdate{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, 1, view.Lines[0].Quantity)
}

func TestRemoveLineShiftsIndices(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "10", 1))
	cart.AddLine(sampleLine("B", "20", 1))
	cart.AddLine(sampleLine("C", "30", 1))

	view, err := cart.RemoveLine(1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	require.Equal(t, "A", view.Lines[0].Name)
	require.Equal(t, "C", view.Lines[1].Name)
}

func TestLineIndexOutOfRange(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "10", 1))

	_, err := cart.UpdateLine(1, LineUpdate{})
	require.ErrorIs(t, err, ErrLineNotFound)
	_, err = cart.RemoveLine(-1)
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestAggregateIdentity(t *testing.T) {
	cart := NewCart()
	cart.AddLine(CartLine{Name: "A", CartPrice: dec("33.33"), Quantity: 3, DiscountPercent: dec("7"), TaxPercent: dec("12")})
	cart.AddLine(CartLine{Name: "B", CartPrice: dec("19.99"), Quantity: 2, TaxPercent: dec("5")})
	cart.AddLine(CartLine{Name: "C", CartPrice: dec("4.50"), Quantity: 10, DiscountPercent: dec("50")})

	view := cart.Snapshot()
	lineSum := decimal.Zero
	for _, ln := range view.Lines {
		lineSum = lineSum.Add(ln.LineTotal)
	}
	derived := view.Subtotal.Sub(view.TotalDiscount).Add(view.TotalTax)
	tolerance := dec("0.01").Mul(decimal.NewFromInt(int64(len(view.Lines))))
	require.True(t, derived.Sub(lineSum).Abs().LessThanOrEqual(tolerance),
		"subtotal-discount+tax %s vs line sum %s", derived, lineSum)
}

func TestSettlementExample(t *testing.T) {
	cart := NewCart()
	// 5 x 100 with 5% tax: subtotal 500, tax 25
	cart.AddLine(CartLine{Name: "A", CartPrice: dec("100"), Quantity: 5, TaxPercent: dec("5")})

	fees := dec("50")
	disc := dec("20")
	paid := dec("600")
	view, err := cart.UpdateSettlement(SettlementUpdate{DoctorFees: &fees, GlobalDiscount: &disc, AmountPaid: &paid})
	require.NoError(t, err)
	require.True(t, view.GrandTotal.Equal(dec("555")))
	require.True(t, view.Change.Equal(dec("45")))
	require.True(t, view.Balance.IsZero())

	paid = dec("500")
	view, err = cart.UpdateSettlement(SettlementUpdate{AmountPaid: &paid})
	require.NoError(t, err)
	require.True(t, view.Change.IsZero())
	require.True(t, view.Balance.Equal(dec("55")))
}

func TestSettlementRejectsNegativeAmounts(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "100", 1))
	fees := dec("50")
	_, err := cart.UpdateSettlement(SettlementUpdate{DoctorFees: &fees})
	require.NoError(t, err)

	negative := dec("-1")
	for _, upd := range []SettlementUpdate{
		{GlobalDiscount: &negative},
		{DoctorFees: &negative},
		{OtherCharges: &negative},
		{AmountPaid: &negative},
	} {
		_, err := cart.UpdateSettlement(upd)
		require.ErrorIs(t, err, ErrNegativeAmount)
	}

	// a rejected update leaves the settlement untouched
	view := cart.Snapshot()
	require.True(t, view.Settlement.DoctorFees.Equal(dec("50")))
	require.True(t, view.Settlement.GlobalDiscount.IsZero())
	require.True(t, view.Settlement.AmountPaid.IsZero())
}

func TestSettlementRejectsNegativeBeforeAnyMutation(t *testing.T) {
	cart := NewCart()
	paid := dec("10")
	negative := dec("-5")
	_, err := cart.UpdateSettlement(SettlementUpdate{AmountPaid: &paid, GlobalDiscount: &negative})
	require.ErrorIs(t, err, ErrNegativeAmount)
	require.True(t, cart.Snapshot().Settlement.AmountPaid.IsZero())
}

func TestSettlementRejectsUnknownPaymentMethod(t *testing.T) {
	cart := NewCart()
	method := "CHEQUE"
	_, err := cart.UpdateSettlement(SettlementUpdate{PaymentMethod: &method})
	require.Error(t, err)

	method = "upi"
	view, err := cart.UpdateSettlement(SettlementUpdate{PaymentMethod: &method})
	require.NoError(t, err)
	require.Equal(t, pricing.PaymentUPI, view.Settlement.PaymentMethod)
}

func TestResetClearsEverything(t *testing.T) {
	cart := NewCart()
	cart.AddLine(sampleLine("A", "10", 1))
	paid := dec("10")
	_, err := cart.UpdateSettlement(SettlementUpdate{AmountPaid: &paid})
	require.NoError(t, err)

	cart.Reset()
	view := cart.Snapshot()
	require.Empty(t, view.Lines)
	require.True(t, view.Subtotal.IsZero())
	require.True(t, view.Settlement.AmountPaid.IsZero())
	require.Equal(t, pricing.PaymentCash, view.Settlement.PaymentMethod)
}
