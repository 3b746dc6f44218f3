package pricing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Line carries the pricing inputs of a single cart line.
type Line struct {
	UnitPrice       decimal.Decimal
	Qty             int
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// Summary aggregates computed pricing components across a cart.
type Summary struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalTax      decimal.Decimal
}

// Settlement holds the derived amounts of a bill after fees, discount, and payment.
type Settlement struct {
	GrandTotal decimal.Decimal
	Change     decimal.Decimal
	Balance    decimal.Decimal
}

// Adjustments are the manual bill-level inputs applied on top of the cart aggregate.
type Adjustments struct {
	GlobalDiscount decimal.Decimal
	DoctorFees     decimal.Decimal
	OtherCharges   decimal.Decimal
	AmountPaid     decimal.Decimal
}

// ComputeLineTotal values a single line: discount before tax, half-up
// rounded to two decimal places. Quantities below one are clamped to one
// rather than rejected; negative price or tax inputs are treated as zero.
func ComputeLineTotal(unitPrice decimal.Decimal, qty int, discountPercent, taxPercent decimal.Decimal) decimal.Decimal {
	if qty < 1 {
		qty = 1
	}
	unitPrice = clampNonNegative(unitPrice)
	taxPercent = clampNonNegative(taxPercent)
	discountPercent = clampPercent(discountPercent)

	base := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	discounted := base.Mul(one.Sub(discountPercent.Div(hundred)))
	total := discounted.Mul(one.Add(taxPercent.Div(hundred))).Round(2)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Aggregate folds an ordered line sequence into cart totals. Each component
// is rounded per line so the aggregate never drifts from the sum of the
// individually rounded line totals. An empty sequence yields all zeros.
func Aggregate(lines []Line) Summary {
	sum := Summary{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
	}
	for _, ln := range lines {
		qty := ln.Qty
		if qty < 1 {
			qty = 1
		}
		price := clampNonNegative(ln.UnitPrice)
		discountPct := clampPercent(ln.DiscountPercent)
		taxPct := clampNonNegative(ln.TaxPercent)

		base := price.Mul(decimal.NewFromInt(int64(qty)))
		discountAmt := base.Mul(discountPct.Div(hundred)).Round(2)
		taxAmt := base.Sub(discountAmt).Mul(taxPct.Div(hundred)).Round(2)

		sum.Subtotal = sum.Subtotal.Add(base.Round(2))
		sum.TotalDiscount = sum.TotalDiscount.Add(discountAmt)
		sum.TotalTax = sum.TotalTax.Add(taxAmt)
	}
	return sum
}

// Settle combines the cart aggregate with bill adjustments and payment.
// The grand total is floored at zero even when the global discount exceeds
// everything else, and exactly one of change/balance is non-zero unless the
// payment matches the grand total exactly.
func Settle(sum Summary, adj Adjustments) Settlement {
	globalDiscount := clampNonNegative(adj.GlobalDiscount)
	doctorFees := clampNonNegative(adj.DoctorFees)
	otherCharges := clampNonNegative(adj.OtherCharges)
	amountPaid := clampNonNegative(adj.AmountPaid)

	grand := sum.Subtotal.
		Add(sum.TotalTax).
		Add(doctorFees).
		Add(otherCharges).
		Sub(globalDiscount).
		Round(2)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	change := amountPaid.Sub(grand)
	if change.IsNegative() {
		change = decimal.Zero
	}
	balance := grand.Sub(amountPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return Settlement{GrandTotal: grand, Change: change, Balance: balance}
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
