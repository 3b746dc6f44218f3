package sale

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tarekulislam03/medix-v1-sub001/internal/pricing"
)

var (
	// ErrLineNotFound is returned when a line index is out of range.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrEmptyCart is returned when checkout is attempted with a zero grand total.
	ErrEmptyCart = errors.New("cart has no billable amount")
	// ErrNegativeAmount is returned when a settlement field is below zero.
	ErrNegativeAmount = errors.New("settlement amounts must not be negative")
)

// CartLine is one product instance added to the current sale. ReferencePrice
// is the catalog price at the time the line was created and never changes;
// CartPrice is the billed unit price and may be overridden.
type CartLine struct {
	ProductID       uuid.UUID       `json:"productId"`
	Name            string          `json:"name"`
	GenericName     *string         `json:"genericName,omitempty"`
	ReferencePrice  decimal.Decimal `json:"referencePrice"`
	CartPrice       decimal.Decimal `json:"cartPrice"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	BatchNumber     *string         `json:"batchNumber,omitempty"`
	ExpiryDate      *string         `json:"expiryDate,omitempty"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

// LineUpdate is the closed set of mutable line fields. Nil members leave
// the current value untouched.
type LineUpdate struct {
	CartPrice       *decimal.Decimal `json:"cartPrice"`
	Quantity        *int             `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	TaxPercent      *decimal.Decimal `json:"taxPercent"`
	BatchNumber     *string          `json:"batchNumber"`
	ExpiryDate      *string          `json:"expiryDate"`
}

// Settlement captures the manual bill-level inputs entered alongside the cart.
type Settlement struct {
	GlobalDiscount decimal.Decimal       `json:"globalDiscount"`
	DoctorFees     decimal.Decimal       `json:"doctorFees"`
	OtherCharges   decimal.Decimal       `json:"otherCharges"`
	PaymentMethod  pricing.PaymentMethod `json:"paymentMethod"`
	AmountPaid     decimal.Decimal       `json:"amountPaid"`
}

// SettlementUpdate patches individual settlement fields.
type SettlementUpdate struct {
	GlobalDiscount *decimal.Decimal `json:"globalDiscount"`
	DoctorFees     *decimal.Decimal `json:"doctorFees"`
	OtherCharges   *decimal.Decimal `json:"otherCharges"`
	PaymentMethod  *string          `json:"paymentMethod"`
	AmountPaid     *decimal.Decimal `json:"amountPaid"`
	CustomerID     *uuid.UUID       `json:"customerId"`
}

// View is a consistent cart snapshot: the ordered lines plus every derived
// amount, recomputed in full on each mutation.
type View struct {
	ID            uuid.UUID       `json:"id"`
	Lines         []CartLine      `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	Settlement    Settlement      `json:"settlement"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	Change        decimal.Decimal `json:"change"`
	Balance       decimal.Decimal `json:"balance"`
	CustomerID    *uuid.UUID      `json:"customerId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Cart holds one in-progress sale. One logical actor mutates a cart at a
// time; the mutex only guards against interleaved HTTP requests.
type Cart struct {
	mu         sync.Mutex
	id         uuid.UUID
	lines      []CartLine
	settlement Settlement
	customerID *uuid.UUID
	createdAt  time.Time
}

// NewCart constructs an empty cart with cash tender preselected.
func NewCart() *Cart {
	return &Cart{
		id:         uuid.New(),
		settlement: Settlement{PaymentMethod: pricing.PaymentCash},
		createdAt:  time.Now().UTC(),
	}
}

// ID returns the cart identifier.
func (c *Cart) ID() uuid.UUID {
	return c.id
}

// AddLine appends a line for the given product. Quantity defaults to 1 and
// the billed price defaults to the catalog selling price.
func (c *Cart) AddLine(line CartLine) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.CartPrice.IsZero() {
		line.CartPrice = line.ReferencePrice
	}
	line.LineTotal = pricing.ComputeLineTotal(line.CartPrice, line.Quantity, line.DiscountPercent, line.TaxPercent)
	c.lines = append(c.lines, line)
	return c.viewLocked()
}

// UpdateLine patches the line at index and recomputes its total. Only the
// addressed line changes.
func (c *Cart) UpdateLine(index int, upd LineUpdate) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return View{}, ErrLineNotFound
	}
	ln := &c.lines[index]
	if upd.CartPrice != nil {
		ln.CartPrice = *upd.CartPrice
	}
	if upd.Quantity != nil {
		ln.Quantity = *upd.Quantity
		if ln.Quantity < 1 {
			ln.Quantity = 1
		}
	}
	if upd.DiscountPercent != nil {
		ln.DiscountPercent = *upd.DiscountPercent
	}
	if upd.TaxPercent != nil {
		ln.TaxPercent = *upd.TaxPercent
	}
	if upd.BatchNumber != nil {
		ln.BatchNumber = upd.BatchNumber
	}
	if upd.ExpiryDate != nil {
		ln.ExpiryDate = upd.ExpiryDate
	}
	ln.LineTotal = pricing.ComputeLineTotal(ln.CartPrice, ln.Quantity, ln.DiscountPercent, ln.TaxPercent)
	return c.viewLocked(), nil
}

// RemoveLine deletes the line at index, shifting subsequent lines down.
func (c *Cart) RemoveLine(index int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return View{}, ErrLineNotFound
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return c.viewLocked(), nil
}

// UpdateSettlement patches bill-level fields. Every amount is validated
// before anything is stored, so a rejected update leaves the settlement
// untouched.
func (c *Cart) UpdateSettlement(upd SettlementUpdate) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, amount := range []*decimal.Decimal{upd.GlobalDiscount, upd.DoctorFees, upd.OtherCharges, upd.AmountPaid} {
		if amount != nil && amount.IsNegative() {
			return View{}, ErrNegativeAmount
		}
	}
	if upd.PaymentMethod != nil {
		method, err := pricing.ParsePaymentMethod(*upd.PaymentMethod)
		if err != nil {
			return View{}, err
		}
		c.settlement.PaymentMethod = method
	}
	if upd.GlobalDiscount != nil {
		c.settlement.GlobalDiscount = *upd.GlobalDiscount
	}
	if upd.DoctorFees != nil {
		c.settlement.DoctorFees = *upd.DoctorFees
	}
	if upd.OtherCharges != nil {
		c.settlement.OtherCharges = *upd.OtherCharges
	}
	if upd.AmountPaid != nil {
		c.settlement.AmountPaid = *upd.AmountPaid
	}
	if upd.CustomerID != nil {
		c.customerID = upd.CustomerID
	}
	return c.viewLocked(), nil
}

// Snapshot returns the current derived view.
func (c *Cart) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Reset clears all lines and settlement input back to defaults.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.settlement = Settlement{PaymentMethod: pricing.PaymentCash}
	c.customerID = nil
}

func (c *Cart) viewLocked() View {
	pl := make([]pricing.Line, len(c.lines))
	for i, ln := range c.lines {
		pl[i] = pricing.Line{
			UnitPrice:       ln.CartPrice,
			Qty:             ln.Quantity,
			DiscountPercent: ln.DiscountPercent,
			TaxPercent:      ln.TaxPercent,
		}
	}
	sum := pricing.Aggregate(pl)
	settled := pricing.Settle(sum, pricing.Adjustments{
		GlobalDiscount: c.settlement.GlobalDiscount,
		DoctorFees:     c.settlement.DoctorFees,
		OtherCharges:   c.settlement.OtherCharges,
		AmountPaid:     c.settlement.AmountPaid,
	})

	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	return View{
		ID:            c.id,
		Lines:         lines,
		Subtotal:      sum.Subtotal,
		TotalDiscount: sum.TotalDiscount,
		TotalTax:      sum.TotalTax,
		Settlement:    c.settlement,
		GrandTotal:    settled.GrandTotal,
		Change:        settled.Change,
		Balance:       settled.Balance,
		CustomerID:    c.customerID,
		CreatedAt:     c.createdAt,
	}
}
