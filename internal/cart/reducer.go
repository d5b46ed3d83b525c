package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/pkg/enums"
)

// Line is one cart entry. UnitPrice is carried from the catalog row at add
// time and never re-fetched.
type Line struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is unit price × quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AppliedCoupon snapshots the coupon at apply time; Discount is re-derived
// from the subtotal on every line mutation without re-running validation.
type AppliedCoupon struct {
	CouponID      uuid.UUID
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Discount      decimal.Decimal
}

// State is an immutable cart snapshot. Reduce never mutates its input.
type State struct {
	Lines  []Line
	Coupon *AppliedCoupon
}

// Subtotal sums line totals, excluding delivery fee and discount.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalItems sums quantities across lines.
func (s State) TotalItems() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// Discount returns the applied coupon's current discount, zero if none.
func (s State) Discount() decimal.Decimal {
	if s.Coupon == nil {
		return decimal.Zero
	}
	return s.Coupon.Discount
}

// Payable is subtotal minus discount (delivery fee is added at checkout).
func (s State) Payable() decimal.Decimal {
	return s.Subtotal().Sub(s.Discount())
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Action is a cart mutation understood by Reduce.
type Action interface {
	isCartAction()
}

// AddItem increments the product's quantity by 1, inserting the line if the
// product is not in the cart yet.
type AddItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
}

// RemoveItem deletes the product's line; absent products are a no-op.
type RemoveItem struct {
	ProductID uuid.UUID
}

// UpdateQuantity sets the quantity, clamping below at 0; a line reaching 0 is
// removed in the same reduction.
type UpdateQuantity struct {
	ProductID uuid.UUID
	Quantity  int
}

// Clear empties the cart and drops any applied coupon.
type Clear struct{}

// ApplyCoupon attaches a validated coupon snapshot.
type ApplyCoupon struct {
	Coupon AppliedCoupon
}

// RemoveCoupon detaches the applied coupon.
type RemoveCoupon struct{}

func (AddItem) isCartAction()        {}
func (RemoveItem) isCartAction()     {}
func (UpdateQuantity) isCartAction() {}
func (Clear) isCartAction()          {}
func (ApplyCoupon) isCartAction()    {}
func (RemoveCoupon) isCartAction()   {}

// Reduce applies one action to a state and returns the next state. It is a
// pure function: the input state is never modified.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		next := cloneLines(state.Lines)
		found := false
		for i := range next {
			if next[i].ProductID == a.ProductID {
				next[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			next = append(next, Line{
				ProductID: a.ProductID,
				Name:      a.Name,
				UnitPrice: a.UnitPrice,
				Quantity:  1,
			})
		}
		return recalculate(State{Lines: next, Coupon: state.Coupon})

	case RemoveItem:
		next := make([]Line, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ProductID != a.ProductID {
				next = append(next, line)
			}
		}
		return recalculate(State{Lines: next, Coupon: state.Coupon})

	case UpdateQuantity:
		quantity := a.Quantity
		if quantity < 0 {
			quantity = 0
		}
		next := make([]Line, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ProductID == a.ProductID {
				line.Quantity = quantity
			}
			if line.Quantity > 0 {
				next = append(next, line)
			}
		}
		return recalculate(State{Lines: next, Coupon: state.Coupon})

	case Clear:
		return State{}

	case ApplyCoupon:
		coupon := a.Coupon
		return recalculate(State{Lines: cloneLines(state.Lines), Coupon: &coupon})

	case RemoveCoupon:
		return State{Lines: cloneLines(state.Lines)}
	}
	return state
}

// recalculate re-derives the applied coupon's discount from the new subtotal.
// The validation chain is NOT re-run here; submission re-validates.
func recalculate(state State) State {
	if state.Coupon == nil {
		return state
	}
	coupon := *state.Coupon
	coupon.Discount = coupons.DiscountValue(coupon.DiscountType, coupon.DiscountValue, state.Subtotal())
	state.Coupon = &coupon
	return state
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	next := make([]Line, len(lines))
	copy(next, lines)
	return next
}
