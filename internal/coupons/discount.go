package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountValue computes the raw discount for a subtotal, clamped so the net
// payable never goes negative.
func DiscountValue(discountType enums.DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch discountType {
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(value).Div(oneHundred)
	case enums.DiscountTypeFixed:
		discount = value
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// Discount applies DiscountValue to a coupon row.
func Discount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	return DiscountValue(coupon.DiscountType, coupon.DiscountValue, subtotal)
}
