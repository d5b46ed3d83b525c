package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/pkg/enums"
)

// Tier breakpoints over cumulative points.
const (
	prataFloor    int64 = 2_000
	ouroFloor     int64 = 5_000
	diamanteFloor int64 = 10_000
)

var pointsPerUnit = decimal.NewFromInt(10)

// TierFor derives the loyalty tier from a cumulative balance.
func TierFor(points int64) enums.LoyaltyTier {
	switch {
	case points >= diamanteFloor:
		return enums.LoyaltyTierDiamante
	case points >= ouroFloor:
		return enums.LoyaltyTierOuro
	case points >= prataFloor:
		return enums.LoyaltyTierPrata
	default:
		return enums.LoyaltyTierBronze
	}
}

// PointsToNext returns the distance to the next tier breakpoint, 0 at the top.
func PointsToNext(points int64) int64 {
	switch {
	case points >= diamanteFloor:
		return 0
	case points >= ouroFloor:
		return diamanteFloor - points
	case points >= prataFloor:
		return ouroFloor - points
	default:
		return prataFloor - points
	}
}

// PointsFromPurchase awards floor(total × 10) points per order total.
func PointsFromPurchase(total decimal.Decimal) int64 {
	if total.IsNegative() {
		return 0
	}
	return total.Mul(pointsPerUnit).Floor().IntPart()
}
