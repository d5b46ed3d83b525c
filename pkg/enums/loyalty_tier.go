package enums

// LoyaltyTier is a named loyalty level derived solely from cumulative points.
type LoyaltyTier string

const (
	LoyaltyTierBronze   LoyaltyTier = "Bronze"
	LoyaltyTierPrata    LoyaltyTier = "Prata"
	LoyaltyTierOuro     LoyaltyTier = "Ouro"
	LoyaltyTierDiamante LoyaltyTier = "Diamante"
)

func (t LoyaltyTier) String() string {
	return string(t)
}

func (t LoyaltyTier) IsValid() bool {
	switch t {
	case LoyaltyTierBronze, LoyaltyTierPrata, LoyaltyTierOuro, LoyaltyTierDiamante:
		return true
	}
	return false
}
