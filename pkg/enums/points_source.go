package enums

import "fmt"

// PointsSource records why a loyalty points delta was granted.
type PointsSource string

const (
	PointsSourcePurchase PointsSource = "purchase"
	PointsSourceBonus    PointsSource = "bonus"
)

var validPointsSources = []PointsSource{
	PointsSourcePurchase,
	PointsSourceBonus,
}

func (s PointsSource) String() string {
	return string(s)
}

func (s PointsSource) IsValid() bool {
	for _, candidate := range validPointsSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePointsSource converts raw input into a PointsSource.
func ParsePointsSource(value string) (PointsSource, error) {
	for _, candidate := range validPointsSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid points source %q", value)
}
