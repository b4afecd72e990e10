package enums

import "fmt"

// SurchargeKind selects which vendor-group aggregate a surcharge rule compares
// against its threshold.
type SurchargeKind string

const (
	SurchargeKindWeight SurchargeKind = "weight"
	SurchargeKindPrice  SurchargeKind = "price"
)

var validSurchargeKinds = []SurchargeKind{
	SurchargeKindWeight,
	SurchargeKindPrice,
}

func (k SurchargeKind) String() string {
	return string(k)
}

func (k SurchargeKind) IsValid() bool {
	for _, candidate := range validSurchargeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSurchargeKind converts raw input into a SurchargeKind.
func ParseSurchargeKind(value string) (SurchargeKind, error) {
	for _, candidate := range validSurchargeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid surcharge kind %q", value)
}
