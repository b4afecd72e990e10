package types

import (
	"database/sql/driver"

	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// SurchargeRule adds AdditionalFee when the vendor group's aggregate for Kind
// strictly exceeds Threshold. AdditionalFee may be negative.
type SurchargeRule struct {
	Kind          enums.SurchargeKind `json:"kind" validate:"required,oneof=weight price"`
	Threshold     decimal.Decimal     `json:"threshold"`
	AdditionalFee decimal.Decimal     `json:"additional_fee"`
}

// Applies reports whether the rule fires for the given group totals.
func (r SurchargeRule) Applies(weightKg, value decimal.Decimal) bool {
	switch r.Kind {
	case enums.SurchargeKindWeight:
		return weightKg.GreaterThan(r.Threshold)
	case enums.SurchargeKindPrice:
		return value.GreaterThan(r.Threshold)
	default:
		return false
	}
}

type SurchargeRules []SurchargeRule

func (s SurchargeRules) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue([]SurchargeRule(s))
}

func (s *SurchargeRules) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var decoded []SurchargeRule
	if err := scanJSON(value, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}
