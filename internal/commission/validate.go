package commission

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/numeric"
)

const (
	msgPercentage = "must be a number between 0 and 100"
	msgCurrency   = "must be a non-negative amount"
	msgRequired   = "is required"
	msgPaidBy     = "must be client or agent"
	msgEIN        = "must be a 9-digit EIN"
)

var hundred = decimal.NewFromInt(100)

// Validate checks every field and returns the failures in form order.
// Validation is independent of derivation; it only gates step advancement.
func Validate(s domain.CommissionState, mode PaidMode) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for _, f := range Fields {
		if msg := ValidateField(f, s, mode); msg != "" {
			errs = append(errs, domain.ValidationError{Field: string(f), Message: msg})
		}
	}
	return errs
}

// ValidateField returns the error message for one field, or "".
func ValidateField(f Field, s domain.CommissionState, mode PaidMode) string {
	v := strings.TrimSpace(Get(s, f))
	switch f {
	case TotalCommissionPercentage, ListingAgentPercentage, BuyersAgentPercentage:
		return percentage(v)
	case SellerPaidPercentage, BuyerPaidPercentage:
		if mode == CurrencyMode {
			return currency(v)
		}
		return percentage(v)
	case BrokerFee:
		return currency(v)
	case SellersAssistAmount:
		if s.HasSellersAssist && v == "" {
			return msgRequired
		}
		return currency(v)
	case ReferralParty:
		if s.IsReferral && v == "" {
			return msgRequired
		}
	case BrokerEIN:
		if s.IsReferral && v == "" {
			return msgRequired
		}
		if v != "" && !validEIN(v) {
			return msgEIN
		}
	case ReferralFeePercentage:
		if s.IsReferral && v == "" {
			return msgRequired
		}
		return percentage(v)
	case CoordinatorFeePaidBy:
		switch strings.ToLower(v) {
		case "", "client", "agent":
		default:
			return msgPaidBy
		}
	}
	return ""
}

func percentage(v string) string {
	if v == "" {
		return ""
	}
	d, ok := numeric.Parse(v)
	if !ok || d.IsNegative() || d.GreaterThan(hundred) {
		return msgPercentage
	}
	return ""
}

func currency(v string) string {
	if v == "" {
		return ""
	}
	d, ok := numeric.Parse(v)
	if !ok || d.IsNegative() {
		return msgCurrency
	}
	return ""
}

func validEIN(v string) bool {
	digits := strings.ReplaceAll(v, "-", "")
	if len(digits) != 9 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
