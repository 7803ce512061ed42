// Package commission keeps the commission step of the intake form
// internally consistent. It derives dependent percentages from the ones the
// agent has typed and validates each field. Every function is pure: the
// caller owns the state and applies the returned patch.
package commission

import (
	"strconv"
	"strings"

	"github.com/csg33k/txn-intake/internal/domain"
)

// Field names a CommissionState field by its JSON key.
type Field string

const (
	TotalCommissionPercentage Field = "totalCommissionPercentage"
	ListingAgentPercentage    Field = "listingAgentPercentage"
	BuyersAgentPercentage     Field = "buyersAgentPercentage"
	SellerPaidPercentage      Field = "sellerPaidPercentage"
	BuyerPaidPercentage       Field = "buyerPaidPercentage"
	BrokerFee                 Field = "brokerFee"
	HasSellersAssist          Field = "hasSellersAssist"
	SellersAssistAmount       Field = "sellersAssistAmount"
	IsReferral                Field = "isReferral"
	ReferralParty             Field = "referralParty"
	BrokerEIN                 Field = "brokerEin"
	ReferralFeePercentage     Field = "referralFeePercentage"
	CoordinatorFeePaidBy      Field = "coordinatorFeePaidBy"
)

// Fields lists every field in form order.
var Fields = []Field{
	TotalCommissionPercentage,
	ListingAgentPercentage,
	BuyersAgentPercentage,
	SellerPaidPercentage,
	BuyerPaidPercentage,
	BrokerFee,
	HasSellersAssist,
	SellersAssistAmount,
	IsReferral,
	ReferralParty,
	BrokerEIN,
	ReferralFeePercentage,
	CoordinatorFeePaidBy,
}

// ParseField maps a JSON key to its Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Get returns the field's value as the form would show it.
func Get(s domain.CommissionState, f Field) string {
	switch f {
	case TotalCommissionPercentage:
		return s.TotalCommissionPercentage
	case ListingAgentPercentage:
		return s.ListingAgentPercentage
	case BuyersAgentPercentage:
		return s.BuyersAgentPercentage
	case SellerPaidPercentage:
		return s.SellerPaidPercentage
	case BuyerPaidPercentage:
		return s.BuyerPaidPercentage
	case BrokerFee:
		return s.BrokerFee
	case HasSellersAssist:
		return strconv.FormatBool(s.HasSellersAssist)
	case SellersAssistAmount:
		return s.SellersAssistAmount
	case IsReferral:
		return strconv.FormatBool(s.IsReferral)
	case ReferralParty:
		return s.ReferralParty
	case BrokerEIN:
		return s.BrokerEIN
	case ReferralFeePercentage:
		return s.ReferralFeePercentage
	case CoordinatorFeePaidBy:
		return s.CoordinatorFeePaidBy
	}
	return ""
}

// Set writes value into the field. Flag fields accept anything
// strconv.ParseBool does, plus "yes"/"on"; everything else is false.
func Set(s *domain.CommissionState, f Field, value string) {
	switch f {
	case TotalCommissionPercentage:
		s.TotalCommissionPercentage = value
	case ListingAgentPercentage:
		s.ListingAgentPercentage = value
	case BuyersAgentPercentage:
		s.BuyersAgentPercentage = value
	case SellerPaidPercentage:
		s.SellerPaidPercentage = value
	case BuyerPaidPercentage:
		s.BuyerPaidPercentage = value
	case BrokerFee:
		s.BrokerFee = value
	case HasSellersAssist:
		s.HasSellersAssist = parseFlag(value)
	case SellersAssistAmount:
		s.SellersAssistAmount = value
	case IsReferral:
		s.IsReferral = parseFlag(value)
	case ReferralParty:
		s.ReferralParty = value
	case BrokerEIN:
		s.BrokerEIN = value
	case ReferralFeePercentage:
		s.ReferralFeePercentage = value
	case CoordinatorFeePaidBy:
		s.CoordinatorFeePaidBy = value
	}
}

func parseFlag(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "yes", "on", "y":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
