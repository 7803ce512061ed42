package mapping

import (
	"errors"
	"strings"
	"time"

	"github.com/csg33k/txn-intake/internal/numeric"
)

// TransformKind names one of the fixed value transforms a table entry may
// request. The empty kind applies the default coercion for the source
// key's value class.
type TransformKind string

const (
	TransformDefault     TransformKind = ""
	TransformPassthrough TransformKind = "passthrough"
	TransformUpper       TransformKind = "upper"
	TransformNumber      TransformKind = "number"
	TransformPercentage  TransformKind = "percentage"
	TransformCurrency    TransformKind = "currency"
	TransformYesNo       TransformKind = "yesNo"
	TransformWinterized  TransformKind = "winterized"
	TransformDate        TransformKind = "date"
	TransformDigits      TransformKind = "digits"
)

var transforms = map[TransformKind]func(any) (any, error){
	TransformPassthrough: passthrough,
	TransformUpper:       upper,
	TransformNumber:      number,
	TransformPercentage:  number,
	TransformCurrency:    number,
	TransformYesNo:       yesNo,
	TransformWinterized:  winterized,
	TransformDate:        date,
	TransformDigits:      digits,
}

// Known reports whether k is a transform the engine implements.
func (k TransformKind) Known() bool {
	if k == TransformDefault {
		return true
	}
	_, ok := transforms[k]
	return ok
}

// valueClass is the semantic class of a canonical source key.
type valueClass int

const (
	classPlain valueClass = iota
	classPercentage
	classCurrency
	classWinterized
	classYesNo
	classEnum
)

// classes assigns the default coercion of each canonical key. Keys not
// listed pass through unchanged.
var classes = map[string]valueClass{
	"commissionData.totalCommissionPercentage": classPercentage,
	"commissionData.listingAgentPercentage":    classPercentage,
	"commissionData.buyersAgentPercentage":     classPercentage,
	"commissionData.sellerPaidPercentage":      classPercentage,
	"commissionData.buyerPaidPercentage":       classPercentage,
	"commissionData.referralFeePercentage":     classPercentage,

	"commissionData.brokerFee":           classCurrency,
	"commissionData.sellersAssistAmount": classCurrency,
	"propertyData.salePrice":             classCurrency,
	"propertyDetailsData.warrantyCost":   classCurrency,

	"propertyDetailsData.winterized": classWinterized,

	"propertyData.updateMls":              classYesNo,
	"propertyDetailsData.builtBefore1978": classYesNo,

	"propertyData.status":                 classEnum,
	"propertyData.propertyType":           classEnum,
	"propertyData.accessType":             classEnum,
	"commissionData.coordinatorFeePaidBy": classEnum,
	"type":                                classEnum, // client record
}

var classTransforms = map[valueClass]TransformKind{
	classPlain:      TransformPassthrough,
	classPercentage: TransformPercentage,
	classCurrency:   TransformCurrency,
	classWinterized: TransformWinterized,
	classYesNo:      TransformYesNo,
	classEnum:       TransformUpper,
}

// resolveTransform picks the transform for an entry.
func resolveTransform(m FieldMapping) TransformKind {
	if m.Transform != TransformDefault {
		return m.Transform
	}
	return classTransforms[classes[m.SourceKey]]
}

func isNumeric(k TransformKind) bool {
	return k == TransformNumber || k == TransformPercentage || k == TransformCurrency
}

var (
	errNotNumber = errors.New("not a number")
	errNotDate   = errors.New("not a date")
)

func passthrough(v any) (any, error) { return v, nil }

func upper(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strings.ToUpper(strings.TrimSpace(s)), nil
	}
	return v, nil
}

// number parses to float64 without rounding.
func number(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		d, ok := numeric.Parse(x)
		if !ok {
			return nil, errNotNumber
		}
		return d.InexactFloat64(), nil
	}
	return nil, errNotNumber
}

func yesNo(v any) (any, error) {
	if b, ok := v.(bool); ok {
		if b {
			return "YES", nil
		}
		return "NO", nil
	}
	return v, nil
}

func winterized(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return "WINTERIZED", nil
		}
	case string:
		if strings.EqualFold(strings.TrimSpace(x), "YES") {
			return "WINTERIZED", nil
		}
	}
	return "NOT WINTERIZED", nil
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", time.RFC3339}

// date normalises the accepted input layouts to YYYY-MM-DD. Free-form
// text such as "end of June" is passed through as typed.
func date(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errNotDate
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return s, nil
}

func digits(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
