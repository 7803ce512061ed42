package commission

import (
	"github.com/shopspring/decimal"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/numeric"
)

// PaidMode says how sellerPaid/buyerPaid relate to the total commission.
type PaidMode string

const (
	// PercentageMode: sellerPaid + buyerPaid = total commission percentage.
	PercentageMode PaidMode = "percentage"
	// CurrencyMode: sellerPaid + buyerPaid = salePrice * total / 100, in dollars.
	CurrencyMode PaidMode = "currency"
)

// ParsePaidMode accepts "percentage" or "currency"; empty means percentage.
func ParsePaidMode(s string) (PaidMode, bool) {
	switch PaidMode(s) {
	case "", PercentageMode:
		return PercentageMode, true
	case CurrencyMode:
		return CurrencyMode, true
	}
	return "", false
}

type Options struct {
	Mode PaidMode
	// SalePrice is required in CurrencyMode to convert between the total
	// percentage and dollar amounts.
	SalePrice string
}

// Patch maps fields to their new values. It never contains the field the
// user just edited.
type Patch map[Field]string

// DeriveUpdates is Derive in percentage mode.
func DeriveUpdates(changed Field, value string, state domain.CommissionState) Patch {
	return Derive(changed, value, state, Options{})
}

// Derive returns the updates implied by the user setting changed to value.
//
// Two triples are kept consistent: total = listing + buyers and
// total = sellerPaid + buyerPaid. Within a triple two known values
// determine the third. When both peers of the changed field are known the
// one earlier in (total, listing, buyers) or (total, sellerPaid, buyerPaid)
// stays fixed. A field with no known peer is never invented.
func Derive(changed Field, value string, state domain.CommissionState, opts Options) Patch {
	patch := Patch{}

	switch changed {
	case HasSellersAssist:
		if !parseFlag(value) && state.SellersAssistAmount != "" {
			patch[SellersAssistAmount] = ""
		}
		return patch
	case IsReferral:
		if !parseFlag(value) {
			for _, f := range []Field{ReferralParty, BrokerEIN, ReferralFeePercentage} {
				if Get(state, f) != "" {
					patch[f] = ""
				}
			}
		}
		return patch
	}

	v, ok := numeric.Parse(value)
	if !ok {
		return patch
	}
	Set(&state, changed, value)
	d := &deriver{state: state, opts: opts, patch: patch}
	if d.opts.Mode == "" {
		d.opts.Mode = PercentageMode
	}

	switch changed {
	case TotalCommissionPercentage:
		d.agentFromTotal(v)
		d.paidFromTotal(v)
	case ListingAgentPercentage:
		d.agentFromListing(v)
	case BuyersAgentPercentage:
		d.agentFromBuyers(v)
	case SellerPaidPercentage:
		d.paidFromSide(v, BuyerPaidPercentage)
	case BuyerPaidPercentage:
		d.paidFromSide(v, SellerPaidPercentage)
	}

	delete(patch, changed)
	return patch
}

// Apply merges the user's edit and the derived patch into state.
func Apply(state domain.CommissionState, changed Field, value string, patch Patch) domain.CommissionState {
	Set(&state, changed, value)
	for f, v := range patch {
		if f == changed {
			continue
		}
		Set(&state, f, v)
	}
	return state
}

type deriver struct {
	state domain.CommissionState
	opts  Options
	patch Patch
}

// known reads a field from the pre-patch state.
func (d *deriver) known(f Field) (decimal.Decimal, bool) {
	return numeric.Parse(Get(d.state, f))
}

func (d *deriver) set(f Field, v decimal.Decimal) {
	d.patch[f] = numeric.Fixed2(v)
}

func (d *deriver) agentFromTotal(total decimal.Decimal) {
	if listing, ok := d.known(ListingAgentPercentage); ok {
		d.set(BuyersAgentPercentage, total.Sub(listing))
		return
	}
	if buyers, ok := d.known(BuyersAgentPercentage); ok {
		d.set(ListingAgentPercentage, total.Sub(buyers))
	}
}

func (d *deriver) agentFromListing(listing decimal.Decimal) {
	if total, ok := d.known(TotalCommissionPercentage); ok {
		d.set(BuyersAgentPercentage, total.Sub(listing))
		return
	}
	if buyers, ok := d.known(BuyersAgentPercentage); ok {
		total := listing.Add(buyers)
		d.set(TotalCommissionPercentage, total)
		d.paidFromTotal(total)
	}
}

func (d *deriver) agentFromBuyers(buyers decimal.Decimal) {
	if total, ok := d.known(TotalCommissionPercentage); ok {
		d.set(ListingAgentPercentage, total.Sub(buyers))
		return
	}
	if listing, ok := d.known(ListingAgentPercentage); ok {
		total := listing.Add(buyers)
		d.set(TotalCommissionPercentage, total)
		d.paidFromTotal(total)
	}
}

// paidFromTotal fills one side of the paid triple from a new total.
func (d *deriver) paidFromTotal(total decimal.Decimal) {
	amount, ok := d.paidTotal(total)
	if !ok {
		return
	}
	if seller, ok := d.known(SellerPaidPercentage); ok {
		d.set(BuyerPaidPercentage, nonNegative(amount.Sub(seller)))
		return
	}
	if buyer, ok := d.known(BuyerPaidPercentage); ok {
		d.set(SellerPaidPercentage, nonNegative(amount.Sub(buyer)))
	}
}

// paidFromSide handles an edit to one paid side: the other side follows the
// total when it is known, otherwise the total follows both sides.
func (d *deriver) paidFromSide(v decimal.Decimal, other Field) {
	if total, ok := d.known(TotalCommissionPercentage); ok {
		if amount, ok := d.paidTotal(total); ok {
			d.set(other, nonNegative(amount.Sub(v)))
		}
		return
	}
	peer, ok := d.known(other)
	if !ok {
		return
	}
	total, ok := d.totalFromPaid(v.Add(peer))
	if !ok {
		return
	}
	d.set(TotalCommissionPercentage, total)
	d.agentFromTotal(total)
}

// paidTotal converts the total percentage into the unit the paid fields use.
func (d *deriver) paidTotal(total decimal.Decimal) (decimal.Decimal, bool) {
	if d.opts.Mode != CurrencyMode {
		return total, true
	}
	price, ok := numeric.Parse(d.opts.SalePrice)
	if !ok {
		return decimal.Zero, false
	}
	return price.Mul(total).Div(decimal.NewFromInt(100)), true
}

// totalFromPaid is the inverse of paidTotal.
func (d *deriver) totalFromPaid(sum decimal.Decimal) (decimal.Decimal, bool) {
	if d.opts.Mode != CurrencyMode {
		return sum, true
	}
	price, ok := numeric.Parse(d.opts.SalePrice)
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	return sum.Mul(decimal.NewFromInt(100)).Div(price), true
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, v)
}
