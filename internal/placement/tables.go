package placement

import (
	"fmt"

	"github.com/csg33k/txn-intake/internal/domain"
)

// Template geometry, in points from the bottom-left corner.
const (
	marginLeft  = 54.0
	columnRight = 320.0
	valueOffset = 96.0
	rowStep     = 18.0

	titleSize   = 16.0
	sectionSize = 11.0
	labelSize   = 8.0
	valueSize   = 10.0
	noteSize    = 9.0

	clientBlockTop = 470.0
	fullWidth      = PageWidth - 2*marginLeft
	halfWidth      = columnRight - marginLeft - valueOffset - 8
)

// sheet accumulates a table in declaration order.
type sheet struct {
	t    Table
	page int
}

func newSheet(name string, role domain.AgentRole, pages int) *sheet {
	return &sheet{t: Table{Name: name, Role: role, Pages: pages}, page: 1}
}

func (s *sheet) onPage(n int) *sheet {
	s.page = n
	return s
}

func (s *sheet) label(x, y float64, text string, size float64, bold bool) {
	s.t.Labels = append(s.t.Labels, Label{Page: s.page, X: x, Y: y, Text: text, FontSize: size, Bold: bold})
}

func (s *sheet) section(y float64, title string) {
	s.label(marginLeft, y, title, sectionSize, true)
}

func (s *sheet) place(p Placement) {
	p.Page = s.page
	if p.FontSize == 0 {
		p.FontSize = valueSize
	}
	s.t.Placements = append(s.t.Placements, p)
}

// row draws a caption at x and the value valueOffset to its right.
func (s *sheet) row(x, y float64, caption, key string, f Format, maxWidth float64) {
	s.label(x, y, caption, labelSize, false)
	s.place(Placement{SourceKey: key, X: x + valueOffset, Y: y, Format: f, MaxWidth: maxWidth})
}

func (s *sheet) header(title string) {
	s.label(marginLeft, 740, title, titleSize, true)
	s.row(400, 740, "Date Submitted", "dateSubmitted", FormatPlain, 0)
}

func (s *sheet) agent() {
	s.section(700, "AGENT")
	s.row(marginLeft, 682, "Name", "agentData.name", FormatPlain, halfWidth)
	s.row(marginLeft, 664, "Email", "agentData.email", FormatPlain, halfWidth)
	s.row(columnRight, 682, "Phone", "agentData.phone", FormatPlain, 0)
}

func (s *sheet) property() {
	s.section(614, "PROPERTY")
	s.row(marginLeft, 596, "Address", "propertyData.address", FormatPlain, fullWidth-valueOffset)
	s.row(marginLeft, 578, "City", "propertyData.city", FormatPlain, halfWidth)
	s.row(columnRight, 578, "State / ZIP", "propertyData.state", FormatUpper, 0)
	s.place(Placement{SourceKey: "propertyData.zip", X: columnRight + valueOffset + 40, Y: 578})
	s.row(marginLeft, 560, "MLS #", "propertyData.mlsNumber", FormatPlain, 0)
	s.row(columnRight, 560, "Sale Price", "propertyData.salePrice", FormatCurrency, 0)
	s.row(marginLeft, 542, "Status", "propertyData.status", FormatUpper, 0)
	s.row(columnRight, 542, "Closing Date", "propertyData.closingDate", FormatPlain, 0)
	s.row(marginLeft, 524, "Property Type", "propertyData.propertyType", FormatUpper, 0)
	s.row(columnRight, 524, "Access", "propertyData.accessType", FormatUpper, 0)
	s.row(marginLeft, 506, "Update MLS", "propertyData.updateMls", FormatYesNo, 0)
	s.row(columnRight, 506, "Access Code", "propertyData.accessCode", FormatPlain, 0)
}

// client draws a name/email/phone block for the first client in scope.
func (s *sheet) client(x float64, scope, title string) {
	s.label(x, clientBlockTop, title, sectionSize, true)
	for i, f := range []struct{ caption, field string }{
		{"Name", "name"},
		{"Email", "email"},
		{"Phone", "phone"},
	} {
		s.row(x, clientBlockTop-float64(i+1)*rowStep, f.caption, scope+"."+f.field, FormatPlain, halfWidth)
	}
}

func (s *sheet) commission() {
	s.section(380, "COMMISSION")
	s.row(marginLeft, 362, "Total Commission", "commissionData.totalCommissionPercentage", FormatPercent, 0)
	s.row(marginLeft, 344, "Listing Agent", "commissionData.listingAgentPercentage", FormatPercent, 0)
	s.row(marginLeft, 326, "Buyer's Agent", "commissionData.buyersAgentPercentage", FormatPercent, 0)
	s.row(columnRight, 362, "Seller Paid", "commissionData.sellerPaidPercentage", FormatPercent, 0)
	s.row(columnRight, 344, "Buyer Paid", "commissionData.buyerPaidPercentage", FormatPercent, 0)
	s.row(columnRight, 326, "Broker Fee", "commissionData.brokerFee", FormatCurrency, 0)
	s.row(marginLeft, 308, "Seller's Assist", "commissionData.sellersAssistAmount", FormatCurrency, 0)
	s.row(columnRight, 308, "Broker EIN", "commissionData.brokerEin", FormatPlain, 0)
	s.row(marginLeft, 290, "Referral Party", "commissionData.referralParty", FormatPlain, halfWidth)
	s.row(columnRight, 290, "Referral Fee", "commissionData.referralFeePercentage", FormatPercent, 0)
	s.row(marginLeft, 272, "Coordinator Fee", "commissionData.coordinatorFeePaidBy", FormatUpper, 0)
}

func (s *sheet) details() {
	s.label(marginLeft, 740, "PROPERTY DETAILS", titleSize, true)
	s.row(marginLeft, 716, "County", "propertyDetailsData.county", FormatPlain, halfWidth)
	s.row(columnRight, 716, "Municipality", "propertyDetailsData.municipality", FormatPlain, halfWidth)
	s.row(marginLeft, 698, "School District", "propertyDetailsData.schoolDistrict", FormatPlain, halfWidth)
	s.row(columnRight, 698, "Year Built", "propertyDetailsData.yearBuilt", FormatPlain, 0)
	s.row(marginLeft, 680, "Built Before 1978", "propertyDetailsData.builtBefore1978", FormatYesNo, 0)
	s.row(columnRight, 680, "Winterized", "propertyDetailsData.winterized", FormatYesNo, 0)
	s.row(marginLeft, 662, "HOA", "propertyDetailsData.hasHoa", FormatYesNo, 0)
	s.row(columnRight, 662, "HOA Name", "propertyDetailsData.hoaName", FormatPlain, halfWidth)
	s.row(marginLeft, 644, "Home Warranty", "propertyDetailsData.homeWarranty", FormatYesNo, 0)
	s.row(columnRight, 644, "Warranty Co.", "propertyDetailsData.warrantyCompany", FormatPlain, halfWidth)
	s.row(marginLeft, 626, "Warranty Cost", "propertyDetailsData.warrantyCost", FormatCurrency, 0)
	s.row(columnRight, 626, "Paid By", "propertyDetailsData.warrantyPaidBy", FormatUpper, 0)

	s.section(590, "TITLE")
	s.row(marginLeft, 572, "Company", "titleData.titleCompany", FormatPlain, halfWidth)
	s.row(columnRight, 572, "Contact", "titleData.titleContact", FormatPlain, halfWidth)
	s.row(marginLeft, 554, "Email", "titleData.titleEmail", FormatPlain, halfWidth)
	s.row(columnRight, 554, "Phone", "titleData.titlePhone", FormatPlain, 0)

	s.section(518, "NOTES")
	s.place(Placement{SourceKey: "additionalInfo.notes", X: marginLeft, Y: 500, FontSize: noteSize, MaxWidth: fullWidth})
	s.label(marginLeft, 440, "Special Instructions", labelSize, false)
	s.place(Placement{SourceKey: "additionalInfo.specialInstructions", X: marginLeft, Y: 422, FontSize: noteSize, MaxWidth: fullWidth})
	s.label(marginLeft, 362, "Urgent Issues", labelSize, false)
	s.place(Placement{SourceKey: "additionalInfo.urgentIssues", X: marginLeft, Y: 344, FontSize: noteSize, Bold: true, MaxWidth: fullWidth})

	s.section(290, "DOCUMENTS")
	s.place(Placement{SourceKey: "documentsData.documents", X: marginLeft, Y: 272, FontSize: noteSize, MaxWidth: fullWidth})

	s.section(200, "SIGNATURE")
	s.row(marginLeft, 182, "Agent", "signatureData.agentSignature", FormatPlain, halfWidth)
	s.row(columnRight, 182, "Date", "signatureData.signatureDate", FormatPlain, 0)
}

func buyerTable() Table {
	s := newSheet("buyer", domain.RoleBuyersAgent, 2)
	s.header("BUYER'S AGENT COVER SHEET")
	s.agent()
	s.property()
	s.client(marginLeft, "buyer", "BUYER")
	s.commission()
	s.onPage(2).details()
	return s.t
}

func sellerTable() Table {
	s := newSheet("seller", domain.RoleListingAgent, 2)
	s.header("LISTING AGENT COVER SHEET")
	s.agent()
	s.property()
	s.client(marginLeft, "seller", "SELLER")
	s.commission()
	s.onPage(2).details()
	return s.t
}

func dualTable() Table {
	s := newSheet("dual", domain.RoleDualAgent, 2)
	s.header("DUAL AGENCY COVER SHEET")
	s.agent()
	s.property()
	s.client(marginLeft, "buyer", "BUYER")
	s.client(columnRight, "seller", "SELLER")
	s.commission()
	s.onPage(2).details()
	return s.t
}

var tables = map[domain.AgentRole]func() Table{
	domain.RoleBuyersAgent:  buyerTable,
	domain.RoleListingAgent: sellerTable,
	domain.RoleDualAgent:    dualTable,
}

// TableFor returns the cover-sheet table for an agent role. LISTING AGENT
// gets the seller sheet, BUYERS AGENT the buyer sheet and DUAL AGENT the
// combined sheet; any other role is a ConfigurationError.
func TableFor(role domain.AgentRole) (Table, error) {
	build, ok := tables[role.Normalize()]
	if !ok {
		return Table{}, &domain.ConfigurationError{Table: "cover sheet", Key: string(role),
			Reason: fmt.Sprintf("no cover sheet for agent role %q", role)}
	}
	return build(), nil
}

// Tables returns every built-in table, buyer first.
func Tables() []Table {
	return []Table{buyerTable(), sellerTable(), dualTable()}
}
