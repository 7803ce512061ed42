package domain

import (
	"strings"
	"time"
)

// AgentRole selects which cover-sheet layout applies to a transaction.
type AgentRole string

const (
	RoleListingAgent AgentRole = "LISTING AGENT"
	RoleBuyersAgent  AgentRole = "BUYERS AGENT"
	RoleDualAgent    AgentRole = "DUAL AGENT"
)

// Normalize upper-cases and trims the role as typed by the form.
func (r AgentRole) Normalize() AgentRole {
	return AgentRole(strings.ToUpper(strings.TrimSpace(string(r))))
}

// Valid reports whether r names one of the three supported roles.
func (r AgentRole) Valid() bool {
	switch r.Normalize() {
	case RoleListingAgent, RoleBuyersAgent, RoleDualAgent:
		return true
	}
	return false
}

type ClientType string

const (
	ClientBuyer  ClientType = "BUYER"
	ClientSeller ClientType = "SELLER"
)

type AgentData struct {
	Role  AgentRole `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

type PropertyData struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZIP          string `json:"zip"`
	MLSNumber    string `json:"mlsNumber"`
	SalePrice    string `json:"salePrice"`
	Status       string `json:"status"`       // e.g. "pending", "active"
	ClosingDate  string `json:"closingDate"`  // YYYY-MM-DD as entered
	PropertyType string `json:"propertyType"` // e.g. "residential", "commercial"
	AccessType   string `json:"accessType"`   // e.g. "lockbox", "appointment"
	AccessCode   string `json:"accessCode"`
	UpdateMLS    *bool  `json:"updateMls"`
}

type Client struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	MaritalStatus string     `json:"maritalStatus"`
	Type          ClientType `json:"type"`
}

// CommissionState holds the commission step exactly as typed. Numeric
// fields are decimal strings and may be empty.
type CommissionState struct {
	TotalCommissionPercentage string `json:"totalCommissionPercentage"`
	ListingAgentPercentage    string `json:"listingAgentPercentage"`
	BuyersAgentPercentage     string `json:"buyersAgentPercentage"`
	SellerPaidPercentage      string `json:"sellerPaidPercentage"`
	BuyerPaidPercentage       string `json:"buyerPaidPercentage"`
	BrokerFee                 string `json:"brokerFee"`
	HasSellersAssist          bool   `json:"hasSellersAssist"`
	SellersAssistAmount       string `json:"sellersAssistAmount"`
	IsReferral                bool   `json:"isReferral"`
	ReferralParty             string `json:"referralParty"`
	BrokerEIN                 string `json:"brokerEin"`
	ReferralFeePercentage     string `json:"referralFeePercentage"`
	CoordinatorFeePaidBy      string `json:"coordinatorFeePaidBy"` // "client" | "agent"
}

type PropertyDetailsData struct {
	County          string `json:"county"`
	Municipality    string `json:"municipality"`
	SchoolDistrict  string `json:"schoolDistrict"`
	YearBuilt       string `json:"yearBuilt"`
	BuiltBefore1978 *bool  `json:"builtBefore1978"`
	Winterized      *bool  `json:"winterized"`
	HasHOA          *bool  `json:"hasHoa"`
	HOAName         string `json:"hoaName"`
	HomeWarranty    *bool  `json:"homeWarranty"`
	WarrantyCompany string `json:"warrantyCompany"`
	WarrantyCost    string `json:"warrantyCost"`
	WarrantyPaidBy  string `json:"warrantyPaidBy"`
}

type TitleData struct {
	TitleCompany string `json:"titleCompany"`
	TitleContact string `json:"titleContact"`
	TitleEmail   string `json:"titleEmail"`
	TitlePhone   string `json:"titlePhone"`
}

type AdditionalInfo struct {
	Notes               string `json:"notes"`
	SpecialInstructions string `json:"specialInstructions"`
	UrgentIssues        string `json:"urgentIssues"`
}

type SignatureData struct {
	AgentSignature string `json:"agentSignature"`
	SignatureDate  string `json:"signatureDate"`
	TermsAccepted  bool   `json:"termsAccepted"`
}

type DocumentsData struct {
	Confirmed bool     `json:"confirmed"`
	Documents []string `json:"documents"`
}

// TransactionFormState is the whole intake form. The JSON names double as
// the canonical source keys of every mapping and placement table.
type TransactionFormState struct {
	DateSubmitted       string              `json:"dateSubmitted"`
	AgentData           AgentData           `json:"agentData"`
	PropertyData        PropertyData        `json:"propertyData"`
	Clients             []Client            `json:"clients"`
	CommissionData      CommissionState     `json:"commissionData"`
	PropertyDetailsData PropertyDetailsData `json:"propertyDetailsData"`
	TitleData           TitleData           `json:"titleData"`
	AdditionalInfo      AdditionalInfo      `json:"additionalInfo"`
	SignatureData       SignatureData       `json:"signatureData"`
	DocumentsData       DocumentsData       `json:"documentsData"`
}

// FirstClientOfType returns the first client whose type matches t,
// compared after upper-casing. ok is false when there is none.
func FirstClientOfType(clients []Client, t ClientType) (Client, bool) {
	want := strings.ToUpper(strings.TrimSpace(string(t)))
	for _, c := range clients {
		if strings.ToUpper(strings.TrimSpace(string(c.Type))) == want {
			return c, true
		}
	}
	return Client{}, false
}

type SubmissionStatus string

const (
	StatusReceived  SubmissionStatus = "received"
	StatusCompleted SubmissionStatus = "completed"
	StatusFailed    SubmissionStatus = "failed"
)

// Submission is the persisted envelope around a submitted form.
type Submission struct {
	ID              string
	State           TransactionFormState
	Status          SubmissionStatus
	RecordID        string   // external transaction record
	ClientRecordIDs []string // external client records, in form order
	Error           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
