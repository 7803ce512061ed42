package mapping_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/mapping"
)

func boolPtr(b bool) *bool { return &b }

func txTable(entries ...mapping.FieldMapping) mapping.Table {
	return mapping.Table{Name: "test", Schema: mapping.SchemaTransaction, Entries: entries}
}

func entry(key, id string) mapping.FieldMapping {
	return mapping.FieldMapping{SourceKey: key, ExternalFieldID: id}
}

func transformed(key, id string, kind mapping.TransformKind) mapping.FieldMapping {
	return mapping.FieldMapping{SourceKey: key, ExternalFieldID: id, Transform: kind}
}

func sampleState() *domain.TransactionFormState {
	return &domain.TransactionFormState{
		DateSubmitted: "03/14/2025",
		AgentData:     domain.AgentData{Role: domain.RoleListingAgent, Name: "Dana Reyes"},
		PropertyData: domain.PropertyData{
			Address:      "12 Elm St",
			SalePrice:    "$450,000",
			PropertyType: "residential",
			UpdateMLS:    boolPtr(true),
		},
		CommissionData: domain.CommissionState{
			TotalCommissionPercentage: "5",
			ListingAgentPercentage:    "3",
			BuyersAgentPercentage:     "2",
			CoordinatorFeePaidBy:      "client",
		},
		PropertyDetailsData: domain.PropertyDetailsData{
			Winterized:      boolPtr(false),
			BuiltBefore1978: boolPtr(true),
		},
	}
}

func TestProject_Coercions(t *testing.T) {
	table := txTable(
		transformed("dateSubmitted", "fldDate", mapping.TransformDate),
		entry("agentData.name", "fldAgent"),
		entry("agentData.role", "fldRole"),
		entry("propertyData.salePrice", "fldPrice"),
		entry("propertyData.propertyType", "fldType"),
		entry("propertyData.updateMls", "fldMls"),
		entry("commissionData.totalCommissionPercentage", "fldTotal"),
		entry("commissionData.coordinatorFeePaidBy", "fldCoord"),
		entry("propertyDetailsData.winterized", "fldWinter"),
		entry("propertyDetailsData.builtBefore1978", "fldLead"),
	)

	got, err := mapping.Project(sampleState(), table)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := mapping.Fields{
		"fldDate":   "2025-03-14",
		"fldAgent":  "Dana Reyes",
		"fldRole":   "LISTING AGENT",
		"fldPrice":  450000.0,
		"fldType":   "RESIDENTIAL",
		"fldMls":    "YES",
		"fldTotal":  5.0,
		"fldCoord":  "CLIENT",
		"fldWinter": "NOT WINTERIZED",
		"fldLead":   "YES",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_OmitsAbsentValues(t *testing.T) {
	table := txTable(
		entry("propertyData.address", "fldAddr"),
		entry("propertyData.city", "fldCity"),                       // empty string
		entry("propertyDetailsData.hasHoa", "fldHoa"),               // nil *bool
		entry("documentsData.documents", "fldDocs"),                 // nil slice
		entry("commissionData.sellerPaidPercentage", "fldSellerPd"), // empty numeric
	)
	st := sampleState()
	st.PropertyData.City = "   "

	got, err := mapping.Project(st, table)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if diff := cmp.Diff(mapping.Fields{"fldAddr": "12 Elm St"}, got); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_OmissionLaw(t *testing.T) {
	table := mapping.MustEmbedded("transaction_v2")
	st := sampleState()
	got, err := mapping.Project(st, table)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	present := map[string]bool{}
	for _, e := range table.Entries {
		if _, ok := got[e.ExternalFieldID]; ok {
			present[e.SourceKey] = true
		}
	}
	for _, key := range []string{
		"dateSubmitted", "agentData.name", "propertyData.address", "propertyData.salePrice",
		"propertyData.updateMls", "commissionData.listingAgentPercentage",
		"commissionData.hasSellersAssist", "propertyDetailsData.winterized",
	} {
		if !present[key] {
			t.Errorf("%s: expected an output field", key)
		}
	}
	for _, key := range []string{
		"propertyData.city", "commissionData.brokerFee", "titleData.titleCompany",
		"propertyDetailsData.hasHoa", "documentsData.documents",
	} {
		if present[key] {
			t.Errorf("%s: empty source produced an output field", key)
		}
	}
	if len(got) != len(present) {
		t.Errorf("got %d fields, %d attributable to entries", len(got), len(present))
	}
}

func TestProject_UnknownSourceKey(t *testing.T) {
	table := txTable(
		entry("agentData.name", "fldAgent"),
		entry("doesNotExist", "fldNope"),
	)
	got, err := mapping.Project(sampleState(), table)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) || ce.Key != "doesNotExist" {
		t.Errorf("ConfigurationError = %+v, want key doesNotExist", ce)
	}
	if got != nil {
		t.Errorf("fields = %v, want nil on configuration error", got)
	}
}

func TestProject_SchemaMismatch(t *testing.T) {
	client := mapping.MustEmbedded("client")
	if _, err := mapping.Project(sampleState(), client); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("client table on a transaction: err = %v, want ErrConfiguration", err)
	}
	if _, err := mapping.Project("not a struct", txTable()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("string source: err = %v, want ErrConfiguration", err)
	}
}

func TestProject_MappingErrorKeepsPartialOutput(t *testing.T) {
	table := txTable(
		entry("agentData.name", "fldAgent"),
		entry("propertyData.salePrice", "fldPrice"),
		transformed("propertyData.closingDate", "fldClose", mapping.TransformDate),
	)
	st := sampleState()
	st.PropertyData.SalePrice = "four hundred"
	st.PropertyData.ClosingDate = "next week"

	got, err := mapping.Project(st, table)
	if !errors.Is(err, domain.ErrMapping) {
		t.Fatalf("err = %v, want ErrMapping", err)
	}
	var me *domain.MappingError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, not a MappingError", err)
	}
	if me.SourceKey != "propertyData.salePrice" || me.Target != "fldPrice" || me.Raw != "four hundred" {
		t.Errorf("first MappingError = %+v", me)
	}
	if !errors.Is(err, domain.ErrMapping) || errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("err classification wrong: %v", err)
	}
	want := mapping.Fields{"fldAgent": "Dana Reyes", "fldClose": "next week"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partial output mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_Dates(t *testing.T) {
	table := txTable(
		transformed("dateSubmitted", "fldDate", mapping.TransformDate),
		transformed("propertyData.closingDate", "fldClose", mapping.TransformDate),
	)
	tests := []struct {
		in   string
		want any
	}{
		{"2025-06-30", "2025-06-30"},
		{"06/30/2025", "2025-06-30"},
		{"6/3/2025", "2025-06-03"},
		{"2025-06-30T17:00:00Z", "2025-06-30"},
		{" end of June ", "end of June"},
		{"TBD", "TBD"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			st := sampleState()
			st.PropertyData.ClosingDate = tt.in
			got, err := mapping.Project(st, table)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if diff := cmp.Diff(tt.want, got["fldClose"]); diff != "" {
				t.Errorf("closing date mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProject_DefaultZero(t *testing.T) {
	e := entry("commissionData.buyerPaidPercentage", "fldBuyerPd")
	e.DefaultZero = true
	st := sampleState()
	st.CommissionData.BuyerPaidPercentage = "n/a"

	got, err := mapping.Project(st, txTable(e))
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if diff := cmp.Diff(mapping.Fields{"fldBuyerPd": 0.0}, got); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_Winterized(t *testing.T) {
	table := txTable(entry("propertyDetailsData.winterized", "fldWinter"))
	for _, tt := range []struct {
		name string
		in   *bool
		want mapping.Fields
	}{
		{"yes", boolPtr(true), mapping.Fields{"fldWinter": "WINTERIZED"}},
		{"no", boolPtr(false), mapping.Fields{"fldWinter": "NOT WINTERIZED"}},
		{"unanswered", nil, mapping.Fields{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			st := sampleState()
			st.PropertyDetailsData.Winterized = tt.in
			got, err := mapping.Project(st, table)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProject_ClientTable(t *testing.T) {
	table := mapping.MustEmbedded("client")
	c := domain.Client{Name: "Pat Lee", Email: "pat@example.com", MaritalStatus: "married", Type: "buyer"}
	got, err := mapping.Project(c, table)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	byKey := map[string]any{}
	for _, e := range table.Entries {
		if v, ok := got[e.ExternalFieldID]; ok {
			byKey[e.SourceKey] = v
		}
	}
	want := map[string]any{
		"name":          "Pat Lee",
		"email":         "pat@example.com",
		"maritalStatus": "MARRIED",
		"type":          "BUYER",
	}
	if diff := cmp.Diff(want, byKey); diff != "" {
		t.Errorf("client projection mismatch (-want +got):\n%s", diff)
	}
}

func TestTableValidate(t *testing.T) {
	numericZero := entry("agentData.name", "fldA")
	numericZero.DefaultZero = true

	tests := []struct {
		name  string
		table mapping.Table
	}{
		{"unknown schema", mapping.Table{Name: "x", Schema: "invoice"}},
		{"unknown key", txTable(entry("doesNotExist", "fldA"))},
		{"struct key", txTable(entry("agentData", "fldA"))},
		{"empty id", txTable(entry("agentData.name", " "))},
		{"duplicate id", txTable(entry("agentData.name", "fldA"), entry("agentData.email", "fldA"))},
		{"unknown transform", txTable(transformed("agentData.name", "fldA", "titlecase"))},
		{"defaultZero on text", txTable(numericZero)},
		{"link on client table", mapping.Table{Name: "c", Schema: mapping.SchemaClient, ClientLinkFieldID: "fldL"}},
		{"link also mapped", mapping.Table{Name: "t", Schema: mapping.SchemaTransaction, ClientLinkFieldID: "fldA",
			Entries: []mapping.FieldMapping{entry("agentData.name", "fldA")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("Validate() = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoadTable_RejectsUnknownYAMLKeys(t *testing.T) {
	data := []byte("name: t\nschema: transaction\nfields:\n  - sourceKey: agentData.name\n    externalFieldID: fldA\n")
	if _, err := mapping.LoadTable(data); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("LoadTable = %v, want ErrConfiguration for misspelled key", err)
	}
}

func TestEmbeddedTables(t *testing.T) {
	names := mapping.EmbeddedNames()
	if diff := cmp.Diff([]string{"client", "transaction_v1", "transaction_v2"}, names); diff != "" {
		t.Fatalf("EmbeddedNames mismatch (-want +got):\n%s", diff)
	}
	for _, n := range names {
		if _, err := mapping.Embedded(n); err != nil {
			t.Errorf("Embedded(%q): %v", n, err)
		}
	}
	if _, err := mapping.Embedded("nope"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("Embedded(nope) = %v, want ErrConfiguration", err)
	}
}

func TestTransactionTableVersions(t *testing.T) {
	has := func(tb mapping.Table, key string) bool {
		for _, e := range tb.Entries {
			if e.SourceKey == key {
				return true
			}
		}
		return false
	}
	v1, err := mapping.TransactionTable("v1")
	if err != nil {
		t.Fatal(err)
	}
	v2, err := mapping.TransactionTable("")
	if err != nil {
		t.Fatal(err)
	}
	if has(v1, "commissionData.sellerPaidPercentage") || has(v1, "commissionData.buyerPaidPercentage") {
		t.Error("v1 table should not carry the paid split")
	}
	if !has(v2, "commissionData.sellerPaidPercentage") || !has(v2, "commissionData.buyerPaidPercentage") {
		t.Error("v2 table should carry the paid split")
	}
	if v2.ClientLinkFieldID == "" {
		t.Error("v2 table has no client link field")
	}
	if _, err := mapping.TransactionTable("v3"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("TransactionTable(v3) = %v, want ErrConfiguration", err)
	}
}
