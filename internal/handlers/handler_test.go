package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/handlers"
	"github.com/csg33k/txn-intake/internal/intake"
	"github.com/csg33k/txn-intake/internal/intake/intaketest"
)

type envelope struct {
	Status       string                  `json:"status"`
	Code         string                  `json:"code"`
	Message      string                  `json:"message"`
	RequestID    string                  `json:"requestId"`
	Fields       domain.ValidationErrors `json:"fields"`
	SubmissionID string                  `json:"submissionId"`
	Data         json.RawMessage         `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	n := 0
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := intake.New(intaketest.NewRepo(), &intaketest.Renderer{},
		intake.WithRecordStore(&intaketest.RecordStore{}, "Transactions", "Clients"),
		intake.WithMailer(&intaketest.Mailer{}),
		intake.WithMeasurer(intaketest.MonoMeasurer{}),
		intake.WithClock(func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }),
		intake.WithIDs(func() string { n++; return fmt.Sprintf("sub-%04d", n) }),
		intake.WithLogger(quiet),
	)
	srv := httptest.NewServer(handlers.New(svc, quiet).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeEnvelope(t *testing.T, data []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return env
}

const dualForm = `{
  "agentData": {"role": "Dual Agent", "name": "Dana Reyes"},
  "propertyData": {"address": "12 Elm St", "salePrice": "450000", "propertyType": "residential"},
  "clients": [
    {"name": "Pat Buyer", "type": "BUYER"},
    {"name": "Sam Seller", "type": "SELLER"}
  ],
  "commissionData": {"totalCommissionPercentage": "5", "listingAgentPercentage": "3", "buyersAgentPercentage": "2"}
}`

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestDeriveCommission(t *testing.T) {
	srv := newServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/commission/derive",
		`{"field":"listingAgentPercentage","value":"3","state":{"totalCommissionPercentage":"5"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %s", resp.StatusCode, data)
	}
	var res struct {
		Patch map[string]string `json:"patch"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, data).Data, &res); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"buyersAgentPercentage": "2.00"}, res.Patch); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}

	// The calculator on the index page sends the sale price and paid mode.
	resp, data = do(t, http.MethodPost, srv.URL+"/api/commission/derive",
		`{"field":"sellerPaidPercentage","value":"4000","state":{"totalCommissionPercentage":"5"},"salePrice":"$300,000","mode":"currency"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("currency status = %d body = %s", resp.StatusCode, data)
	}
	var cur struct {
		Patch      map[string]string `json:"patch"`
		CanAdvance bool              `json:"canAdvance"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, data).Data, &cur); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"buyerPaidPercentage": "11000.00"}, cur.Patch); diff != "" {
		t.Errorf("currency patch mismatch (-want +got):\n%s", diff)
	}
	if !cur.CanAdvance {
		t.Error("canAdvance = false for a complete currency split")
	}

	tests := []struct {
		name, body, code string
	}{
		{"unknown field", `{"field":"bogus","value":"1"}`, "VALIDATION_ERROR"},
		{"unknown mode", `{"field":"brokerFee","value":"1","mode":"euros"}`, "VALIDATION_ERROR"},
		{"bad json", `{"field":`, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/api/commission/derive", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if env := decodeEnvelope(t, data); env.Code != tt.code || env.RequestID == "" {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestValidateCommission(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/commission/validate", `{"totalCommissionPercentage":"5"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid state status = %d", resp.StatusCode)
	}

	resp, data := do(t, http.MethodPost, srv.URL+"/api/commission/validate",
		`{"listingAgentPercentage":"150","isReferral":true,"referralParty":"Acme","brokerEin":"12-3456789","referralFeePercentage":"25"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	want := domain.ValidationErrors{{Field: "listingAgentPercentage", Message: "must be a number between 0 and 100"}}
	if diff := cmp.Diff(want, decodeEnvelope(t, data).Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmissionLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/submissions", dualForm)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", resp.StatusCode, data)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/submissions/sub-0001" {
		t.Errorf("Location = %q", loc)
	}
	var created struct {
		ID              string   `json:"id"`
		Status          string   `json:"status"`
		ClientRecordIDs []string `json:"clientRecordIds"`
		State           struct {
			DateSubmitted string `json:"dateSubmitted"`
		} `json:"state"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, data).Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != "completed" || len(created.ClientRecordIDs) != 2 || created.State.DateSubmitted != "2025-03-14" {
		t.Errorf("created = %+v", created)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/submissions/sub-0001", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d", resp.StatusCode)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/api/submissions/sub-0001/coversheet.pdf", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("cover sheet status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if string(data) != intaketest.RenderedMarker {
		t.Errorf("cover sheet body = %q", data)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "cover-sheet_2025-03-14_sub-0001.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/api/submissions?limit=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(decodeEnvelope(t, data).Data, &list); err != nil || len(list) != 1 {
		t.Errorf("list = %s (%v)", data, err)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/submissions?limit=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}

	for _, path := range []string{"/api/submissions/nope", "/api/submissions/nope/coversheet.pdf"} {
		resp, data = do(t, http.MethodGet, srv.URL+path, "")
		if resp.StatusCode != http.StatusNotFound || decodeEnvelope(t, data).Code != "NOT_FOUND" {
			t.Errorf("%s: status = %d body = %s", path, resp.StatusCode, data)
		}
	}

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/submissions/sub-0001", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/submissions/sub-0001", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
	resp, data = do(t, http.MethodDelete, srv.URL+"/api/submissions/sub-0001", "")
	if resp.StatusCode != http.StatusNotFound || decodeEnvelope(t, data).Code != "NOT_FOUND" {
		t.Errorf("second delete: status = %d body = %s", resp.StatusCode, data)
	}
}

func TestCreateSubmission_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		code       string
		hasStoreID bool
	}{
		{
			name:   "unknown role",
			body:   strings.Replace(dualForm, "Dual Agent", "Referral Agent", 1),
			status: http.StatusUnprocessableEntity,
			code:   "CONFIGURATION_ERROR",
		},
		{
			name:   "invalid commission",
			body:   strings.Replace(dualForm, `"listingAgentPercentage": "3"`, `"listingAgentPercentage": "-3"`, 1),
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:       "unmappable sale price",
			body:       strings.Replace(dualForm, `"salePrice": "450000"`, `"salePrice": "ask the seller"`, 1),
			status:     http.StatusUnprocessableEntity,
			code:       "MAPPING_ERROR",
			hasStoreID: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t)
			resp, data := do(t, http.MethodPost, srv.URL+"/api/submissions", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			env := decodeEnvelope(t, data)
			if env.Code != tt.code {
				t.Errorf("code = %q, want %q", env.Code, tt.code)
			}
			if (env.SubmissionID != "") != tt.hasStoreID {
				t.Errorf("submissionId = %q", env.SubmissionID)
			}
		})
	}
}

func TestPreviewCoverSheet(t *testing.T) {
	srv := newServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/api/coversheet/preview", dualForm)
	if resp.StatusCode != http.StatusOK || string(data) != intaketest.RenderedMarker {
		t.Fatalf("status = %d body = %q", resp.StatusCode, data)
	}

	_, data = do(t, http.MethodGet, srv.URL+"/api/submissions", "")
	var list []json.RawMessage
	if err := json.Unmarshal(decodeEnvelope(t, data).Data, &list); err != nil || len(list) != 0 {
		t.Errorf("preview stored a submission: %s", data)
	}

	resp, data = do(t, http.MethodPost, srv.URL+"/api/coversheet/preview", `{"agentData":{"role":"landlord"}}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || decodeEnvelope(t, data).Code != "CONFIGURATION_ERROR" {
		t.Errorf("status = %d body = %s", resp.StatusCode, data)
	}
}

func TestIndex(t *testing.T) {
	srv := newServer(t)
	if resp, _ := do(t, http.MethodPost, srv.URL+"/api/submissions", dualForm); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp, data := do(t, http.MethodGet, srv.URL+"/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	page := string(data)
	for _, want := range []string{"12 Elm St", "$450,000", "Dual agent", "sub-0001/coversheet.pdf", "percentage"} {
		if !strings.Contains(page, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}
