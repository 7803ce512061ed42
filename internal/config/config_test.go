package config_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/config"
)

var allKeys = []string{
	"PORT", "DB_PATH", "AIRTABLE_API_KEY", "AIRTABLE_BASE_ID", "AIRTABLE_TRANSACTIONS_TABLE",
	"AIRTABLE_CLIENTS_TABLE", "AIRTABLE_API_URL", "AIRTABLE_TRANSACTION_SCHEMA",
	"COMMISSION_PAID_MODE", "SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
	"MAIL_FROM", "MAIL_TO",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Port != "8080" || c.DBPath != "intake.db" || c.SMTPPort != 587 {
		t.Errorf("defaults = port %q db %q smtp %d", c.Port, c.DBPath, c.SMTPPort)
	}
	if c.PaidMode != commission.PercentageMode {
		t.Errorf("paid mode = %q", c.PaidMode)
	}
	if c.TransactionSchema.Name != "transaction_v2" {
		t.Errorf("schema = %q", c.TransactionSchema.Name)
	}
	if c.AirtableEnabled() || c.MailEnabled() {
		t.Error("integrations should be disabled without credentials")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIRTABLE_API_KEY", "key")
	t.Setenv("AIRTABLE_BASE_ID", "appBase")
	t.Setenv("AIRTABLE_TRANSACTION_SCHEMA", "v1")
	t.Setenv("COMMISSION_PAID_MODE", "currency")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("MAIL_TO", " tc@example.com, ,broker@example.com ")

	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !c.AirtableEnabled() || !c.MailEnabled() {
		t.Error("integrations should be enabled")
	}
	if c.TransactionSchema.Name != "transaction_v1" || c.PaidMode != commission.CurrencyMode || c.SMTPPort != 2525 {
		t.Errorf("config = %+v", c)
	}
	if diff := cmp.Diff([]string{"tc@example.com", "broker@example.com"}, c.MailTo); diff != "" {
		t.Errorf("MailTo mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		"COMMISSION_PAID_MODE":        "dollars",
		"AIRTABLE_TRANSACTION_SCHEMA": "v9",
		"SMTP_PORT":                   "smtp",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := config.FromEnv(); err == nil {
				t.Errorf("%s=%q: expected an error", key, value)
			}
		})
	}
}
