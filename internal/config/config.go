// Package config reads server settings from the environment, after loading
// a .env file when one is present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/mapping"
)

type Config struct {
	Port   string
	DBPath string

	AirtableAPIKey            string
	AirtableBaseID            string
	AirtableTransactionsTable string
	AirtableClientsTable      string
	AirtableAPIURL            string
	TransactionSchema         mapping.Table

	PaidMode commission.PaidMode

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailTo       []string
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:                      getenv("PORT", "8080"),
		DBPath:                    getenv("DB_PATH", "intake.db"),
		AirtableAPIKey:            os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:            os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTransactionsTable: getenv("AIRTABLE_TRANSACTIONS_TABLE", "Transactions"),
		AirtableClientsTable:      getenv("AIRTABLE_CLIENTS_TABLE", "Clients"),
		AirtableAPIURL:            os.Getenv("AIRTABLE_API_URL"),
		SMTPHost:                  os.Getenv("SMTP_HOST"),
		SMTPUsername:              os.Getenv("SMTP_USERNAME"),
		SMTPPassword:              os.Getenv("SMTP_PASSWORD"),
		MailFrom:                  os.Getenv("MAIL_FROM"),
		MailTo:                    splitList(os.Getenv("MAIL_TO")),
	}

	mode, ok := commission.ParsePaidMode(os.Getenv("COMMISSION_PAID_MODE"))
	if !ok {
		return nil, fmt.Errorf("COMMISSION_PAID_MODE: want percentage or currency, got %q", os.Getenv("COMMISSION_PAID_MODE"))
	}
	c.PaidMode = mode

	table, err := mapping.TransactionTable(os.Getenv("AIRTABLE_TRANSACTION_SCHEMA"))
	if err != nil {
		return nil, fmt.Errorf("AIRTABLE_TRANSACTION_SCHEMA: %w", err)
	}
	c.TransactionSchema = table

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}
	c.SMTPPort = port

	return c, nil
}

// AirtableEnabled reports whether records should be written to Airtable.
func (c *Config) AirtableEnabled() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != ""
}

// MailEnabled reports whether cover sheets should be emailed.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && len(c.MailTo) > 0
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
