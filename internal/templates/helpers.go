package templates

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/numeric"
)

// salePrice renders a raw sale price as "$1,234.56", or the raw text when
// it does not parse.
func salePrice(raw string) string {
	d, ok := numeric.Parse(raw)
	if !ok {
		return raw
	}
	return numeric.Currency(d)
}

// shortID trims a submission ID for display in tables and URLs.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func statusClass(s domain.SubmissionStatus) string {
	switch s {
	case domain.StatusCompleted:
		return "ok"
	case domain.StatusFailed:
		return "failed"
	}
	return "pending"
}

// roleLabel turns "BUYERS AGENT" into "Buyers agent".
func roleLabel(r domain.AgentRole) string {
	s := strings.ToLower(string(r))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
