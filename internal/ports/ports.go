package ports

import (
	"context"
	"io"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/mapping"
	"github.com/csg33k/txn-intake/internal/placement"
)

// SubmissionRepository defines persistence operations.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *domain.Submission) error
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	// ListSubmissions returns the newest submissions first, at most limit
	// (all when limit <= 0).
	ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error)
	UpdateSubmission(ctx context.Context, s *domain.Submission) error
	DeleteSubmission(ctx context.Context, id string) error
}

// RecordStore is the external tabular database the intake is copied into.
type RecordStore interface {
	// CreateRecord inserts one record and returns its ID.
	CreateRecord(ctx context.Context, table string, fields mapping.Fields) (string, error)
}

// CoverSheetRenderer draws placement instructions onto a template.
type CoverSheetRenderer interface {
	Render(table placement.Table, ins []placement.DrawInstruction, w io.Writer) error
}

// Attachment is a file sent along with a notification.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mailer delivers the cover sheet.
type Mailer interface {
	Send(ctx context.Context, subject, body string, attachments ...Attachment) error
}
