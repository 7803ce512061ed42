// Package intaketest provides in-memory collaborators for exercising the
// intake service and its HTTP adapter without SQLite, Airtable or SMTP.
package intaketest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/mapping"
	"github.com/csg33k/txn-intake/internal/placement"
	"github.com/csg33k/txn-intake/internal/ports"
)

// Repo is a map-backed ports.SubmissionRepository.
type Repo struct {
	mu   sync.Mutex
	rows map[string]domain.Submission
}

func NewRepo() *Repo { return &Repo{rows: map[string]domain.Submission{}} }

func (r *Repo) CreateSubmission(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.rows[s.ID]; dup {
		return fmt.Errorf("duplicate submission %s", s.ID)
	}
	s.UpdatedAt = s.CreatedAt
	r.rows[s.ID] = clone(*s)
	return nil
}

func (r *Repo) GetSubmission(_ context.Context, id string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	s = clone(s)
	return &s, nil
}

func (r *Repo) ListSubmissions(_ context.Context, limit int) ([]domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]domain.Submission, 0, len(r.rows))
	for _, s := range r.rows {
		list = append(list, clone(s))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repo) UpdateSubmission(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID]; !ok {
		return fmt.Errorf("submission %s: %w", s.ID, domain.ErrNotFound)
	}
	r.rows[s.ID] = clone(*s)
	return nil
}

func (r *Repo) DeleteSubmission(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func (r *Repo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func clone(s domain.Submission) domain.Submission {
	s.ClientRecordIDs = append([]string(nil), s.ClientRecordIDs...)
	s.State.Clients = append([]domain.Client(nil), s.State.Clients...)
	return s
}

// CreatedRecord is one call to RecordStore.CreateRecord.
type CreatedRecord struct {
	Table  string
	Fields mapping.Fields
}

// RecordStore hands out sequential record IDs. When FailOn names a table,
// creating a record there fails.
type RecordStore struct {
	mu      sync.Mutex
	Created []CreatedRecord
	FailOn  string
}

func (rs *RecordStore) CreateRecord(_ context.Context, table string, fields mapping.Fields) (string, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.FailOn == table {
		return "", fmt.Errorf("record store rejected %s", table)
	}
	rs.Created = append(rs.Created, CreatedRecord{Table: table, Fields: fields})
	return fmt.Sprintf("rec%04d", len(rs.Created)), nil
}

// Renderer records the last projection it was asked to draw and writes a
// fixed marker instead of a PDF.
type Renderer struct {
	mu           sync.Mutex
	Table        placement.Table
	Instructions []placement.DrawInstruction
	Calls        int
}

const RenderedMarker = "%PDF-fake"

func (r *Renderer) Render(table placement.Table, ins []placement.DrawInstruction, w io.Writer) error {
	r.mu.Lock()
	r.Table, r.Instructions = table, ins
	r.Calls++
	r.mu.Unlock()
	_, err := io.WriteString(w, RenderedMarker)
	return err
}

// SentMail is one call to Mailer.Send.
type SentMail struct {
	Subject     string
	Body        string
	Attachments []ports.Attachment
}

type Mailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *Mailer) Send(_ context.Context, subject, body string, attachments ...ports.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{Subject: subject, Body: body, Attachments: attachments})
	return nil
}

// MonoMeasurer treats every rune as half an em wide.
type MonoMeasurer struct{}

func (MonoMeasurer) TextWidth(text string, fontSize float64, _ bool) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5
}
