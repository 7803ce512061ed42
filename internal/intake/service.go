// Package intake runs a submitted transaction through the engines and out
// to the external collaborators: the submission store, the external record
// base, the cover-sheet renderer and the mailer.
package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/mapping"
	"github.com/csg33k/txn-intake/internal/placement"
	"github.com/csg33k/txn-intake/internal/ports"
)

type Service struct {
	repo     ports.SubmissionRepository
	renderer ports.CoverSheetRenderer

	records          ports.RecordStore
	transactionsName string
	clientsName      string
	transactionTable mapping.Table
	clientTable      mapping.Table

	mailer   ports.Mailer
	mode     commission.PaidMode
	measurer placement.Measurer
	now      func() time.Time
	newID    func() string
	log      *slog.Logger
}

type Option func(*Service)

// WithRecordStore enables writing client and transaction records to the
// named external tables.
func WithRecordStore(rs ports.RecordStore, transactions, clients string) Option {
	return func(s *Service) {
		s.records = rs
		s.transactionsName = transactions
		s.clientsName = clients
	}
}

func WithTransactionTable(t mapping.Table) Option {
	return func(s *Service) { s.transactionTable = t }
}

func WithMailer(m ports.Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithPaidMode(m commission.PaidMode) Option {
	return func(s *Service) { s.mode = m }
}

func WithMeasurer(m placement.Measurer) Option {
	return func(s *Service) { s.measurer = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(repo ports.SubmissionRepository, renderer ports.CoverSheetRenderer, opts ...Option) *Service {
	s := &Service{
		repo:             repo,
		renderer:         renderer,
		transactionTable: mapping.MustEmbedded("transaction_v2"),
		clientTable:      mapping.MustEmbedded("client"),
		mode:             commission.PercentageMode,
		now:              time.Now,
		newID:            uuid.NewString,
		log:              slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.measurer == nil {
		s.measurer = placement.NewFontMeasurer()
	}
	return s
}

func (s *Service) PaidMode() commission.PaidMode { return s.mode }

// Submit validates and stores a transaction, then copies it to the record
// base, renders its cover sheet and mails it. Rejected input is not
// stored. Once stored, any failure leaves the submission marked failed
// with the error text, and the error is returned alongside it.
func (s *Service) Submit(ctx context.Context, state domain.TransactionFormState) (*domain.Submission, error) {
	state.AgentData.Role = state.AgentData.Role.Normalize()
	table, err := placement.TableFor(state.AgentData.Role)
	if err != nil {
		return nil, err
	}
	if errs := commission.Validate(state.CommissionData, s.mode); len(errs) > 0 {
		return nil, errs
	}
	now := s.now()
	if strings.TrimSpace(state.DateSubmitted) == "" {
		state.DateSubmitted = now.Format("2006-01-02")
	}

	sub := &domain.Submission{
		ID:        s.newID(),
		State:     state,
		Status:    domain.StatusReceived,
		CreatedAt: now,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	log := s.log.With("submission", sub.ID, "role", string(state.AgentData.Role))
	log.Info("submission received", "address", state.PropertyData.Address, "clients", len(state.Clients))

	if err := s.process(ctx, sub, table, log); err != nil {
		sub.Status = domain.StatusFailed
		sub.Error = err.Error()
		if uerr := s.repo.UpdateSubmission(ctx, sub); uerr != nil {
			log.Error("failed to record submission failure", "err", uerr)
		}
		log.Error("submission failed", "err", err)
		return sub, err
	}

	sub.Status = domain.StatusCompleted
	sub.Error = ""
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		return sub, fmt.Errorf("store submission: %w", err)
	}
	log.Info("submission completed", "record", sub.RecordID)
	return sub, nil
}

func (s *Service) process(ctx context.Context, sub *domain.Submission, table placement.Table, log *slog.Logger) error {
	state := &sub.State

	// Project everything first so a mapping error stops the submission
	// before anything is written externally.
	clientFields := make([]mapping.Fields, len(state.Clients))
	for i, c := range state.Clients {
		f, err := mapping.Project(c, s.clientTable)
		if err != nil {
			return fmt.Errorf("client %d: %w", i+1, err)
		}
		clientFields[i] = f
	}
	txFields, err := mapping.Project(state, s.transactionTable)
	if err != nil {
		return err
	}

	if s.records == nil {
		log.Info("record store disabled; skipping external records")
	} else {
		for _, f := range clientFields {
			id, err := s.records.CreateRecord(ctx, s.clientsName, f)
			if err != nil {
				return fmt.Errorf("create client record: %w", err)
			}
			sub.ClientRecordIDs = append(sub.ClientRecordIDs, id)
		}
		if link := s.transactionTable.ClientLinkFieldID; link != "" && len(sub.ClientRecordIDs) > 0 {
			txFields[link] = sub.ClientRecordIDs
		}
		id, err := s.records.CreateRecord(ctx, s.transactionsName, txFields)
		if err != nil {
			return fmt.Errorf("create transaction record: %w", err)
		}
		sub.RecordID = id
		log.Info("external records created", "record", id, "clients", len(sub.ClientRecordIDs))
	}

	var pdf bytes.Buffer
	if err := s.render(state, table, &pdf); err != nil {
		return err
	}

	if s.mailer == nil {
		log.Info("mailer disabled; not sending cover sheet")
		return nil
	}
	subject := "Cover sheet: " + coalesce(state.PropertyData.Address, sub.ID)
	body := fmt.Sprintf("A %s transaction was submitted by %s on %s.\n",
		strings.ToLower(string(state.AgentData.Role)), coalesce(state.AgentData.Name, "an agent"), state.DateSubmitted)
	err = s.mailer.Send(ctx, subject, body, ports.Attachment{
		Filename:    CoverSheetFilename(sub),
		ContentType: "application/pdf",
		Data:        pdf.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("mail cover sheet: %w", err)
	}
	return nil
}

// DeriveResult is the outcome of one commission edit.
type DeriveResult struct {
	Patch      commission.Patch        `json:"patch"`
	State      domain.CommissionState  `json:"state"`
	Errors     domain.ValidationErrors `json:"errors"`
	Status     map[string]string       `json:"status"`
	CanAdvance bool                    `json:"canAdvance"`
}

// Derive applies the edit of field to value, returning the derived patch,
// the merged state, the validation messages of the merged state and whether
// the commission step may be left with it. An
// unknown field is invalid input. A zero opts.Mode uses the configured mode.
func (s *Service) Derive(field, value string, state domain.CommissionState, opts commission.Options) (*DeriveResult, error) {
	f, ok := commission.ParseField(field)
	if !ok {
		return nil, domain.ValidationErrors{{Field: field, Message: "is not a commission field"}}
	}
	if opts.Mode == "" {
		opts.Mode = s.mode
	}
	patch := commission.Derive(f, value, state, opts)
	merged := commission.Apply(state, f, value, patch)

	tracker := commission.NewTracker(opts.Mode)
	errs := tracker.Attempt(merged)
	status := make(map[string]string, len(commission.Fields))
	for _, cf := range commission.Fields {
		status[string(cf)] = tracker.Status(cf).String()
	}
	return &DeriveResult{
		Patch:      patch,
		State:      merged,
		Errors:     errs,
		Status:     status,
		CanAdvance: tracker.CanAdvance(merged),
	}, nil
}

// Validate checks a commission step without deriving anything.
func (s *Service) Validate(state domain.CommissionState) domain.ValidationErrors {
	return commission.Validate(state, s.mode)
}

// CoverSheet re-renders a stored submission's cover sheet to w.
func (s *Service) CoverSheet(ctx context.Context, id string, w io.Writer) (*domain.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := placement.TableFor(sub.State.AgentData.Role)
	if err != nil {
		return nil, err
	}
	return sub, s.render(&sub.State, table, w)
}

// Preview renders a cover sheet for an unsaved form.
func (s *Service) Preview(state domain.TransactionFormState, w io.Writer) error {
	table, err := placement.TableFor(state.AgentData.Role)
	if err != nil {
		return err
	}
	return s.render(&state, table, w)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Submission, error) {
	return s.repo.ListSubmissions(ctx, limit)
}

// Delete removes a stored submission. Records already copied to the record
// base are left alone. A missing id is ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteSubmission(ctx, id); err != nil {
		return err
	}
	s.log.Info("submission deleted", "submission", id)
	return nil
}

func (s *Service) render(state *domain.TransactionFormState, table placement.Table, w io.Writer) error {
	ins, err := placement.Project(state, table, s.measurer)
	if err != nil {
		return err
	}
	if err := s.renderer.Render(table, ins, w); err != nil {
		return fmt.Errorf("render cover sheet: %w", err)
	}
	return nil
}

// CoverSheetFilename names the PDF for a submission.
func CoverSheetFilename(sub *domain.Submission) string {
	date := strings.ReplaceAll(sub.State.DateSubmitted, "/", "-")
	if date == "" {
		date = sub.CreatedAt.Format("2006-01-02")
	}
	return fmt.Sprintf("cover-sheet_%s_%s.pdf", date, shortID(sub.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func coalesce(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
