package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/txn-intake/internal/domain"
)

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database. Schema migrations are managed by dbmate;
// run `dbmate up` before starting the server.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Ping verifies the database is reachable and migrated.
func (r *Repository) Ping(ctx context.Context) error {
	var n int
	return r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
}

const submissionColumns = `id, role, address, state_json, status, record_id,
	client_record_ids, error, created_at, updated_at`

func (r *Repository) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	if s.ID == "" {
		return errors.New("submission has no id")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.CreatedAt
	if s.Status == "" {
		s.Status = domain.StatusReceived
	}
	state, links, err := encode(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.ID, string(s.State.AgentData.Role), s.State.PropertyData.Address, state,
		string(s.Status), s.RecordID, links, s.Error, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *Repository) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=?`, id)
	s, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Submission
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func (r *Repository) UpdateSubmission(ctx context.Context, s *domain.Submission) error {
	s.UpdatedAt = time.Now().UTC()
	state, links, err := encode(s)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE submissions
		SET role=?, address=?, state_json=?, status=?, record_id=?,
		    client_record_ids=?, error=?, updated_at=?
		WHERE id=?`,
		string(s.State.AgentData.Role), s.State.PropertyData.Address, state,
		string(s.Status), s.RecordID, links, s.Error, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteSubmission(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*domain.Submission, error) {
	var (
		s            domain.Submission
		role, addr   string
		state, links string
		status       string
	)
	if err := row.Scan(&s.ID, &role, &addr, &state, &status, &s.RecordID,
		&links, &s.Error, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &s.State); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(links), &s.ClientRecordIDs); err != nil {
		return nil, fmt.Errorf("decode client record ids of %s: %w", s.ID, err)
	}
	s.Status = domain.SubmissionStatus(status)
	return &s, nil
}

func encode(s *domain.Submission) (state, links string, err error) {
	b, err := json.Marshal(s.State)
	if err != nil {
		return "", "", fmt.Errorf("encode submission %s: %w", s.ID, err)
	}
	ids := s.ClientRecordIDs
	if ids == nil {
		ids = []string{}
	}
	l, err := json.Marshal(ids)
	if err != nil {
		return "", "", err
	}
	return string(b), string(l), nil
}
