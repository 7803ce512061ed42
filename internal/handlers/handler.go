package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/intake"
	"github.com/csg33k/txn-intake/internal/templates"
)

const (
	maxBodyBytes = 1 << 20
	indexLimit   = 25
	defaultLimit = 50
)

type Handler struct {
	svc *intake.Service
	log *slog.Logger
}

func New(svc *intake.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.log))
	r.Use(loggingMiddleware(h.log))

	r.Get("/", h.index)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/commission/derive", h.deriveCommission)
		r.Post("/commission/validate", h.validateCommission)
		r.Post("/coversheet/preview", h.previewCoverSheet)

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", h.createSubmission)
			r.Get("/", h.listSubmissions)
			r.Get("/{id}", h.getSubmission)
			r.Delete("/{id}", h.deleteSubmission)
			r.Get("/{id}/coversheet.pdf", h.coverSheet)
		})
	})
	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.svc.List(r.Context(), indexLimit)
	if err != nil {
		h.log.Error("list submissions", "err", err, "request_id", requestIDFromContext(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	render(w, r, templates.Index(submissions, h.svc.PaidMode()))
}

type deriveRequest struct {
	Field     string                 `json:"field"`
	Value     string                 `json:"value"`
	State     domain.CommissionState `json:"state"`
	Mode      string                 `json:"mode"`
	SalePrice string                 `json:"salePrice"`
}

func (h *Handler) deriveCommission(w http.ResponseWriter, r *http.Request) {
	var req deriveRequest
	if !decode(w, r, &req) {
		return
	}
	opts := commission.Options{SalePrice: req.SalePrice}
	if req.Mode != "" {
		mode, ok := commission.ParsePaidMode(req.Mode)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("unknown paid mode %q", req.Mode))
			return
		}
		opts.Mode = mode
	}
	res, err := h.svc.Derive(req.Field, req.Value, req.State, opts)
	if err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) validateCommission(w http.ResponseWriter, r *http.Request) {
	var state domain.CommissionState
	if !decode(w, r, &state) {
		return
	}
	if errs := h.svc.Validate(state); len(errs) > 0 {
		writeDomainError(w, r, errs, "")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) createSubmission(w http.ResponseWriter, r *http.Request) {
	var state domain.TransactionFormState
	if !decode(w, r, &state) {
		return
	}
	sub, err := h.svc.Submit(r.Context(), state)
	if err != nil {
		id := ""
		if sub != nil {
			id = sub.ID
		}
		h.log.Warn("submission rejected", "err", err, "submission", id,
			"operation", "create_submission", "outcome", "failure",
			"request_id", requestIDFromContext(r.Context()))
		writeDomainError(w, r, err, id)
		return
	}
	w.Header().Set("Location", "/api/submissions/"+sub.ID)
	writeSuccess(w, http.StatusCreated, newSubmissionView(sub))
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = n
	}
	subs, err := h.svc.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	views := make([]submissionView, len(subs))
	for i := range subs {
		views[i] = newSubmissionView(&subs[i])
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	writeSuccess(w, http.StatusOK, newSubmissionView(sub))
}

func (h *Handler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) coverSheet(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	sub, err := h.svc.CoverSheet(r.Context(), chi.URLParam(r, "id"), &buf)
	if err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	writePDF(w, intake.CoverSheetFilename(sub), buf.Bytes())
}

func (h *Handler) previewCoverSheet(w http.ResponseWriter, r *http.Request) {
	var state domain.TransactionFormState
	if !decode(w, r, &state) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Preview(state, &buf); err != nil {
		writeDomainError(w, r, err, "")
		return
	}
	writePDF(w, "cover-sheet_preview.pdf", buf.Bytes())
}

type submissionView struct {
	ID              string                      `json:"id"`
	Status          domain.SubmissionStatus     `json:"status"`
	RecordID        string                      `json:"recordId,omitempty"`
	ClientRecordIDs []string                    `json:"clientRecordIds,omitempty"`
	Error           string                      `json:"error,omitempty"`
	CreatedAt       string                      `json:"createdAt"`
	UpdatedAt       string                      `json:"updatedAt"`
	State           domain.TransactionFormState `json:"state"`
}

func newSubmissionView(s *domain.Submission) submissionView {
	return submissionView{
		ID:              s.ID,
		Status:          s.Status,
		RecordID:        s.RecordID,
		ClientRecordIDs: s.ClientRecordIDs,
		Error:           s.Error,
		CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.UTC().Format(time.RFC3339),
		State:           s.State,
	}
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return false
	}
	return true
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}
