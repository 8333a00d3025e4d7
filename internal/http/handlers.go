package http

import (
	"errors"
	"net/http"
	"strings"

	"bookkeeping/internal/aggregate"
	"bookkeeping/internal/core"
	"bookkeeping/internal/export"
	applog "bookkeeping/internal/log"
)

type recordsResponse struct {
	Records []core.Record `json:"records"`
	Count   int           `json:"count"`
	Summary *core.Summary `json:"summary,omitempty"`
}

func newRecordsResponse(records []core.Record) recordsResponse {
	if records == nil {
		records = []core.Record{}
	}
	return recordsResponse{Records: records, Count: len(records)}
}

// handleListRecords returns the ledger, optionally narrowed to ?month=.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records := s.service.Records(r.Context())

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		NewJSONResponse().Payload(newRecordsResponse(records)).Write(w)
		return
	}
	if !core.ValidMonthKey(month) {
		BadRequestError(core.ErrInvalidMonth.Error()).Write(w)
		return
	}

	monthly := aggregate.FilterByMonth(records, month)
	resp := newRecordsResponse(monthly)
	summary := aggregate.Summarize(monthly)
	resp.Summary = &summary
	NewJSONResponse().Payload(resp).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	logger := applog.FromContext(r.Context())

	draft, err := ParseDraft(NewRequestBodyParser(r), s.now())
	if err != nil {
		if isMalformed(err) {
			BadRequestError("invalid request body").Write(w)
			return
		}
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	rec, err := s.service.AddRecord(r.Context(), draft)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to add record",
			applog.FieldOperation, applog.OpAdd,
			applog.FieldError, err.Error())
		InternalServerError().Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Record added", applog.NewFields().
		WithOperation(applog.OpAdd).
		WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Category, rec.Date).
		ToSlice()...)
	NewJSONResponse().Status(http.StatusCreated).Payload(rec).Write(w)
}

// handleDeleteRecord removes one record. Unknown ids succeed.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		BadRequestError("missing record id").Write(w)
		return
	}

	records, err := s.service.RemoveRecord(r.Context(), id)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to remove record",
			applog.FieldOperation, applog.OpRemove,
			applog.FieldRecordID, id,
			applog.FieldError, err.Error())
		InternalServerError().Write(w)
		return
	}
	NewJSONResponse().Payload(newRecordsResponse(records)).Write(w)
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if err := s.service.ClearAll(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "Failed to clear ledger",
			applog.FieldOperation, applog.OpClear,
			applog.FieldError, err.Error())
		InternalServerError().Write(w)
		return
	}
	logger.InfoContext(r.Context(), "Ledger cleared", applog.FieldOperation, applog.OpClear)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(s.service.Overview(r.Context())).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	data, err := s.service.Export(r.Context(), format)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to export ledger",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err.Error())
		InternalServerError().Write(w)
		return
	}

	NewJSONResponse().
		Header("Content-Disposition", `attachment; filename="`+format.FileName(s.now())+`"`).
		Body(format.ContentType(), data).
		Write(w)
}

type categoriesResponse struct {
	Type       core.RecordType `json:"type"`
	Categories []string        `json:"categories"`
	Default    string          `json:"default"`
}

// handleCategories lists the default categories for ?type=, or for both
// types when the parameter is absent.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("type")
	if strings.TrimSpace(raw) == "" {
		NewJSONResponse().Payload(map[core.RecordType][]string{
			core.Expense: core.Categories(core.Expense),
			core.Income:  core.Categories(core.Income),
		}).Write(w)
		return
	}

	t, err := core.ParseRecordType(raw)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Payload(categoriesResponse{
		Type:       t,
		Categories: core.Categories(t),
		Default:    core.DefaultCategory(t),
	}).Write(w)
}

func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	NewJSONResponse().Payload(s.service.MonthView(r.Context(), sess)).Write(w)
}

func (s *Server) handleBillMonth(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	sess := s.session(w, r)

	month, err := ParseMonth(NewRequestBodyParser(r), r)
	if err != nil {
		if isMalformed(err) {
			BadRequestError("invalid request body").Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.service.SetMonth(r.Context(), sess, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			BadRequestError(err.Error()).Write(w)
			return
		}
		InternalServerError().Write(w)
		return
	}
	NewJSONResponse().Payload(view).Write(w)
}

func (s *Server) handleBillMore(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	NewJSONResponse().Payload(s.service.LoadMore(r.Context(), sess)).Write(w)
}

func (s *Server) handleBillCollapse(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := core.ParseDate(date); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sess := s.session(w, r)
	NewJSONResponse().Payload(s.service.ToggleCollapse(r.Context(), sess, date)).Write(w)
}
