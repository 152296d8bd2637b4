package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/books"
	"github.com/Simplici0/spicebooks/internal/export"
	"github.com/Simplici0/spicebooks/internal/input"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

// Quantities are decoded as raw JSON values and coerced leniently: blanks and
// junk become 0 before they reach the ledger.
type entryFieldsRequest struct {
	Date     string `json:"date"`
	Opening  any    `json:"opening"`
	Inbound  any    `json:"inbound"`
	Outbound any    `json:"outbound"`
	Wastage  any    `json:"wastage"`
}

type entryCreateRequest struct {
	ItemName string `json:"item_name" validate:"required,max=120"`
	entryFieldsRequest
}

func (req entryFieldsRequest) fields() (ledger.Fields, error) {
	f := ledger.Fields{
		Opening:  input.LenientAny(req.Opening),
		Inbound:  input.LenientAny(req.Inbound),
		Outbound: input.LenientAny(req.Outbound),
		Wastage:  input.LenientAny(req.Wastage),
	}
	if strings.TrimSpace(req.Date) != "" {
		day, err := ledger.ParseDay(req.Date)
		if err != nil {
			return f, apperror.NewValidation(err.Error()).WithDetail("date", req.Date)
		}
		f.Date = day
	}
	return f, nil
}

func registerParam(r *http.Request) (ledger.Register, error) {
	raw := chi.URLParam(r, "register")
	reg, err := ledger.ParseRegister(raw)
	if err != nil {
		return "", apperror.NewNotFound("register", raw)
	}
	return reg, nil
}

func entryID(r *http.Request) (int64, error) {
	id, err := input.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, apperror.NewValidation("invalid entry id")
	}
	return id, nil
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func (s *server) monthParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return s.now(), nil
	}
	month, err := ledger.ParseMonth(raw)
	if err != nil {
		return time.Time{}, apperror.NewValidation(err.Error()).WithDetail("month", raw)
	}
	return month, nil
}

func (s *server) registerMonth(r *http.Request) (books.Result[books.RegisterMonth], error) {
	reg, err := registerParam(r)
	if err != nil {
		return books.Result[books.RegisterMonth]{}, err
	}
	month, err := s.monthParam(r)
	if err != nil {
		return books.Result[books.RegisterMonth]{}, err
	}
	return s.books.MonthlyRegister(r.Context(), reg, month)
}

func sheetOf(view books.RegisterMonth) export.RegisterSheet {
	return export.RegisterSheet{Register: view.Register, Month: view.Month, Entries: view.Entries, Summary: view.Summary}
}

func (s *server) handleEntriesList(w http.ResponseWriter, r *http.Request) {
	res, err := s.registerMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRegisterSummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.registerMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, books.Result[ledger.Summary]{
		Value:    res.Value.Summary,
		Warnings: res.Warnings,
		Stale:    res.Stale,
	})
}

func (s *server) handleOpeningSuggestion(w http.ResponseWriter, r *http.Request) {
	reg, err := registerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item := strings.TrimSpace(r.URL.Query().Get("item"))
	if item == "" {
		s.writeError(w, r, apperror.NewValidation("item is required"))
		return
	}

	res, err := s.books.SuggestOpening(r.Context(), reg, item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRegisterItems(w http.ResponseWriter, r *http.Request) {
	reg, err := registerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.Items(r.Context(), reg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleEntriesCreate(w http.ResponseWriter, r *http.Request) {
	reg, err := registerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req entryCreateRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// An omitted opening carries forward the item's last closing balance.
	add := s.books.AddEntry
	if req.Opening == nil {
		add = s.books.CarryForwardEntry
	}
	res, err := add(r.Context(), reg, req.ItemName, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, res)
}

func (s *server) handleEntryUpdate(w http.ResponseWriter, r *http.Request) {
	reg, err := registerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req entryFieldsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.EditEntry(r.Context(), reg, id, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	reg, err := registerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.books.DeleteEntry(r.Context(), reg, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *server) handleRegisterPrint(w http.ResponseWriter, r *http.Request) {
	res, err := s.registerMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderRegisterPrint(w, sheetOf(res.Value), s.now()); err != nil {
		s.log.Error("render register print failed", zap.Error(err))
	}
}

func (s *server) handleRegisterCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.registerMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setDownloadHeaders(w, string(res.Value.Register)+"-"+res.Value.Month+".csv", res.Stale)
	if err := export.WriteRegisterCSV(w, sheetOf(res.Value)); err != nil {
		s.log.Error("write register csv failed", zap.Error(err))
	}
}
