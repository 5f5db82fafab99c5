package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"extracto/internal/core"
	"extracto/internal/log"
)

type transactionResponse struct {
	ID  string `json:"id"`
	Ref string `json:"ref"`
}

// handleCreateTransaction records a custom transaction. Body (JSON or form):
// id (optional), date (default today), description, amount, category.
// Every cached statement is dropped since any of them may cover the date.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}

	t, err := transactionFromBody(body, time.Now())
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	if err := t.Validate(); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}

	ref, err := s.source.Append(r.Context(), t)
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	atomic.AddInt64(&s.metrics.transactions, 1)
	dropped := s.invalidate()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		"transaction_id", t.ID, log.FieldArtifactRef, ref, "cache_dropped", dropped)

	NewResponse().
		Status(http.StatusCreated).
		JSON(transactionResponse{ID: t.ID, Ref: ref}).
		Write(w)
}

func transactionFromBody(body *RequestBodyParser, now time.Time) (core.Transaction, error) {
	date := core.DateOf(now)
	if v := body.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("%w: date: %v", errBadRequest, err)
		}
		date = d
	}

	amount, err := core.ParseAmount(body.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.ParseCategory(body.Get("category"))
	if err != nil {
		return core.Transaction{}, err
	}

	id := body.Get("id")
	if id == "" {
		id = "web-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return core.Transaction{
		ID:          id,
		Description: body.Get("description"),
		Amount:      amount,
		Date:        date,
		Category:    cat,
	}, nil
}
