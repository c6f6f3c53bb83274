package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finboard/internal/core"
	"finboard/internal/services"
)

type transactionPayload struct {
	ID          string               `json:"id,omitempty"`
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category,omitempty"`
	Date        core.Date            `json:"date"`
}

func toPayload(tx core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Date:        tx.Date,
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.transactions.List(r.Context(), opts)
	if err != nil {
		if errors.Is(err, services.ErrBadSortField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	out := make([]transactionPayload, len(txs))
	for i, tx := range txs {
		out[i] = toPayload(tx)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func listOptionsFromQuery(r *http.Request) (services.ListOptions, error) {
	var opts services.ListOptions
	q := r.URL.Query()

	if raw := q.Get("type"); raw != "" {
		t := core.TransactionType(raw)
		if !t.Valid() {
			return opts, core.ErrInvalidType
		}
		opts.Type = t
	}
	opts.Category = q.Get("category")

	if from, ok, err := queryDate(r, "from"); err != nil {
		return opts, err
	} else if ok {
		opts.From = from
	}
	if to, ok, err := queryDate(r, "to"); err != nil {
		return opts, err
	} else if ok {
		opts.To = to
	}

	opts.SortBy = q.Get("sort_by")
	opts.Desc = strings.EqualFold(q.Get("order"), "desc")

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.New("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, err := s.transactions.Create(r.Context(), core.TransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toPayload(tx))
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req transactionPayload
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		tx := core.Transaction{
			ID:          id,
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Category:    req.Category,
			Date:        req.Date,
		}
		if err := s.transactions.Update(r.Context(), tx); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// An unmatched id is a no-op, so this always succeeds.
		writeJSON(w, http.StatusOK, toPayload(tx))

	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to delete transaction")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
