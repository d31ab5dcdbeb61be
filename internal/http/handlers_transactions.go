package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"financetracker/internal/core"
	"financetracker/internal/export"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

// pathID reads the {id} wildcard. A malformed id cannot name an existing row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func transactionQuery(r *http.Request) services.TransactionQuery {
	typ, categoryID, page := ParseTransactionQuery(r.URL.Query())
	return services.TransactionQuery{Type: typ, CategoryID: categoryID, Page: page}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.Transactions.List(r.Context(), userID(r), transactionQuery(r))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(newTransactionPageView(page)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	tx, err := s.deps.Transactions.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"transaction": newTransactionView(tx)}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err := ParseTransaction(p)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	saved, err := s.deps.Transactions.Create(r.Context(), userID(r), tx)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logTransaction(r, "Transaction created", saved)
	NewJSONResponse().Status(http.StatusCreated).Body(map[string]any{
		"message":     "Transaction created successfully!",
		"transaction": newTransactionView(saved),
	}).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	tx, err := ParseTransaction(p)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	tx.ID = id

	saved, err := s.deps.Transactions.Update(r.Context(), userID(r), tx)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logTransaction(r, "Transaction updated", saved)
	NewJSONResponse().Body(map[string]any{
		"message":     "Transaction updated successfully!",
		"transaction": newTransactionView(saved),
	}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError().Write(w)
		return
	}
	deleted, err := s.deps.Transactions.Delete(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	s.logTransaction(r, "Transaction deleted", deleted)
	NewJSONResponse().Body(map[string]any{"message": "Transaction deleted successfully!"}).Write(w)
}

// handleExportTransactions streams every transaction matching the list
// filters as an xlsx workbook.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Transactions.Export(r.Context(), userID(r), transactionQuery(r))
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTransactionsXLSX(&buf, txs); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Transactions exported",
		log.FieldOperation, log.OpExport,
		"rows", len(txs),
		"bytes", buf.Len())

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(s.deps.Dashboard.Today())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) logTransaction(r *http.Request, msg string, tx core.Transaction) {
	fields := log.NewFields().WithTransaction(tx.ID, string(tx.Type), tx.Amount.Cents, tx.CategoryName)
	s.logger.InfoContext(r.Context(), msg, fields.ToSlice()...)
}
