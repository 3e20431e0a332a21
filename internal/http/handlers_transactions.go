package http

import (
	"net/http"

	"moncash/internal/core"
)

type transactionRequest struct {
	Kind        core.TransactionKind `json:"type"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Date        core.Date            `json:"date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	dr, err := parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	txs, err := s.ledger.ListTransactions(r.Context(), userID, dr)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	_, err := s.ledger.AddTransaction(r.Context(), core.Transaction{
		UserID:      userID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSummaries(userID)
	respondSuccess(w, r)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	err = s.ledger.UpdateTransaction(r.Context(), core.Transaction{
		ID:          id,
		UserID:      userID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSummaries(userID)
	respondSuccess(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSummaries(userID)
	respondSuccess(w, r)
}
