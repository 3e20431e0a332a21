package http

import (
	"net/http"

	"moncash/internal/core"
)

type debtRequest struct {
	Kind    core.DebtKind `json:"type"`
	Name    string        `json:"name"`
	Amount  core.Money    `json:"amount"`
	DueDate core.Date     `json:"due_date"`
}

type debtStatusRequest struct {
	Status core.DebtStatus `json:"status"`
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request, userID int64) {
	debts, err := s.ledger.ListDebts(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request, userID int64) {
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	_, err := s.ledger.AddDebt(r.Context(), core.Debt{
		UserID:  userID,
		Kind:    req.Kind,
		Name:    req.Name,
		Amount:  req.Amount,
		DueDate: req.DueDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	err = s.ledger.UpdateDebt(r.Context(), core.Debt{
		ID:      id,
		UserID:  userID,
		Kind:    req.Kind,
		Name:    req.Name,
		Amount:  req.Amount,
		DueDate: req.DueDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}

func (s *Server) handleSetDebtStatus(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req debtStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.ledger.SetDebtStatus(r.Context(), userID, id, req.Status); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.ledger.DeleteDebt(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}
