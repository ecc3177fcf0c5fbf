package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/adapter/http/dto"
	"github.com/iho/cardroom/internal/domain"
)

// SeatingService defines the seat session operations needed by SessionHandler.
type SeatingService interface {
	JoinTable(ctx context.Context, tableID, accountID string, buyIn decimal.Decimal) (*domain.Session, error)
	LeaveTable(ctx context.Context, sessionID string) (*domain.Session, error)
	ApplyStackDelta(ctx context.Context, sessionID string, delta decimal.Decimal, moneyMovement bool) (*domain.Session, error)
	Heartbeat(ctx context.Context, sessionID string) error
}

// SessionHandler handles seat session HTTP requests.
type SessionHandler struct {
	seatingUC SeatingService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(seatingUC SeatingService) *SessionHandler {
	return &SessionHandler{seatingUC: seatingUC}
}

// Join seats an account at a table.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "id")
	if tableID == "" {
		writeError(w, http.StatusBadRequest, "missing table ID", "")
		return
	}

	var req dto.JoinTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id", "")
		return
	}

	session, err := h.seatingUC.JoinTable(r.Context(), tableID, req.AccountID, req.BuyIn)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to join table", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SessionFromDomain(session))
}

// Leave cashes a session out and frees the seat.
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	session, err := h.seatingUC.LeaveTable(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to leave table", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionFromDomain(session))
}

// StackDelta applies a stack adjustment to a session.
func (h *SessionHandler) StackDelta(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	var req dto.StackDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.seatingUC.ApplyStackDelta(r.Context(), id, req.Delta, req.MoneyMovement)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply stack delta", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionFromDomain(session))
}

// Heartbeat refreshes a session's liveness timestamp.
func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	if err := h.seatingUC.Heartbeat(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to record heartbeat", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
