package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/cardroom/internal/adapter/http/dto"
	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// ReconciliationService defines the consistency check operations needed by AdminHandler.
type ReconciliationService interface {
	Run(ctx context.Context) (*usecase.Report, error)
}

// AuditService defines the audit query operations needed by AdminHandler.
type AuditService interface {
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AdminHandler handles operator-facing HTTP requests.
type AdminHandler struct {
	reconciliationUC ReconciliationService
	auditUC          AuditService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reconciliationUC ReconciliationService, auditUC AuditService) *AdminHandler {
	return &AdminHandler{reconciliationUC: reconciliationUC, auditUC: auditUC}
}

// Reconcile runs a full consistency check and reports discrepancies. It never
// repairs anything.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.Run(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run reconciliation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResponse{
		Report: report,
		Clean:  report.Clean(),
	})
}

// ListAuditLogs lists audit log entries, newest first.
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
			return
		}
		filter.EndDate = &t
	}

	logs, err := h.auditUC.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list audit logs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"total": len(logs),
	})
}
