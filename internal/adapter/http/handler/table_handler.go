package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cardroom/internal/adapter/http/dto"
	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// TableService defines the table lifecycle operations needed by TableHandler.
type TableService interface {
	CreateTable(ctx context.Context, in usecase.CreateTableInput) (*domain.Table, error)
	GetTable(ctx context.Context, id string) (*domain.Table, error)
	ListTables(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error)
	CloseTable(ctx context.Context, id string) (*domain.Table, error)
}

// TableHandler handles table HTTP requests.
type TableHandler struct {
	tableUC TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(tableUC TableService) *TableHandler {
	return &TableHandler{tableUC: tableUC}
}

// Create creates a new table.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	table, err := h.tableUC.CreateTable(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create table", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TableFromDomain(table))
}

// Get retrieves a table by ID.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing table ID", "")
		return
	}

	table, err := h.tableUC.GetTable(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get table", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TableFromDomain(table))
}

// List lists tables for the lobby. Optional game and status query
// parameters narrow the listing.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.TableFilter{
		Game:   domain.GameKind(r.URL.Query().Get("game")),
		Status: domain.TableStatus(r.URL.Query().Get("status")),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}

	tables, err := h.tableUC.ListTables(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list tables", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTablesResponse{
		Tables: dto.TablesFromDomain(tables),
		Total:  int64(len(tables)),
	})
}

// Close closes a table, force-leaving any seated players.
func (h *TableHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing table ID", "")
		return
	}

	table, err := h.tableUC.CloseTable(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close table", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TableFromDomain(table))
}
