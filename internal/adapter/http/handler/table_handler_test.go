package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/adapter/http/dto"
	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

type tableServiceStub struct {
	createFn func(ctx context.Context, in usecase.CreateTableInput) (*domain.Table, error)
	getFn    func(ctx context.Context, id string) (*domain.Table, error)
	listFn   func(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error)
	closeFn  func(ctx context.Context, id string) (*domain.Table, error)
}

func (s *tableServiceStub) CreateTable(ctx context.Context, in usecase.CreateTableInput) (*domain.Table, error) {
	return s.createFn(ctx, in)
}

func (s *tableServiceStub) GetTable(ctx context.Context, id string) (*domain.Table, error) {
	return s.getFn(ctx, id)
}

func (s *tableServiceStub) ListTables(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error) {
	return s.listFn(ctx, filter)
}

func (s *tableServiceStub) CloseTable(ctx context.Context, id string) (*domain.Table, error) {
	return s.closeFn(ctx, id)
}

func TestTableHandler_Create(t *testing.T) {
	table := &domain.Table{
		ID:       "tbl-1",
		Name:     "High Stakes",
		Game:     domain.GamePoker,
		MinBet:   decimal.NewFromInt(10),
		MaxBet:   decimal.NewFromInt(500),
		Capacity: 6,
		Status:   domain.TableWaiting,
	}

	var captured usecase.CreateTableInput
	handler := NewTableHandler(&tableServiceStub{
		createFn: func(ctx context.Context, in usecase.CreateTableInput) (*domain.Table, error) {
			captured = in
			return table, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTableRequest{
		Name:     "High Stakes",
		Game:     "POKER",
		MinBet:   decimal.NewFromInt(10),
		MaxBet:   decimal.NewFromInt(500),
		Capacity: 6,
	})
	req := httptest.NewRequest(http.MethodPost, "/tables", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Game != domain.GamePoker || captured.Capacity != 6 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TableResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.TableWaiting) {
		t.Fatalf("expected WAITING status, got %s", resp.Status)
	}
}

func TestTableHandler_Create_InvalidStakes(t *testing.T) {
	handler := NewTableHandler(&tableServiceStub{
		createFn: func(ctx context.Context, in usecase.CreateTableInput) (*domain.Table, error) {
			return nil, domain.ErrInvalidStakes
		},
	})

	body, _ := json.Marshal(dto.CreateTableRequest{Name: "bad", Game: "POKER", Capacity: 6})
	req := httptest.NewRequest(http.MethodPost, "/tables", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTableHandler_List_Filters(t *testing.T) {
	handler := NewTableHandler(&tableServiceStub{
		listFn: func(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error) {
			if filter.Game != domain.GamePoker || filter.Status != domain.TableWaiting {
				t.Fatalf("expected filters to propagate, got %+v", filter)
			}
			return []*domain.Table{{ID: "tbl-1"}, {ID: "tbl-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tables?game=POKER&status=WAITING", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTablesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(resp.Tables))
	}
}

func TestTableHandler_Close_AlreadyClosed(t *testing.T) {
	handler := NewTableHandler(&tableServiceStub{
		closeFn: func(ctx context.Context, id string) (*domain.Table, error) {
			return nil, domain.ErrTableClosed
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/tables/tbl-1", nil)
	req = setChiURLParam(req, "id", "tbl-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTableHandler_Get_NotFound(t *testing.T) {
	handler := NewTableHandler(&tableServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Table, error) {
			return nil, domain.ErrTableNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tables/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
