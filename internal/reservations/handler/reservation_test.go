package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/reservations/repository"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type mockReservationService struct {
	admitFunc     func(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error)
	setStatusFunc func(ctx context.Context, id string, transition *model.StatusTransition) (*model.Reservation, error)
	searchFunc    func(ctx context.Context, providerID string, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
}

func (m *mockReservationService) Admit(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error) {
	if m.admitFunc != nil {
		return m.admitFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, apperrors.NotFoundWithID("Reservation", id)
}

func (m *mockReservationService) SetStatus(ctx context.Context, id string, transition *model.StatusTransition) (*model.Reservation, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, transition)
	}
	return nil, nil
}

func (m *mockReservationService) Search(ctx context.Context, providerID string, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, providerID, filter, limit, offset)
	}
	return []*model.Reservation{}, 0, nil
}

func newTestHandler(svc *mockReservationService) (*ReservationHandler, *httprouter.Router) {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	h := &ReservationHandler{service: svc, log: log}
	router := httprouter.New()
	h.RegisterRoutes(router)
	return h, router
}

func TestAdmit_StatusCodes(t *testing.T) {
	body := `{
		"provider_id": "64f000000000000000000001",
		"service_id": "64f000000000000000000002",
		"start_time": "2025-06-02T14:00:00Z",
		"end_time": "2025-06-02T14:30:00Z",
		"customer_name": "Dana",
		"customer_phone": "+14155550123"
	}`

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			serviceErr: nil,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "definitive conflict",
			serviceErr: apperrors.SlotUnavailable("range claimed"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSlotUnavailable,
		},
		{
			name:       "transient conflict",
			serviceErr: apperrors.SlotContended("admission in flight"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSlotContended,
		},
		{
			name:       "validation failure",
			serviceErr: apperrors.Validation("bad payload", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
		},
		{
			name:       "unknown provider",
			serviceErr: apperrors.NotFoundWithID("Provider", "64f000000000000000000001"),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockReservationService{
				admitFunc: func(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					reservation := req.Reservation()
					reservation.ID = "64f0000000000000000000aa"
					return reservation, nil
				},
			}
			_, router := newTestHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				var errResp struct {
					Code string `json:"code"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if errResp.Code != tt.wantCode {
					t.Errorf("expected error code %s, got %s", tt.wantCode, errResp.Code)
				}
			}
		})
	}
}

func TestAdmit_MalformedBody(t *testing.T) {
	_, router := newTestHandler(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestSetStatus_RoutesIDAndPayload(t *testing.T) {
	var gotID string
	var gotTransition *model.StatusTransition
	mockService := &mockReservationService{
		setStatusFunc: func(ctx context.Context, id string, transition *model.StatusTransition) (*model.Reservation, error) {
			gotID = id
			gotTransition = transition
			return &model.Reservation{ID: id, Status: transition.Status}, nil
		},
	}
	_, router := newTestHandler(mockService)

	req := httptest.NewRequest(http.MethodPatch,
		"/api/v1/reservations/id/64f0000000000000000000aa/status",
		strings.NewReader(`{"status":"cancelled","customer_phone":"+14155550123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != "64f0000000000000000000aa" {
		t.Errorf("expected path ID to reach the service, got %s", gotID)
	}
	if gotTransition == nil || gotTransition.Status != model.StatusCancelled {
		t.Errorf("expected cancelled transition, got %+v", gotTransition)
	}
}

func TestSearch_QueryParsing(t *testing.T) {
	var gotProvider string
	var gotFilter repository.SearchFilter
	mockService := &mockReservationService{
		searchFunc: func(ctx context.Context, providerID string, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
			gotProvider = providerID
			gotFilter = filter
			return []*model.Reservation{}, 0, nil
		},
	}
	_, router := newTestHandler(mockService)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/search?provider_id=64f000000000000000000001&status=confirmed&from=2025-06-01T00:00:00Z&to=2025-06-08T00:00:00Z",
		nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotProvider != "64f000000000000000000001" {
		t.Errorf("unexpected provider: %s", gotProvider)
	}
	if gotFilter.Status != model.StatusConfirmed {
		t.Errorf("unexpected status filter: %s", gotFilter.Status)
	}
	wantFrom := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if gotFilter.From == nil || !gotFilter.From.Equal(wantFrom) {
		t.Errorf("unexpected from filter: %v", gotFilter.From)
	}
	if gotFilter.To == nil {
		t.Error("expected to filter to be set")
	}
}

func TestSearch_ParameterErrors(t *testing.T) {
	_, router := newTestHandler(&mockReservationService{})

	tests := []struct {
		name string
		url  string
	}{
		{"missing provider_id", "/api/v1/reservations/search"},
		{"bad from timestamp", "/api/v1/reservations/search?provider_id=64f000000000000000000001&from=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}
