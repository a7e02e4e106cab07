package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tms-backend/internal/models"
	"tms-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRouteService struct {
	mock.Mock
}

func (m *mockRouteService) Create(ctx context.Context, req models.CreateRouteRequest) (*models.RouteDetail, error) {
	args := m.Called(ctx, req)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) List(ctx context.Context, q services.ListRoutesQuery) (*models.RouteListResult, error) {
	args := m.Called(ctx, q)
	result, _ := args.Get(0).(*models.RouteListResult)
	return result, args.Error(1)
}

func (m *mockRouteService) Get(ctx context.Context, id string) (*models.RouteDetail, error) {
	args := m.Called(ctx, id)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) Update(ctx context.Context, id string, req models.UpdateRouteRequest) (*models.RouteDetail, error) {
	args := m.Called(ctx, id, req)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) UpdateStatus(ctx context.Context, id string, status string) (*models.RouteDetail, error) {
	args := m.Called(ctx, id, status)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) AssignDriver(ctx context.Context, id string, driverID string) (*models.RouteDetail, error) {
	args := m.Called(ctx, id, driverID)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) AssignVehicle(ctx context.Context, id string, vehicleID string) (*models.RouteDetail, error) {
	args := m.Called(ctx, id, vehicleID)
	return detailArg(args, 0), args.Error(1)
}

func (m *mockRouteService) ListStops(ctx context.Context, id string) (*models.RouteStopsResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*models.RouteStopsResult)
	return result, args.Error(1)
}

func (m *mockRouteService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func detailArg(args mock.Arguments, i int) *models.RouteDetail {
	detail, _ := args.Get(i).(*models.RouteDetail)
	return detail
}

func newTestRouter(svc RouteService, guard func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		MountRoutes(r, svc, guard)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func sampleDetail() *models.RouteDetail {
	return &models.RouteDetail{
		Route: models.Route{ID: "route-1", RouteNumber: "RTE-20241201-0001", Status: models.RouteStatusPlanned, DistanceUnit: "km"},
		Stops: []models.StopWithLoad{},
	}
}

func TestCreateRoute(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req models.CreateRouteRequest) bool {
		return req.RouteNumber == "" && len(req.Stops) == 1 && req.Stops[0].StopType == models.StopTypeDelivery &&
			req.PlannedStartTime != nil && req.PlannedStartTime.Equal(time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC))
	})).Return(sampleDetail(), nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/routes", `{
		"plannedStartTime": "2024-12-01T08:00:00Z",
		"totalWeight": 500,
		"stops": [{"sequenceNumber": 1, "stopType": "DELIVERY", "address": "1 Main St"}]
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "RTE-20241201-0001", got["routeNumber"])
	assert.Equal(t, "PLANNED", got["status"])
	svc.AssertExpectations(t)
}

func TestCreateRouteErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "conflict", err: services.Conflict("route number RTE-1 already exists"), wantStatus: http.StatusConflict, wantError: "route number RTE-1 already exists"},
		{name: "missing vehicle", err: services.NotFound("vehicle v1 not found"), wantStatus: http.StatusNotFound, wantError: "vehicle v1 not found"},
		{name: "validation", err: services.BadRequest("plannedStartTime is required"), wantStatus: http.StatusBadRequest, wantError: "plannedStartTime is required"},
		{name: "internal", err: errors.New("pq: connection refused"), wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRouteService{}
			svc.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/routes", `{"stops": []}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, errorBody(t, rec))
		})
	}
}

func TestMalformedBodies(t *testing.T) {
	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/routes"},
		{http.MethodPatch, "/api/routes/route-1"},
		{http.MethodPatch, "/api/routes/route-1/status"},
		{http.MethodPost, "/api/routes/route-1/assign-driver"},
		{http.MethodPost, "/api/routes/route-1/assign-vehicle"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			svc := &mockRouteService{}
			rec := do(t, newTestRouter(svc, nil), tt.method, tt.target, `{"broken":`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid request body", errorBody(t, rec))
			svc.AssertExpectations(t)
		})
	}
}

func TestListRoutesParsesQuery(t *testing.T) {
	svc := &mockRouteService{}
	wantFrom := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 12, 7, 23, 59, 59, 999999999, time.UTC)
	svc.On("List", mock.Anything, mock.MatchedBy(func(q services.ListRoutesQuery) bool {
		return q.Page == 2 && q.PageSize == 25 && q.Status == "ASSIGNED" && q.DriverID == "drv-1" &&
			q.VehicleID == "veh-1" && q.StartFrom != nil && q.StartFrom.Equal(wantFrom) &&
			q.StartTo != nil && q.StartTo.Equal(wantTo)
	})).Return(&models.RouteListResult{Data: []models.RouteSummary{}, Total: 0, Page: 2, PageSize: 25}, nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodGet,
		"/api/routes?page=2&pageSize=25&status=ASSIGNED&driverId=drv-1&vehicleId=veh-1&startDate=2024-12-01&endDate=2024-12-07", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":2,"pageSize":25,"totalPages":0}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestListRoutesRejectsBadQuery(t *testing.T) {
	for _, target := range []string{
		"/api/routes?page=two",
		"/api/routes?pageSize=1.5",
		"/api/routes?startDate=yesterday",
		"/api/routes?endDate=12-07-2024",
	} {
		t.Run(target, func(t *testing.T) {
			svc := &mockRouteService{}
			rec := do(t, newTestRouter(svc, nil), http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestListRoutesInvalidStatus(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("List", mock.Anything, mock.Anything).Return(nil, services.BadRequest(`invalid status "nope"`))

	rec := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/routes?status=nope", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRoute(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("Get", mock.Anything, "route-1").Return(sampleDetail(), nil)
	svc.On("Get", mock.Anything, "missing").Return(nil, services.NotFound("route missing not found"))
	h := newTestRouter(svc, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/routes/route-1", "").Code)

	rec := do(t, h, http.MethodGet, "/api/routes/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route missing not found", errorBody(t, rec))
}

func TestGetRouteStops(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("ListStops", mock.Anything, "route-1").Return(&models.RouteStopsResult{
		RouteID: "route-1",
		Stops:   []models.StopWithLoad{},
		Count:   0,
	}, nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/routes/route-1/stops", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"routeId":"route-1","stops":[],"count":0}`, rec.Body.String())
}

func TestUpdateRoute(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("Update", mock.Anything, "route-1", mock.MatchedBy(func(req models.UpdateRouteRequest) bool {
		return req.TotalDistance != nil && *req.TotalDistance == 12.5 && req.DriverID == nil
	})).Return(sampleDetail(), nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodPatch, "/api/routes/route-1", `{"totalDistance": 12.5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUpdateRouteStatus(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("UpdateStatus", mock.Anything, "route-1", "IN_PROGRESS").Return(sampleDetail(), nil)
	svc.On("UpdateStatus", mock.Anything, "route-1", "BOGUS").Return(nil, services.BadRequest(`invalid status "BOGUS"`))
	h := newTestRouter(svc, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPatch, "/api/routes/route-1/status", `{"status":"IN_PROGRESS"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/routes/route-1/status", `{"status":"BOGUS"}`).Code)
}

func TestAssignDriver(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("AssignDriver", mock.Anything, "route-1", "drv-1").Return(sampleDetail(), nil)
	svc.On("AssignDriver", mock.Anything, "route-1", "ghost").Return(nil, services.NotFound("driver ghost not found"))
	h := newTestRouter(svc, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/routes/route-1/assign-driver", `{"driverId":"drv-1"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/routes/route-1/assign-driver", `{"driverId":"ghost"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/routes/route-1/assign-driver", `{}`).Code)
}

func TestAssignVehicle(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("AssignVehicle", mock.Anything, "route-1", "veh-big").Return(sampleDetail(), nil)
	svc.On("AssignVehicle", mock.Anything, "route-1", "veh-small").Return(nil, services.BadRequest("vehicle capacity is below route load"))
	h := newTestRouter(svc, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/routes/route-1/assign-vehicle", `{"vehicleId":"veh-big"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/routes/route-1/assign-vehicle", `{"vehicleId":"veh-small"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "vehicle capacity is below route load", errorBody(t, rec))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/routes/route-1/assign-vehicle", `{"vehicleId":""}`).Code)
}

func TestDeleteRoute(t *testing.T) {
	svc := &mockRouteService{}
	svc.On("Delete", mock.Anything, "route-1").Return(nil)
	svc.On("Delete", mock.Anything, "missing").Return(services.NotFound("route missing not found"))
	h := newTestRouter(svc, nil)

	rec := do(t, h, http.MethodDelete, "/api/routes/route-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/routes/missing", "").Code)
}

func TestGuardWrapsMutationsOnly(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
	svc := &mockRouteService{}
	svc.On("Get", mock.Anything, "route-1").Return(sampleDetail(), nil)
	h := newTestRouter(svc, deny)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/routes/route-1", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/routes", `{}`).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/api/routes/route-1", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPatch, "/api/routes/route-1/status", `{"status":"COMPLETED"}`).Code)
}
