package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tms-backend/internal/models"
	"tms-backend/internal/services"
	"tms-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// RouteService is the dispatch logic behind the /api/routes endpoints
type RouteService interface {
	Create(ctx context.Context, req models.CreateRouteRequest) (*models.RouteDetail, error)
	List(ctx context.Context, q services.ListRoutesQuery) (*models.RouteListResult, error)
	Get(ctx context.Context, id string) (*models.RouteDetail, error)
	Update(ctx context.Context, id string, req models.UpdateRouteRequest) (*models.RouteDetail, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.RouteDetail, error)
	AssignDriver(ctx context.Context, id string, driverID string) (*models.RouteDetail, error)
	AssignVehicle(ctx context.Context, id string, vehicleID string) (*models.RouteDetail, error)
	ListStops(ctx context.Context, id string) (*models.RouteStopsResult, error)
	Delete(ctx context.Context, id string) error
}

// MountRoutes registers the route endpoints on r. guard, when non-nil, wraps
// every mutating endpoint.
func MountRoutes(r chi.Router, svc RouteService, guard func(http.Handler) http.Handler) {
	r.Get("/routes", ListRoutes(svc))
	r.Get("/routes/{id}", GetRoute(svc))
	r.Get("/routes/{id}/stops", GetRouteStops(svc))

	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Post("/routes", CreateRoute(svc))
		r.Patch("/routes/{id}", UpdateRoute(svc))
		r.Patch("/routes/{id}/status", UpdateRouteStatus(svc))
		r.Post("/routes/{id}/assign-driver", AssignDriver(svc))
		r.Post("/routes/{id}/assign-vehicle", AssignVehicle(svc))
		r.Delete("/routes/{id}", DeleteRoute(svc))
	})
}

// CreateRoute creates a route with its stops
func CreateRoute(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		route, err := svc.Create(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusCreated, route)
	}
}

// ListRoutes returns a page of routes matching the query filters
func ListRoutes(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseListQuery(r)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.List(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, result)
	}
}

// GetRoute returns a single route with vehicle, driver and stops
func GetRoute(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, route)
	}
}

// GetRouteStops returns a route's stops in sequence order
func GetRouteStops(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stops, err := svc.ListStops(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, stops)
	}
}

// UpdateRoute partially updates route-level fields
func UpdateRoute(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		route, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, route)
	}
}

// UpdateRouteStatus moves a route to a new lifecycle status
func UpdateRouteStatus(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateRouteStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		route, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, route)
	}
}

// AssignDriver assigns a driver and marks the route ASSIGNED
func AssignDriver(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AssignDriverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.DriverID == "" {
			utils.RespondError(w, http.StatusBadRequest, "driverId is required")
			return
		}

		route, err := svc.AssignDriver(r.Context(), chi.URLParam(r, "id"), req.DriverID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, route)
	}
}

// AssignVehicle assigns a vehicle with enough capacity for the route's load
func AssignVehicle(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AssignVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.VehicleID == "" {
			utils.RespondError(w, http.StatusBadRequest, "vehicleId is required")
			return
		}

		route, err := svc.AssignVehicle(r.Context(), chi.URLParam(r, "id"), req.VehicleID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, route)
	}
}

// DeleteRoute deletes a route and its stops
func DeleteRoute(svc RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}

func parseListQuery(r *http.Request) (services.ListRoutesQuery, error) {
	query := r.URL.Query()
	q := services.ListRoutesQuery{
		Status:    query.Get("status"),
		DriverID:  query.Get("driverId"),
		VehicleID: query.Get("vehicleId"),
	}

	var err error
	if q.Page, err = intParam(query.Get("page")); err != nil {
		return q, errors.New("page must be an integer")
	}
	if q.PageSize, err = intParam(query.Get("pageSize")); err != nil {
		return q, errors.New("pageSize must be an integer")
	}

	if raw := query.Get("startDate"); raw != "" {
		t, _, err := services.ParseInstant(raw)
		if err != nil {
			return q, errors.New("startDate must be RFC3339 or YYYY-MM-DD")
		}
		q.StartFrom = &t
	}
	if raw := query.Get("endDate"); raw != "" {
		t, dateOnly, err := services.ParseInstant(raw)
		if err != nil {
			return q, errors.New("endDate must be RFC3339 or YYYY-MM-DD")
		}
		// A bare date covers the whole day
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		q.StartTo = &t
	}

	return q, nil
}

// intParam parses an optional integer; empty means 0 so the service applies its default
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case services.KindNotFound:
			utils.RespondError(w, http.StatusNotFound, svcErr.Message)
			return
		case services.KindConflict:
			utils.RespondError(w, http.StatusConflict, svcErr.Message)
			return
		case services.KindBadRequest:
			utils.RespondError(w, http.StatusBadRequest, svcErr.Message)
			return
		}
	}

	log.WithError(err).WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("❌ Route request failed")
	utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
}
