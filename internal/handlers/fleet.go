package handlers

import (
	"net/http"

	"tms-backend/internal/database"
	"tms-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// GetVehicles returns the fleet used to populate route assignment forms
func GetVehicles(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := database.ListVehicles(r.Context(), db)
		if err != nil {
			log.WithError(err).Error("❌ Failed to fetch vehicles")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch vehicles")
			return
		}

		utils.RespondJSON(w, http.StatusOK, vehicles)
	}
}

// GetDrivers returns all drivers with their names
func GetDrivers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := database.ListDrivers(r.Context(), db)
		if err != nil {
			log.WithError(err).Error("❌ Failed to fetch drivers")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch drivers")
			return
		}

		utils.RespondJSON(w, http.StatusOK, drivers)
	}
}
