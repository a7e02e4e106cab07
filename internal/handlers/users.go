package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tms-backend/internal/database"
	"tms-backend/internal/middleware"
	"tms-backend/internal/models"
	"tms-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"` // "admin", "dispatcher" or "driver"
}

type CreateUserResponse struct {
	Success bool                 `json:"success"`
	User    *models.UserResponse `json:"user,omitempty"`
	Message string               `json:"message,omitempty"`
}

var validRoles = map[string]bool{
	models.RoleAdmin:      true,
	models.RoleDispatcher: true,
	models.RoleDriver:     true,
}

// Validate checks required fields and the role
func (req CreateUserRequest) Validate() error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FirstName) == "" || req.Role == "" {
		return errors.New("email, password, firstName and role are required")
	}
	if !validRoles[req.Role] {
		return errors.New("role must be 'admin', 'dispatcher' or 'driver'")
	}
	return nil
}

// CreateUser creates a new user account
// Requires admin authentication
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := req.Validate(); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Error("❌ Failed to hash password")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:        uuid.New().String(),
			Email:     strings.TrimSpace(req.Email),
			Password:  string(hashedPassword),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Role:      req.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := database.InsertUser(r.Context(), db, &user); err != nil {
			if errors.Is(err, database.ErrDuplicateKey) {
				utils.RespondError(w, http.StatusConflict, "User with this email already exists")
				return
			}
			log.WithError(err).Error("❌ Database error")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.WithFields(log.Fields{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		}).Info("✅ User created")

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusCreated, CreateUserResponse{
			Success: true,
			User:    &userResponse,
			Message: "User created successfully",
		})
	}
}

// RegisterFCMToken registers a Firebase Cloud Messaging token for the caller
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Token      string `json:"token"`
			DeviceType string `json:"device_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "Invalid device_type (must be 'ios' or 'android')")
			return
		}

		if err := database.UpsertFCMToken(r.Context(), db, userClaims.UserID, req.Token, req.DeviceType); err != nil {
			log.WithError(err).Error("❌ Error registering FCM token")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register FCM token")
			return
		}

		log.Printf("📱 FCM token registered: %s (%s)", userClaims.Email, req.DeviceType)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "FCM token registered successfully",
		})
	}
}
