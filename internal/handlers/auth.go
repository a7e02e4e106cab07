package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tms-backend/internal/database"
	"tms-backend/internal/middleware"
	"tms-backend/internal/models"
	"tms-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(db *sqlx.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		if jwtSecret == "" {
			log.Error("❌ JWT secret not configured")
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		user, err := database.UserByEmail(r.Context(), db, req.Email)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.WithError(err).Error("❌ Failed to load user")
				utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
				return
			}
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		tokenString, err := IssueToken(jwtSecret, user, time.Now())
		if err != nil {
			log.WithError(err).Error("❌ Failed to create token")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}

// IssueToken signs an HS256 token carrying the claims middleware.Auth reads
func IssueToken(jwtSecret string, user *models.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(jwtSecret))
}

// GetAuthStatus returns the authenticated user's account
func GetAuthStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := database.UserByID(r.Context(), db, claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		if err != nil {
			log.WithError(err).Error("❌ Failed to load user")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load user")
			return
		}

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": true,
			"user":          userResponse,
		})
	}
}
