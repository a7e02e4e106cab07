package database

import (
	"context"
	"fmt"

	"tms-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// UserByEmail returns ErrNotFound when no account uses the address
func UserByEmail(ctx context.Context, db *sqlx.DB, email string) (*models.User, error) {
	var user models.User
	err := db.GetContext(ctx, &user, `
		SELECT id, email, password, first_name, last_name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", translateError(err))
	}
	return &user, nil
}

// UserByID returns ErrNotFound when the user does not exist
func UserByID(ctx context.Context, db *sqlx.DB, id string) (*models.User, error) {
	var user models.User
	err := db.GetContext(ctx, &user, `
		SELECT id, email, password, first_name, last_name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, translateError(err))
	}
	return &user, nil
}

// InsertUser returns ErrDuplicateKey when the email is taken
func InsertUser(ctx context.Context, db *sqlx.DB, user *models.User) error {
	_, err := db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password, first_name, last_name, role, created_at, updated_at)
		VALUES (:id, :email, :password, :first_name, :last_name, :role, :created_at, :updated_at)
	`, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", translateError(err))
	}
	return nil
}

// UpsertFCMToken registers a device token, moving it to userID if another account held it
func UpsertFCMToken(ctx context.Context, db *sqlx.DB, userID, token, deviceType string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    device_type = EXCLUDED.device_type,
		    updated_at = NOW()
	`, userID, token, deviceType)
	if err != nil {
		return fmt.Errorf("upsert fcm token: %w", err)
	}
	return nil
}

// FCMTokenStore looks up push tokens for dispatch notifications
type FCMTokenStore struct {
	db *sqlx.DB
}

func NewFCMTokenStore(db *sqlx.DB) *FCMTokenStore {
	return &FCMTokenStore{db: db}
}

// TokensForUser returns every registered device token of the user
func (s *FCMTokenStore) TokensForUser(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := s.db.SelectContext(ctx, &tokens,
		`SELECT token FROM fcm_tokens WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list fcm tokens: %w", err)
	}
	return tokens, nil
}
