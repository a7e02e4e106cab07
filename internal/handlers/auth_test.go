package handlers

import (
	"testing"
	"time"

	"tms-backend/internal/middleware"
	"tms-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "dispatch@tms.local", Role: models.RoleDispatcher}

	token, err := IssueToken("secret", user, time.Now())
	require.NoError(t, err)

	claims, err := middleware.ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, middleware.UserClaims{UserID: "user-1", Email: "dispatch@tms.local", Role: "dispatcher"}, claims)

	_, err = middleware.ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestIssueTokenExpires(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "driver@tms.local", Role: models.RoleDriver}

	token, err := IssueToken("secret", user, time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)

	_, err = middleware.ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestCreateUserRequestValidate(t *testing.T) {
	valid := CreateUserRequest{Email: "a@tms.local", Password: "pw", FirstName: "Ana", Role: "dispatcher"}

	tests := []struct {
		name    string
		mutate  func(*CreateUserRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*CreateUserRequest) {}},
		{name: "missing email", mutate: func(r *CreateUserRequest) { r.Email = " " }, wantErr: true},
		{name: "missing password", mutate: func(r *CreateUserRequest) { r.Password = "" }, wantErr: true},
		{name: "missing first name", mutate: func(r *CreateUserRequest) { r.FirstName = "" }, wantErr: true},
		{name: "unknown role", mutate: func(r *CreateUserRequest) { r.Role = "manager" }, wantErr: true},
		{name: "driver role", mutate: func(r *CreateUserRequest) { r.Role = "driver" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
