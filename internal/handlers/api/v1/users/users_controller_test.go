package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"visualverse/internal/models"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUserService is a simplified mock implementation for testing
type mockUserService struct {
	t *testing.T
}

func (m *mockUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return &models.User{
		ID:        id,
		Username:  "ada",
		Email:     "ada@visualverse.test",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleStudent,
	}, nil
}

func (m *mockUserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID int64, req *services.UpdateProfileRequest) (*models.User, error) {
	return nil, nil
}

func (m *mockUserService) RecordActivity(ctx context.Context, userID int64) (int, error) {
	return 1, nil
}

func (m *mockUserService) AddPoints(ctx context.Context, userID int64, points int) error {
	return nil
}

func TestGetPublicProfileHidesContactFields(t *testing.T) {
	controller := NewController(&mockUserService{t: t}, response.NewBuilder(false, zap.NewNop()), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/7", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()
	controller.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope response.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.True(t, envelope.Success)

	profile, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada", profile["username"])
	assert.Equal(t, "Ada Lovelace", profile["full_name"])
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "last_active_date")
	assert.NotContains(t, profile, "password_hash")
}

func TestGetPublicProfileInvalidID(t *testing.T) {
	controller := NewController(&mockUserService{t: t}, response.NewBuilder(false, zap.NewNop()), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	controller.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
