package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-otp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users, _ := args.Get(0).([]domain.User); users != nil {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestProfile_NoResolvedAccount(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{})
	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	rr := httptest.NewRecorder()
	h.Profile(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestList_ReturnsAllProfiles(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("List", mock.Anything).Return([]domain.User{
		{UserID: "u1", Email: "a@b.com"},
		{UserID: "u2", Email: "c@d.com"},
	}, nil)

	h := NewUserHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env UsersEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, 2, env.Results)
	assert.Len(t, env.Data, 2)
}
