package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateWorkspace(ctx context.Context, name string) (*domain.Workspace, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockAuthService) ListWorkspaces(ctx context.Context) ([]*domain.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Workspace), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, workspaceID, name string) (string, error) {
	args := m.Called(ctx, workspaceID, name)
	return args.String(0), args.Error(1)
}

func TestAuthHandler_CreateWorkspace_Success(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	expectedWs := &domain.Workspace{
		ID:        "ws-123",
		Name:      "Test Workspace",
		CreatedAt: time.Now().UTC(),
	}
	mockSvc.On("CreateWorkspace", mock.Anything, "Test Workspace").Return(expectedWs, nil)

	body := `{"name":"Test Workspace"}`
	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateWorkspace(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ws-123", data["id"])
	assert.Equal(t, "Test Workspace", data["name"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_CreateWorkspace_MissingName(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	body := `{}`
	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateWorkspace(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")
}

func TestAuthHandler_CreateWorkspace_Duplicate(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("CreateWorkspace", mock.Anything, "Dup").Return(nil, domain.ErrWorkspaceAlreadyExists)

	body := `{"name":"Dup"}`
	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateWorkspace(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_CreateWorkspace_InvalidJSON(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	body := `{invalid`
	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateWorkspace(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestAuthHandler_ListWorkspaces(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	workspaces := []*domain.Workspace{
		{ID: "ws-1", Name: "First", CreatedAt: time.Now().UTC()},
		{ID: "ws-2", Name: "Second", CreatedAt: time.Now().UTC()},
	}
	mockSvc.On("ListWorkspaces", mock.Anything).Return(workspaces, nil)

	req := httptest.NewRequest(http.MethodGet, "/workspaces", nil)
	w := httptest.NewRecorder()

	handler.ListWorkspaces(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_CreateAPIKey_Success(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("CreateAPIKey", mock.Anything, "ws-123", "dev-key").Return("csum_abc123secret", nil)

	body := `{"workspace_id":"ws-123","name":"dev-key"}`
	req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateAPIKey(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "csum_abc123secret", data["token"])
	assert.Equal(t, "dev-key", data["name"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_CreateAPIKey_MissingWorkspaceID(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	body := `{"name":"dev-key"}`
	req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateAPIKey(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "workspace_id is required")
}
