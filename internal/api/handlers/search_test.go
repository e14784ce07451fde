package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchNow(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func (m *MockSearchService) Enqueue(ctx context.Context, input service.SearchInput) (*domain.SearchRun, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchRun), args.Error(1)
}

func (m *MockSearchService) GetRun(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error) {
	args := m.Called(ctx, workspaceID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchRun), args.Error(1)
}

func (m *MockSearchService) Cancel(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error) {
	args := m.Called(ctx, workspaceID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchRun), args.Error(1)
}

func (m *MockSearchService) ListResults(ctx context.Context, input service.ListResultsInput) (*service.ListResultsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResultsOutput), args.Error(1)
}

func authedRequest(method, target, body, datasetID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.WorkspaceIDKey, "ws-1")
	if datasetID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", datasetID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func testRun(status domain.RunStatus) *domain.SearchRun {
	return &domain.SearchRun{
		ID:          "run-1",
		WorkspaceID: "ws-1",
		DatasetID:   "ds-1",
		Target:      60,
		Tolerance:   0.5,
		Status:      status,
		FoundCount:  2,
		DurationMs:  42,
		CreatedAt:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestSearchHandler_SearchNow_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	out := &service.SearchOutput{
		Run: testRun(domain.RunStatusCompleted),
		Combinations: []service.CombinationResult{
			{Ordinal: 0, Sum: 60, Exact: true, Cells: []service.CellResult{
				{CellID: "c-1", Ref: "A1", Value: 40},
				{CellID: "c-2", Ref: "A2", Value: 20},
			}},
			{Ordinal: 1, Sum: 59.8, Exact: false, Cells: []service.CellResult{
				{CellID: "c-3", Ref: "A3", Value: 59.8},
			}},
		},
	}
	mockSvc.On("SearchNow", mock.Anything, service.SearchInput{
		WorkspaceID: "ws-1",
		DatasetID:   "ds-1",
		Target:      60,
		Tolerance:   0.5,
	}).Return(out, nil)

	body := `{"target":60,"tolerance":0.5}`
	req := authedRequest(http.MethodPost, "/datasets/ds-1/search", body, "ds-1")
	w := httptest.NewRecorder()

	handler.SearchNow(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	run := data["run"].(map[string]interface{})
	assert.Equal(t, "run-1", run["id"])
	assert.Equal(t, "completed", run["status"])
	combos := data["combinations"].([]interface{})
	require.Len(t, combos, 2)
	first := combos[0].(map[string]interface{})
	assert.Equal(t, true, first["exact"])
	assert.Equal(t, 60.0, first["sum"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_SearchNow_Unauthorized(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	body := `{"target":60}`
	req := httptest.NewRequest(http.MethodPost, "/datasets/ds-1/search", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.SearchNow(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "SearchNow", mock.Anything, mock.Anything)
}

func TestSearchHandler_SearchNow_InvalidTolerance(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("SearchNow", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "tolerance must not be negative"))

	body := `{"target":60,"tolerance":-1}`
	req := authedRequest(http.MethodPost, "/datasets/ds-1/search", body, "ds-1")
	w := httptest.NewRecorder()

	handler.SearchNow(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tolerance must not be negative")
}

func TestSearchHandler_SearchNow_DatasetNotFound(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("SearchNow", mock.Anything, mock.Anything).Return(nil, domain.ErrDatasetNotFound)

	body := `{"target":60}`
	req := authedRequest(http.MethodPost, "/datasets/ds-9/search", body, "ds-9")
	w := httptest.NewRecorder()

	handler.SearchNow(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchHandler_Enqueue_Accepted(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Enqueue", mock.Anything, service.SearchInput{
		WorkspaceID:   "ws-1",
		DatasetID:     "ds-1",
		Target:        100,
		MaxResults:    500,
		ExcludeMarked: true,
	}).Return(testRun(domain.RunStatusPending), nil)

	body := `{"target":100,"max_results":500,"exclude_marked":true}`
	req := authedRequest(http.MethodPost, "/datasets/ds-1/runs", body, "ds-1")
	w := httptest.NewRecorder()

	handler.Enqueue(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestRunHandler_Cancel(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewRunHandler(mockSvc)

	mockSvc.On("Cancel", mock.Anything, "ws-1", "run-1").Return(testRun(domain.RunStatusCancelling), nil)

	req := authedRequest(http.MethodPost, "/runs/run-1/cancel", "", "run-1")
	w := httptest.NewRecorder()

	handler.Cancel(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "cancelling", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestRunHandler_Cancel_AlreadyFinished(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewRunHandler(mockSvc)

	mockSvc.On("Cancel", mock.Anything, "ws-1", "run-1").Return(nil, domain.ErrRunNotCancellable)

	req := authedRequest(http.MethodPost, "/runs/run-1/cancel", "", "run-1")
	w := httptest.NewRecorder()

	handler.Cancel(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRunHandler_ListResults(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewRunHandler(mockSvc)

	out := &service.ListResultsOutput{
		Run: testRun(domain.RunStatusCompleted),
		Results: []*domain.RunResult{
			{RunID: "run-1", Ordinal: 5, Sum: 60, Exact: true, CellIDs: []string{"c-1"}, Refs: []string{"A1"}},
		},
		HasMore: true,
	}
	mockSvc.On("ListResults", mock.Anything, service.ListResultsInput{
		WorkspaceID: "ws-1",
		RunID:       "run-1",
		FromOrdinal: 5,
		Limit:       1,
	}).Return(out, nil)

	req := authedRequest(http.MethodGet, "/runs/run-1/results?from=5&limit=1", "", "run-1")
	w := httptest.NewRecorder()

	handler.ListResults(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["has_more"])
	results := data["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, 5.0, results[0].(map[string]interface{})["ordinal"])
	mockSvc.AssertExpectations(t)
}

func TestRunHandler_ListResults_InvalidFrom(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewRunHandler(mockSvc)

	req := authedRequest(http.MethodGet, "/runs/run-1/results?from=banana", "", "run-1")
	w := httptest.NewRecorder()

	handler.ListResults(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ListResults", mock.Anything, mock.Anything)
}
