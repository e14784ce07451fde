package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/go-chi/chi/v5"
)

type SearchService interface {
	SearchNow(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
	Enqueue(ctx context.Context, input service.SearchInput) (*domain.SearchRun, error)
	GetRun(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error)
	Cancel(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error)
	ListResults(ctx context.Context, input service.ListResultsInput) (*service.ListResultsOutput, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchRequest carries the search parameters. Tolerance widens the target window
// symmetrically; zero means exact match. Zero max_length/max_results mean unbounded.
type SearchRequest struct {
	Target        float64 `json:"target"`
	Tolerance     float64 `json:"tolerance"`
	MaxLength     int     `json:"max_length"`
	MaxResults    int     `json:"max_results"`
	ExcludeMarked bool    `json:"exclude_marked"`
}

type ResultCellResponse struct {
	CellID string  `json:"cell_id"`
	Ref    string  `json:"ref"`
	Value  float64 `json:"value"`
}

type CombinationResponse struct {
	Ordinal int                  `json:"ordinal"`
	Sum     float64              `json:"sum"`
	Exact   bool                 `json:"exact"`
	Cells   []ResultCellResponse `json:"cells"`
}

type RunResponse struct {
	ID            string  `json:"id"`
	DatasetID     string  `json:"dataset_id"`
	Target        float64 `json:"target"`
	Tolerance     float64 `json:"tolerance"`
	MaxLength     int     `json:"max_length,omitempty"`
	MaxResults    int     `json:"max_results,omitempty"`
	ExcludeMarked bool    `json:"exclude_marked"`
	Status        string  `json:"status"`
	FoundCount    int     `json:"found_count"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	DurationMs    int64   `json:"duration_ms"`
	CreatedAt     string  `json:"created_at"`
}

type SearchResponse struct {
	Run          RunResponse           `json:"run"`
	Combinations []CombinationResponse `json:"combinations"`
}

func runToResponse(run *domain.SearchRun) RunResponse {
	return RunResponse{
		ID:            run.ID,
		DatasetID:     run.DatasetID,
		Target:        run.Target,
		Tolerance:     run.Tolerance,
		MaxLength:     run.MaxLength,
		MaxResults:    run.MaxResults,
		ExcludeMarked: run.ExcludeMarked,
		Status:        string(run.Status),
		FoundCount:    run.FoundCount,
		ErrorMessage:  run.ErrorMessage,
		DurationMs:    run.DurationMs,
		CreatedAt:     run.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func decodeSearchInput(w http.ResponseWriter, r *http.Request) (service.SearchInput, bool) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return service.SearchInput{}, false
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return service.SearchInput{}, false
	}

	return service.SearchInput{
		WorkspaceID:   workspaceID,
		DatasetID:     chi.URLParam(r, "id"),
		Target:        req.Target,
		Tolerance:     req.Tolerance,
		MaxLength:     req.MaxLength,
		MaxResults:    req.MaxResults,
		ExcludeMarked: req.ExcludeMarked,
	}, true
}

// SearchNow runs the search within the request and returns the combinations
// directly. A client disconnect cancels the search; what was found up to that point
// is still recorded on the run.
func (h *SearchHandler) SearchNow(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeSearchInput(w, r)
	if !ok {
		return
	}

	out, err := h.svc.SearchNow(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	combos := make([]CombinationResponse, len(out.Combinations))
	for i, c := range out.Combinations {
		cells := make([]ResultCellResponse, len(c.Cells))
		for j, cell := range c.Cells {
			cells[j] = ResultCellResponse{CellID: cell.CellID, Ref: cell.Ref, Value: cell.Value}
		}
		combos[i] = CombinationResponse{Ordinal: c.Ordinal, Sum: c.Sum, Exact: c.Exact, Cells: cells}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Run:          runToResponse(out.Run),
		Combinations: combos,
	})
}

// Enqueue records the run for the background worker and returns immediately.
func (h *SearchHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeSearchInput(w, r)
	if !ok {
		return
	}

	run, err := h.svc.Enqueue(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, runToResponse(run))
}
