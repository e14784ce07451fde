package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// SearchAPIRequest represents the search request parameters.
type SearchAPIRequest struct {
	Target        float64 `json:"target"`
	Tolerance     float64 `json:"tolerance"`
	MaxLength     int     `json:"max_length,omitempty"`
	MaxResults    int     `json:"max_results,omitempty"`
	ExcludeMarked bool    `json:"exclude_marked"`
}

// RunAPIResponse represents a search run in API responses.
type RunAPIResponse struct {
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

// ResultCellAPIResponse represents one cell of a found combination.
type ResultCellAPIResponse struct {
	CellID string  `json:"cell_id"`
	Ref    string  `json:"ref"`
	Value  float64 `json:"value"`
}

// CombinationAPIResponse represents one found combination.
type CombinationAPIResponse struct {
	Ordinal int                     `json:"ordinal"`
	Sum     float64                 `json:"sum"`
	Exact   bool                    `json:"exact"`
	Cells   []ResultCellAPIResponse `json:"cells"`
}

// SearchAPIResponse represents the synchronous search response.
type SearchAPIResponse struct {
	Run          RunAPIResponse           `json:"run"`
	Combinations []CombinationAPIResponse `json:"combinations"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		target        float64
		tolerance     float64
		maxLength     int
		maxResults    int
		excludeMarked bool
		async         bool
	)

	cmd := &cobra.Command{
		Use:   "search <dataset-id>",
		Short: "Find combinations of cells summing to a target",
		Long: "Searches a dataset for all combinations of cell values whose sum falls " +
			"within [target-tolerance, target+tolerance]. By default the search runs " +
			"synchronously; --async enqueues it for the background worker instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := SearchAPIRequest{
				Target:        target,
				Tolerance:     tolerance,
				MaxLength:     maxLength,
				MaxResults:    maxResults,
				ExcludeMarked: excludeMarked,
			}
			return runSearch(cmd, args[0], req, async, outputJSON)
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target sum (required)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Tolerance around the target (0 = exact)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum combination size (0 = unbounded)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Stop after this many combinations (0 = unbounded)")
	cmd.Flags().BoolVar(&excludeMarked, "exclude-marked", false, "Skip cells already marked as used")
	cmd.Flags().BoolVar(&async, "async", false, "Enqueue the run instead of waiting for results")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runSearch(cmd *cobra.Command, datasetID string, req SearchAPIRequest, async, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if async {
		resp, err := api.Post("/datasets/"+url.PathEscape(datasetID)+"/runs", req)
		if err != nil {
			return fmt.Errorf("search enqueue failed: %w", err)
		}

		var run RunAPIResponse
		if err := json.Unmarshal(resp.Data, &run); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if outputJSON {
			output, _ := json.MarshalIndent(run, "", "  ")
			fmt.Println(string(output))
			return nil
		}

		fmt.Printf("Run enqueued: %s\n", run.ID)
		fmt.Printf("Status: %s\n", run.Status)
		fmt.Printf("Check progress with: combosum run get %s\n", run.ID)
		return nil
	}

	resp, err := api.Post("/datasets/"+url.PathEscape(datasetID)+"/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchAPIResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printRunSummary(searchResp.Run)

	if len(searchResp.Combinations) == 0 {
		fmt.Println("\nNo combinations found.")
		return nil
	}

	fmt.Printf("\nFound %d combinations:\n\n", len(searchResp.Combinations))
	for _, combo := range searchResp.Combinations {
		refs := make([]string, len(combo.Cells))
		for i, cell := range combo.Cells {
			refs[i] = fmt.Sprintf("%s=%g", cell.Ref, cell.Value)
		}
		marker := "~"
		if combo.Exact {
			marker = "="
		}
		fmt.Printf("#%d  sum %s %g  [%s]\n", combo.Ordinal, marker, combo.Sum, strings.Join(refs, ", "))
	}

	return nil
}

func printRunSummary(run RunAPIResponse) {
	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("Status: %s\n", run.Status)
	fmt.Printf("Target: %g (tolerance %g)\n", run.Target, run.Tolerance)
	fmt.Printf("Found: %d (%.3fs)\n", run.FoundCount, float64(run.DurationMs)/1000)
	if run.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", run.ErrorMessage)
	}
}
