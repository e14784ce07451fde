package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// StoredResultAPIResponse represents one stored combination of a run.
type StoredResultAPIResponse struct {
	Ordinal int      `json:"ordinal"`
	Sum     float64  `json:"sum"`
	Exact   bool     `json:"exact"`
	CellIDs []string `json:"cell_ids"`
	Refs    []string `json:"refs"`
}

// ListResultsAPIResponse represents the run results page.
type ListResultsAPIResponse struct {
	Run     RunAPIResponse            `json:"run"`
	Results []StoredResultAPIResponse `json:"results"`
	HasMore bool                      `json:"has_more"`
}

// RunCmd creates the run command group.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect and control search runs",
		Long:  "Get run status, cancel running searches, and page through stored results",
	}

	cmd.AddCommand(RunGetCmd())
	cmd.AddCommand(RunCancelCmd())
	cmd.AddCommand(RunResultsCmd())

	return cmd
}

// RunGetCmd creates the run get command.
func RunGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a run's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRunGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runRunGet(cmd *cobra.Command, runID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/runs/" + url.PathEscape(runID))
	if err != nil {
		return fmt.Errorf("run get failed: %w", err)
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

	printRunSummary(run)
	fmt.Printf("Dataset: %s\n", run.DatasetID)
	fmt.Printf("Created: %s\n", run.CreatedAt)
	return nil
}

// RunCancelCmd creates the run cancel command.
func RunCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a pending or running search",
		Long: "Requests cancellation of a run. Pending runs are cancelled immediately; " +
			"running searches stop shortly after and keep the combinations found so far.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRunCancel(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runRunCancel(cmd *cobra.Command, runID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/runs/"+url.PathEscape(runID)+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("run cancel failed: %w", err)
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

	fmt.Printf("Run %s: %s\n", run.ID, run.Status)
	return nil
}

// RunResultsCmd creates the run results command.
func RunResultsCmd() *cobra.Command {
	var (
		from  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "results <id>",
		Short: "List stored results of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRunResults(cmd, args[0], from, limit, outputJSON)
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "Start from this ordinal")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")

	return cmd
}

func runRunResults(cmd *cobra.Command, runID string, from, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/runs/%s/results?from=%d&limit=%d", url.PathEscape(runID), from, limit)
	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("run results failed: %w", err)
	}

	var listResp ListResultsAPIResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printRunSummary(listResp.Run)

	if len(listResp.Results) == 0 {
		fmt.Println("\nNo stored results.")
		return nil
	}

	fmt.Println()
	for _, res := range listResp.Results {
		marker := "~"
		if res.Exact {
			marker = "="
		}
		fmt.Printf("#%d  sum %s %g  [%s]\n", res.Ordinal, marker, res.Sum, strings.Join(res.Refs, ", "))
	}

	if listResp.HasMore {
		next := listResp.Results[len(listResp.Results)-1].Ordinal + 1
		fmt.Printf("\nMore results available. Use --from %d\n", next)
	}

	return nil
}
