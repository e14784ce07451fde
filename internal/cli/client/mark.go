package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// MarkAPIResponse represents a marked cell in API responses.
type MarkAPIResponse struct {
	CellID   string `json:"cell_id"`
	RunID    string `json:"run_id,omitempty"`
	MarkedAt string `json:"marked_at"`
}

// ClearMarksAPIResponse represents the clear-marks response.
type ClearMarksAPIResponse struct {
	Removed int64 `json:"removed"`
}

// MarkCmd creates the mark command group.
func MarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Manage marked cells",
		Long:  "Mark the cells of a found combination as used, list marks, and clear them",
	}

	cmd.AddCommand(MarkResultCmd())
	cmd.AddCommand(MarkListCmd())
	cmd.AddCommand(MarkClearCmd())

	return cmd
}

// MarkResultCmd creates the mark result command.
func MarkResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result <run-id> <ordinal>",
		Short: "Mark the cells of a stored combination as used",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			ordinal, err := strconv.Atoi(args[1])
			if err != nil || ordinal < 0 {
				return fmt.Errorf("invalid ordinal: %s", args[1])
			}
			return runMarkResult(cmd, args[0], ordinal, outputJSON)
		},
	}

	return cmd
}

func runMarkResult(cmd *cobra.Command, runID string, ordinal int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/runs/%s/results/%d/mark", url.PathEscape(runID), ordinal)
	resp, err := api.Post(path, nil)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}

	var marks []MarkAPIResponse
	if err := json.Unmarshal(resp.Data, &marks); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(marks, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Marked %d cells from run %s result #%d\n", len(marks), runID, ordinal)
	return nil
}

// MarkListCmd creates the mark list command.
func MarkListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <dataset-id>",
		Short: "List marked cells of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runMarkList(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runMarkList(cmd *cobra.Command, datasetID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/datasets/" + url.PathEscape(datasetID) + "/marks")
	if err != nil {
		return fmt.Errorf("mark list failed: %w", err)
	}

	var marks []MarkAPIResponse
	if err := json.Unmarshal(resp.Data, &marks); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(marks, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(marks) == 0 {
		fmt.Println("No marked cells.")
		return nil
	}

	fmt.Printf("Marked cells (%d):\n", len(marks))
	for _, m := range marks {
		if m.RunID != "" {
			fmt.Printf("  %s (run %s, marked %s)\n", m.CellID, m.RunID, m.MarkedAt)
		} else {
			fmt.Printf("  %s (marked %s)\n", m.CellID, m.MarkedAt)
		}
	}
	return nil
}

// MarkClearCmd creates the mark clear command.
func MarkClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <dataset-id>",
		Short: "Clear all marks on a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runMarkClear(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runMarkClear(cmd *cobra.Command, datasetID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete("/datasets/" + url.PathEscape(datasetID) + "/marks")
	if err != nil {
		return fmt.Errorf("mark clear failed: %w", err)
	}

	var cleared ClearMarksAPIResponse
	if err := json.Unmarshal(resp.Data, &cleared); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(cleared, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Removed %d marks from dataset %s\n", cleared.Removed, datasetID)
	return nil
}
