package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// CellAPIRequest represents a single cell in a dataset create request.
type CellAPIRequest struct {
	Ref   string  `json:"ref"`
	Value float64 `json:"value"`
}

// CreateDatasetAPIRequest represents the dataset create request.
type CreateDatasetAPIRequest struct {
	Name   string           `json:"name"`
	Cells  []CellAPIRequest `json:"cells,omitempty"`
	Pasted string           `json:"pasted,omitempty"`
}

// DatasetAPIResponse represents a dataset in API responses.
type DatasetAPIResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	CellCount int    `json:"cell_count"`
	CreatedAt string `json:"created_at"`
}

// CellAPIResponse represents a cell in API responses.
type CellAPIResponse struct {
	ID       string  `json:"id"`
	Ref      string  `json:"ref"`
	Value    float64 `json:"value"`
	Position int     `json:"position"`
}

// ListDatasetsAPIResponse represents the dataset list response.
type ListDatasetsAPIResponse struct {
	Items   []DatasetAPIResponse `json:"items"`
	Cursor  string               `json:"cursor,omitempty"`
	HasMore bool                 `json:"has_more"`
}

// DatasetCmd creates the dataset command group.
func DatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets",
		Long:  "Create, list, and inspect datasets of numeric cells",
	}

	cmd.AddCommand(DatasetCreateCmd())
	cmd.AddCommand(DatasetListCmd())
	cmd.AddCommand(DatasetGetCmd())
	cmd.AddCommand(DatasetCellsCmd())

	return cmd
}

// DatasetCreateCmd creates the dataset create command.
func DatasetCreateCmd() *cobra.Command {
	var (
		name      string
		values    string
		pasteFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dataset",
		Long: "Creates a dataset from a comma-separated list of values (--values) " +
			"or from a file of pasted spreadsheet text (--paste-file).",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDatasetCreate(cmd, name, values, pasteFile, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Dataset name (required)")
	cmd.Flags().StringVar(&values, "values", "", "Comma-separated numeric values (e.g. \"120.50,80,35.25\")")
	cmd.Flags().StringVar(&pasteFile, "paste-file", "", "File containing pasted spreadsheet text ('-' for stdin)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runDatasetCreate(cmd *cobra.Command, name, values, pasteFile string, outputJSON bool) error {
	if values != "" && pasteFile != "" {
		return fmt.Errorf("provide either --values or --paste-file, not both")
	}
	if values == "" && pasteFile == "" {
		return fmt.Errorf("either --values or --paste-file is required")
	}

	req := CreateDatasetAPIRequest{Name: name}

	if values != "" {
		parts := strings.Split(values, ",")
		cells := make([]CellAPIRequest, 0, len(parts))
		for i, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			v, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q at position %d", trimmed, i+1)
			}
			cells = append(cells, CellAPIRequest{
				Ref:   fmt.Sprintf("R%d", i+1),
				Value: v,
			})
		}
		if len(cells) == 0 {
			return fmt.Errorf("no values provided")
		}
		req.Cells = cells
	} else {
		var data []byte
		var err error
		if pasteFile == "-" {
			data, err = os.ReadFile("/dev/stdin")
		} else {
			data, err = os.ReadFile(pasteFile)
		}
		if err != nil {
			return fmt.Errorf("failed to read paste file: %w", err)
		}
		req.Pasted = string(data)
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/datasets", req)
	if err != nil {
		return fmt.Errorf("dataset create failed: %w", err)
	}

	var dataset DatasetAPIResponse
	if err := json.Unmarshal(resp.Data, &dataset); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(dataset, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Dataset created: %s\n", dataset.ID)
	fmt.Printf("Name: %s\n", dataset.Name)
	fmt.Printf("Cells: %d\n", dataset.CellCount)
	return nil
}

// DatasetListCmd creates the dataset list command.
func DatasetListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDatasetList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDatasetList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/datasets?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + url.QueryEscape(cursor)
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("dataset list failed: %w", err)
	}

	var listResp ListDatasetsAPIResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No datasets found.")
		return nil
	}

	fmt.Printf("Found %d datasets:\n\n", len(listResp.Items))
	for _, d := range listResp.Items {
		fmt.Printf("%s  %s (%d cells, %s, created: %s)\n", d.ID, d.Name, d.CellCount, d.Source, d.CreatedAt)
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

// DatasetGetCmd creates the dataset get command.
func DatasetGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDatasetGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDatasetGet(cmd *cobra.Command, datasetID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/datasets/" + url.PathEscape(datasetID))
	if err != nil {
		return fmt.Errorf("dataset get failed: %w", err)
	}

	var dataset DatasetAPIResponse
	if err := json.Unmarshal(resp.Data, &dataset); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(dataset, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("ID: %s\n", dataset.ID)
	fmt.Printf("Name: %s\n", dataset.Name)
	fmt.Printf("Source: %s\n", dataset.Source)
	fmt.Printf("Cells: %d\n", dataset.CellCount)
	fmt.Printf("Created: %s\n", dataset.CreatedAt)
	return nil
}

// DatasetCellsCmd creates the dataset cells command.
func DatasetCellsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cells <id>",
		Short: "List the cells of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDatasetCells(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDatasetCells(cmd *cobra.Command, datasetID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/datasets/" + url.PathEscape(datasetID) + "/cells")
	if err != nil {
		return fmt.Errorf("dataset cells failed: %w", err)
	}

	var cells []CellAPIResponse
	if err := json.Unmarshal(resp.Data, &cells); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(cells, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(cells) == 0 {
		fmt.Println("No cells found.")
		return nil
	}

	for _, c := range cells {
		fmt.Printf("%-8s %14.4f  (%s)\n", c.Ref, c.Value, c.ID)
	}
	return nil
}
