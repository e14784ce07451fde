package client

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitUploadAPIRequest represents the upload init request.
type InitUploadAPIRequest struct {
	ContentType string `json:"content_type"`
}

// InitUploadAPIResponse represents the upload init response.
type InitUploadAPIResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// CompleteUploadAPIRequest represents the upload complete request.
type CompleteUploadAPIRequest struct {
	Key         string `json:"key"`
	DatasetName string `json:"dataset_name"`
	Column      int    `json:"column"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var (
		name   string
		column int
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a CSV file as a dataset",
		Long: "Uploads a CSV file to object storage and imports one numeric column " +
			"as a dataset. The three steps (init, upload, complete) run automatically.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], name, column, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Dataset name (defaults to the file name)")
	cmd.Flags().IntVarP(&column, "column", "c", 0, "Zero-based CSV column to import")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, name string, column int, outputJSON bool) error {
	if name == "" {
		base := filepath.Base(filePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	contentType := "text/csv"

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	initResp, err := api.Post("/uploads/init", InitUploadAPIRequest{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload init failed: %w", err)
	}

	var initResult InitUploadAPIResponse
	if err := json.Unmarshal(initResp.Data, &initResult); err != nil {
		return fmt.Errorf("failed to parse init response: %w", err)
	}

	if !outputJSON {
		fmt.Printf("Uploading %s...\n", filePath)
	}

	if err := api.UploadFile(initResult.UploadURL, filePath, contentType); err != nil {
		return fmt.Errorf("file upload failed: %w", err)
	}

	completeResp, err := api.Post("/uploads/complete", CompleteUploadAPIRequest{
		Key:         initResult.Key,
		DatasetName: name,
		Column:      column,
	})
	if err != nil {
		return fmt.Errorf("upload complete failed: %w", err)
	}

	var dataset DatasetAPIResponse
	if err := json.Unmarshal(completeResp.Data, &dataset); err != nil {
		return fmt.Errorf("failed to parse complete response: %w", err)
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
