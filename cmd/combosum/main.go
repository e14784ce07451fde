package main

import (
	"fmt"
	"os"

	"github.com/goyal-sidhant/Combinational-Sum/internal/cli"
	"github.com/goyal-sidhant/Combinational-Sum/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "combosum",
		Short: "Combosum CLI - Combination sum search over spreadsheet data",
		Long: `Combosum CLI finds combinations of numeric cells that sum to a target.

Environment variables:
  COMBOSUM_API_KEY   API key for authentication (required)
  COMBOSUM_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.DatasetCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.RunCmd())
	rootCmd.AddCommand(client.MarkCmd())
	rootCmd.AddCommand(client.UploadCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
