package main

import (
	"fmt"
	"os"

	"github.com/goyal-sidhant/Combinational-Sum/internal/cli"
	"github.com/goyal-sidhant/Combinational-Sum/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "combosumd",
		Short: "Combosum daemon and admin CLI",
		Long:  "Combosum daemon for running the API server and managing workspaces and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.WorkspaceCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
