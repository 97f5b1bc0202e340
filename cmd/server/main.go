package main

//	@title			hourtrack API
//	@version		1.0
//	@description	Tasks, projects and time tracking.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer at user level
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				User bearer token (e.g., "Bearer eyJhbGciOi...")

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "hourtrack",
		Short:   "hourtrack - tasks, projects and time tracking API",
		Version: Version,
		// serve is the default
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
