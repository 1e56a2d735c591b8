package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spring-lsp build version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("spring-lsp " + version)
		return nil
	},
}
