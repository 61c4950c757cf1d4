package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "research",
	Short:   "research - autonomous deep research agent",
	Long:    `research runs an autonomous search/visit/reflect/answer loop against a question until it produces a final, evaluated answer.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(runCmd)
}
