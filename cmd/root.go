package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "go-cab",
	Short: "Read, extract, and rebuild Microsoft Cabinet (.cab) archives",
	Long: `go-cab is a command-line tool for working with Microsoft Cabinet
(.cab) archives stored with no compression (the "Store" method).

Commands:
  list      List a cabinet's files
  extract   Extract one or all files from a cabinet
  create    Build a new cabinet from a set of files
  add       Add or replace a file in an existing cabinet
  remove    Remove a file from an existing cabinet
  move      Rename a file in place within a cabinet`,
	Version: "0.1.0-dev",
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json)")
}

// GetVerbose returns the verbose flag value.
func GetVerbose() bool { return verbose }

// GetQuiet returns the quiet flag value.
func GetQuiet() bool { return quiet }

// GetOutputFormat returns the output format.
func GetOutputFormat() string { return outputFormat }
