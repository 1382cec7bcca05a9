package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/pkg/manager"
)

var addAs string

var addCmd = &cobra.Command{
	Use:   "add [cabinet] [source-file]",
	Short: "Add or replace a file in an existing cabinet",
	Long: `Stage source-file to be written into cabinet, replacing any existing
entry at the same path, and save immediately.

Example:
  go-cab add archive.cab ./build/readme.txt --as docs/readme.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		relPath := addAs
		if relPath == "" {
			relPath = args[1]
		}
		return runAdd(args[0], args[1], relPath)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addAs, "as", "", "path to store the file under inside the cabinet (default: source-file's own path)")
}

func runAdd(cabinetPath, sourcePath, relPath string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	compression, err := cfg.CompressionType()
	if err != nil {
		return err
	}

	mgr := manager.New()
	results := mgr.Run(context.Background(), []manager.Request{
		{CabinetPath: cabinetPath, Kind: manager.OpAdd, SourcePath: sourcePath, RelPath: relPath, TempDir: cfg.TempDir, Compression: compression},
	}, nil)

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	if !GetQuiet() {
		fmt.Printf("added %s as %s\n", sourcePath, relPath)
	}
	return nil
}
