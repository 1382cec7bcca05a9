package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/pkg/manager"
)

var createFlat bool

var createCmd = &cobra.Command{
	Use:   "create [cabinet] [file...]",
	Short: "Build a new cabinet from a set of files",
	Long: `Build a new cabinet at the given path from one or more source files.
Overwrites any existing file at that path.

Example:
  go-cab create archive.cab ./build/readme.txt ./build/app.exe`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().BoolVar(&createFlat, "flat", true, "store every file under its base name instead of its given path")
}

func runCreate(cabinetPath string, sourcePaths []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	compression, err := cfg.CompressionType()
	if err != nil {
		return err
	}

	mgr := manager.New()
	requests := make([]manager.Request, 0, len(sourcePaths))
	for _, src := range sourcePaths {
		relPath := src
		if createFlat {
			relPath = filepath.Base(src)
		}
		requests = append(requests, manager.Request{
			CabinetPath: cabinetPath,
			Kind:        manager.OpCreate,
			SourcePath:  src,
			RelPath:     relPath,
			TempDir:     cfg.TempDir,
			Compression: compression,
		})
	}

	results := mgr.Run(context.Background(), requests, func(e manager.BatchEvent) {
		if GetVerbose() {
			fmt.Printf("  %s: %d bytes\n", e.RelativePath, e.BytesDone)
		}
	})

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	if !GetQuiet() {
		fmt.Printf("created %s with %d files\n", cabinetPath, len(sourcePaths))
	}
	return nil
}
