package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/pkg/manager"
)

var (
	extractName string
	extractAll  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [cabinet] [destination]",
	Short: "Extract one or all files from a cabinet",
	Long: `Extract a single named file, or every file, from a cabinet into a
destination directory.

Examples:
  # Extract one file
  go-cab extract archive.cab ./out --name docs/readme.txt

  # Extract everything
  go-cab extract archive.cab ./out --all`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractName, "name", "n", "", "file to extract (relative path inside the cabinet)")
	extractCmd.Flags().BoolVarP(&extractAll, "all", "a", false, "extract every file")
	extractCmd.MarkFlagsOneRequired("name", "all")
	extractCmd.MarkFlagsMutuallyExclusive("name", "all")
}

func runExtract(cabinetPath, destDir string) error {
	mgr := manager.New()
	ctx := context.Background()

	var names []string
	if extractAll {
		results := mgr.Run(ctx, []manager.Request{{CabinetPath: cabinetPath, Kind: manager.OpList}}, nil)
		for _, r := range results {
			if r.Err != nil {
				return r.Err
			}
			if r.Entry != nil {
				names = append(names, r.Entry.Name)
			}
		}
	} else {
		names = []string{extractName}
	}

	requests := make([]manager.Request, 0, len(names))
	for _, name := range names {
		requests = append(requests, manager.Request{
			CabinetPath: cabinetPath,
			Kind:        manager.OpExtract,
			RelPath:     name,
			DestPath:    filepath.Join(destDir, filepath.FromSlash(name)),
		})
	}

	results := mgr.Run(ctx, requests, func(e manager.BatchEvent) {
		if GetVerbose() {
			fmt.Printf("  %s: %d bytes\n", e.RelativePath, e.BytesDone)
		}
	})

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if !r.Found {
			return fmt.Errorf("%s: no such file in %s", r.Request.RelPath, cabinetPath)
		}
		if !GetQuiet() {
			fmt.Printf("extracted %s\n", r.Request.RelPath)
		}
	}
	return nil
}
