package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/pkg/manager"
)

var removeCmd = &cobra.Command{
	Use:   "remove [cabinet] [name]",
	Short: "Remove a file from an existing cabinet",
	Long: `Remove name's entry from cabinet and save immediately.

Example:
  go-cab remove archive.cab docs/readme.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cabinetPath, relPath string) error {
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
		{CabinetPath: cabinetPath, Kind: manager.OpRemove, RelPath: relPath, TempDir: cfg.TempDir, Compression: compression},
	}, nil)

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if r.Request.Kind == manager.OpRemove && !r.Found {
			return fmt.Errorf("%s: no such file in %s", relPath, cabinetPath)
		}
	}
	if !GetQuiet() {
		fmt.Printf("removed %s\n", relPath)
	}
	return nil
}
