package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/pkg/manager"
)

var moveCmd = &cobra.Command{
	Use:   "move [cabinet] [old-name] [new-name]",
	Short: "Rename a file in place within a cabinet",
	Long: `Rename old-name to new-name inside cabinet and save immediately.

Example:
  go-cab move archive.cab docs/readme.txt docs/README.txt`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(cabinetPath, oldName, newName string) error {
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
		{CabinetPath: cabinetPath, Kind: manager.OpMove, RelPath: oldName, NewRelPath: newName, TempDir: cfg.TempDir, Compression: compression},
	}, nil)

	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if r.Request.Kind == manager.OpMove && !r.Found {
			return fmt.Errorf("%s: no such file in %s", oldName, cabinetPath)
		}
	}
	if !GetQuiet() {
		fmt.Printf("moved %s -> %s\n", oldName, newName)
	}
	return nil
}
