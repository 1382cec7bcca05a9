package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/go-cab/internal/types"
	"github.com/cabinetfs/go-cab/pkg/manager"
)

var listCmd = &cobra.Command{
	Use:   "list [cabinet]",
	Short: "List a cabinet's files",
	Long: `List every file recorded in a cabinet, along with its size, folder,
and last-modified time.

Example:
  go-cab list archive.cab`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cabinetPath string) error {
	mgr := manager.New()
	results := mgr.Run(context.Background(), []manager.Request{
		{CabinetPath: cabinetPath, Kind: manager.OpList},
	}, nil)

	entries := make([]*types.FileHeader, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if r.Entry != nil {
			entries = append(entries, r.Entry)
		}
	}

	if GetOutputFormat() == "json" {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tFOLDER\tMODIFIED")
	for _, f := range entries {
		modTime := types.DecodeDosDateTime(f.DosDate, f.DosTime)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", f.Name, f.UncompressedSize, f.FolderIndex, modTime.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
