package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var catShowFiles bool

var catalogCmd = &cobra.Command{
	Use:   "catalog [root]",
	Short: "List measurement files grouped by unit and concentration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd, args)
		if err != nil {
			return err
		}
		cat, err := discover(s)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range cat.Units() {
			fmt.Fprintln(out, u)
			for _, c := range cat.Concentrations(u) {
				files := cat.Files(u, c)
				fmt.Fprintf(out, "  %s (%d files)\n", c, len(files))
				if !catShowFiles {
					continue
				}
				for _, fl := range files {
					fmt.Fprintf(out, "    - %s\n", filepath.Base(fl.Path))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	addPipelineFlags(catalogCmd)
	catalogCmd.Flags().BoolVar(&catShowFiles, "files", false, "list every file under its group")
}
