package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/labagg-cli/internal/aggregate"
	"github.com/KaramelBytes/labagg-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	aggOut     string
	largestOut string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [root]",
	Short: "Stack the files of every unit/concentration group and report their shapes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd, args)
		if err != nil {
			return err
		}
		agg, largest, err := runPipeline(cmd.Context(), s)
		if err != nil {
			return err
		}
		return emitReport(cmd, aggregate.NewReport(agg, largest), s.format, aggOut)
	},
}

var largestCmd = &cobra.Command{
	Use:   "largest [root]",
	Short: "Report the group with the most rows for every unit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd, args)
		if err != nil {
			return err
		}
		agg, largest, err := runPipeline(cmd.Context(), s)
		if err != nil {
			return err
		}
		return emitReport(cmd, aggregate.NewReport(agg, largest).OnlyLargest(), s.format, largestOut)
	},
}

// emitReport writes rep to stdout, or atomically to out when set.
func emitReport(cmd *cobra.Command, rep *aggregate.Report, format, out string) error {
	if out == "" {
		return rep.Write(cmd.OutOrStdout(), format)
	}
	var buf bytes.Buffer
	if err := rep.Write(&buf, format); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("report written", zap.String("path", out), zap.Int("groups", len(rep.Groups)))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", out)
	return nil
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(largestCmd)
	addPipelineFlags(aggregateCmd)
	addPipelineFlags(largestCmd)
	aggregateCmd.Flags().StringVarP(&aggOut, "out", "o", "", "write the report to this file instead of stdout")
	largestCmd.Flags().StringVarP(&largestOut, "out", "o", "", "write the report to this file instead of stdout")
}
