package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/labagg-cli/internal/catalog"
	cfgpkg "github.com/KaramelBytes/labagg-cli/internal/config"
	"github.com/KaramelBytes/labagg-cli/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set labagg configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_root: %s\n", cfg.DataRoot)
		fmt.Fprintf(out, "extensions: %s\n", strings.Join(cfg.Extensions, ","))
		fmt.Fprintf(out, "delimiter: %s\n", cfg.Delimiter)
		fmt.Fprintf(out, "drop_columns: %s\n", joinInts(cfg.DropColumns))
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "layout: %s\n", cfg.Layout)
		fmt.Fprintf(out, "report_format: %s\n", cfg.ReportFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_root":
			cfg.DataRoot = val
		case "extensions":
			cfg.Extensions = splitList(val)
		case "delimiter":
			if _, err := cfgpkg.ParseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "drop_columns":
			var cols []int
			for _, part := range splitList(val) {
				i, err := strconv.Atoi(part)
				if err != nil {
					return fmt.Errorf("invalid int in drop_columns: %v", part)
				}
				cols = append(cols, i)
			}
			cfg.DropColumns = cols
		case "workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for workers: %v", val)
			}
			cfg.Workers = i
		case "layout":
			l, err := catalog.ParseLayout(val)
			if err != nil {
				return err
			}
			cfg.Layout = string(l)
		case "report_format":
			switch strings.ToLower(val) {
			case "text", "yaml", "yml", "csv":
			default:
				return fmt.Errorf("invalid report_format: %s (use text|yaml|csv)", val)
			}
			cfg.ReportFormat = val
		case "log_level":
			if _, err := logging.New(val, cfg.LogFormat); err != nil {
				return err
			}
			cfg.LogLevel = val
		case "log_format":
			if _, err := logging.New(cfg.LogLevel, val); err != nil {
				return err
			}
			cfg.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
