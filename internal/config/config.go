package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/labagg-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataRoot    string   `mapstructure:"data_root" yaml:"data_root"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`
	Delimiter   string   `mapstructure:"delimiter" yaml:"delimiter"`
	DropColumns []int    `mapstructure:"drop_columns" yaml:"drop_columns"`
	Workers     int      `mapstructure:"workers" yaml:"workers"`
	// Layout is what to do with files too shallow to group: skip|abort.
	Layout string `mapstructure:"layout" yaml:"layout"`

	// Output
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the built-in configuration: tab separated .txt files under
// ./raw_data with the leading index column dropped.
func Defaults() Global {
	return Global{
		DataRoot:     "./raw_data",
		Extensions:   []string{".txt"},
		Delimiter:    "tab",
		DropColumns:  []int{0},
		Workers:      4,
		Layout:       "skip",
		ReportFormat: "text",
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".labagg"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.labagg/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command-line flags are applied
// on top by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LABAGG")
	v.AutomaticEnv()

	// Defaults
	d := Defaults()
	v.SetDefault("data_root", d.DataRoot)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("drop_columns", d.DropColumns)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("layout", d.Layout)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// Only a missing default config is fine. A malformed one is an error,
		// as is an explicit file that cannot be read.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// ParseDelimiter maps a delimiter name to the rune used for splitting fields.
// "auto" yields 0, which asks the loader to detect it.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "tab", "\t", `\t`:
		return '\t', nil
	case "comma", ",":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	case "pipe", "|":
		return '|', nil
	case "auto":
		return 0, nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if r != '"' && r != '\r' && r != '\n' {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use tab|comma|semicolon|pipe|auto or a single character)", s)
}
