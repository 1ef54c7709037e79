// Package cli implements the criterium command line.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read as configuration.
const EnvPrefix = "CRITERIUM"

// RootOptions holds global flags and the configuration shared by all
// commands.
type RootOptions struct {
	Verbose  bool
	Config   string
	Format   string
	Settings Settings
	Logger   *slog.Logger
}

// Settings is the configuration read from the config file, the environment
// and the command flags, in increasing order of precedence.
type Settings struct {
	SQL struct {
		Style string `mapstructure:"style"`
		Base  string `mapstructure:"base"`
	} `mapstructure:"sql"`
	Search struct {
		Index string `mapstructure:"index"`
	} `mapstructure:"search"`
}

// flagKeys maps command flags to configuration keys.
var flagKeys = map[string]string{
	"style": "sql.style",
	"base":  "sql.base",
	"index": "search.index",
}

// NewRootCommand creates the root command of the criterium CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "criterium",
		Short: "Compile filter queries",
		Long: `Compile MongoDB style filter queries into SQL, RediSearch queries or
in-memory matches.

Queries are read from a JSON or YAML file, or from stdin when the path is "-".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return loadSettings(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "query format (json|yaml), guessed from the file extension by default")

	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func loadSettings(opts *RootOptions, cmd *cobra.Command) error {
	v := viper.New()
	v.SetDefault("sql.style", "question")
	v.SetDefault("sql.base", "")
	v.SetDefault("search.index", "")

	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	if err := v.Unmarshal(&opts.Settings); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	opts.Logger.Debug("configuration loaded", "file", v.ConfigFileUsed())
	return nil
}
