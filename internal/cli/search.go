package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/redisearch"
)

// ErrNoIndex is returned by the search command when no index is configured.
var ErrNoIndex = errors.New("no index given, use --index or CRITERIUM_SEARCH_INDEX")

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Compile a query into a RediSearch FT.SEARCH command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, cmd, args[0])
		},
	}

	cmd.Flags().String("index", "", "index to search")

	return cmd
}

func runSearch(opts *RootOptions, cmd *cobra.Command, path string) error {
	index := opts.Settings.Search.Index
	if index == "" {
		return ErrNoIndex
	}
	query, err := readQuery(cmd.Context(), opts, cmd, path)
	if err != nil {
		return err
	}

	s, err := redisearch.NewSearcher(
		redisearch.WithCompilerOptions(compiler.WithLogger(opts.Logger)),
	)
	if err != nil {
		return err
	}
	c, err := s.Search(index, query)
	if err != nil {
		return err
	}

	args := c.Args()
	for n, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \"'\\") {
			args[n] = strconv.Quote(arg)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(args, " "))
	return nil
}
