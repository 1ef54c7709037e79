package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/predicate"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Validate a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, path string) error {
	query, err := readQuery(cmd.Context(), opts, cmd, path)
	if err != nil {
		return err
	}
	filter, _, err := docparser.Split(query)
	if err != nil {
		return err
	}

	q, err := predicate.NewQuerier(
		predicate.WithCompilerOptions(compiler.WithLogger(opts.Logger)),
	)
	if err != nil {
		return err
	}
	if _, err := q.Compile(filter); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}
