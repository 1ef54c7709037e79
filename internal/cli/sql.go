package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/sqlfilter"
)

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Compile a query into a SQL statement",
		Long: `Compile a query into a parameterized SQL expression.

The statement is printed on the first line and its arguments, as a JSON array,
on the second one. When --base is set, the WHERE, ORDER BY, LIMIT and OFFSET
clauses are appended to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, cmd, args[0])
		},
	}

	cmd.Flags().String("style", "question", "placeholder style (question|dollar|named)")
	cmd.Flags().String("base", "", "statement the clauses are appended to")

	return cmd
}

func runSQL(opts *RootOptions, cmd *cobra.Command, path string) error {
	style, err := sqlfilter.ParseStyle(opts.Settings.SQL.Style)
	if err != nil {
		return err
	}
	query, err := readQuery(cmd.Context(), opts, cmd, path)
	if err != nil {
		return err
	}

	b, err := sqlfilter.NewBuilder(
		sqlfilter.WithStyle(style),
		sqlfilter.WithCompilerOptions(compiler.WithLogger(opts.Logger)),
	)
	if err != nil {
		return err
	}
	f, err := b.Select(opts.Settings.SQL.Base, query)
	if err != nil {
		return err
	}

	args, err := json.Marshal(f.Args)
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	if f.Args == nil {
		args = []byte("[]")
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(f.SQL))
	fmt.Fprintln(cmd.OutOrStdout(), string(args))
	return nil
}
