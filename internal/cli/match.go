package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dolmen-go/contextio"
	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/predicate"
)

// maxLineSize is the size of the longest data line accepted by match.
const maxLineSize = 16 << 20

// ErrStdinTwice is returned when both the query and the data are read from
// stdin.
var ErrStdinTwice = errors.New("query and data cannot both be read from stdin")

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Print the records matching a query",
		Long: `Filter a JSON lines file with a query. Matching records are printed as
JSON, one per line, after applying $sort, $skip and $limit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, cmd, args[0], data)
		},
	}

	cmd.Flags().StringVar(&data, "data", "-", "JSON lines file with the records")

	return cmd
}

func runMatch(opts *RootOptions, cmd *cobra.Command, path, data string) error {
	if path == "-" && data == "-" {
		return ErrStdinTwice
	}
	query, err := readQuery(cmd.Context(), opts, cmd, path)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if data != "-" {
		f, err := os.Open(data)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	items, err := readRecords(cmd.Context(), r)
	if err != nil {
		return err
	}
	opts.Logger.Debug("records loaded", "count", len(items))

	q, err := predicate.NewQuerier(
		predicate.WithCompilerOptions(compiler.WithLogger(opts.Logger)),
	)
	if err != nil {
		return err
	}
	res, err := q.Query(items, query)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, item := range res {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// readRecords parses every non-empty line of r as a JSON document.
func readRecords(ctx context.Context, r io.Reader) ([]any, error) {
	sc := bufio.NewScanner(contextio.NewReader(ctx, r))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var items []any
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		n, err := docparser.ParseJSON(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, n.Interface())
	}
	return items, sc.Err()
}
