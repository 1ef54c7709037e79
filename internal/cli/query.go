package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// readQuery parses the query document at path, or stdin when path is "-".
func readQuery(ctx context.Context, opts *RootOptions, cmd *cobra.Command, path string) (domain.Node, error) {
	format, err := queryFormat(opts, path)
	if err != nil {
		return nil, err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	opts.Logger.Debug("reading query", "path", path, "format", format.String())
	return docparser.Read(ctx, r, format)
}

func queryFormat(opts *RootOptions, path string) (docparser.Format, error) {
	if opts.Format != "" {
		return docparser.ParseFormat(opts.Format)
	}
	if path == "-" {
		return docparser.JSON, nil
	}
	return docparser.FormatFromPath(path), nil
}
