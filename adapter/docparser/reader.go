package docparser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Format is the syntax of a query document.
type Format uint8

// Supported formats.
const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat reads a format name. Empty names default to [JSON].
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("unknown format %q", name)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Parse reads data in the given format.
func Parse(data []byte, format Format) (domain.Node, error) {
	if format == YAML {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// Read reads the whole content of r and parses it. Reading stops as soon as
// ctx is done.
func Read(ctx context.Context, r io.Reader, format Format) (domain.Node, error) {
	data, err := io.ReadAll(contextio.NewReader(ctx, r))
	if err != nil {
		return nil, err
	}
	return Parse(data, format)
}

// ReadJSON is the same as [Read] with [JSON].
func ReadJSON(ctx context.Context, r io.Reader) (domain.Node, error) {
	return Read(ctx, r, JSON)
}

// ReadYAML is the same as [Read] with [YAML].
func ReadYAML(ctx context.Context, r io.Reader) (domain.Node, error) {
	return Read(ctx, r, YAML)
}
