package docparser

import (
	"fmt"
	"regexp"
	"time"

	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

const (
	dateKey  = "$$date"
	regexKey = "$$regex"
	flagsKey = "$$flags"
)

// ErrInvalidRegex is returned when a {"$$regex": ...} object cannot be
// compiled.
type ErrInvalidRegex struct {
	Source string
	Flags  string
	Err    error
}

// Error implements [error].
func (e ErrInvalidRegex) Error() string {
	return fmt.Sprintf("invalid regex /%s/%s: %s", e.Source, e.Flags, e.Err)
}

// Unwrap implements [errors.Unwrap].
func (e ErrInvalidRegex) Unwrap() error {
	return e.Err
}

// extended replaces the special objects {"$$date": <unix ms>} and
// {"$$regex": <source>, "$$flags": <flags>} by scalars holding a [time.Time]
// and a [*regexp.Regexp]. Any other mapping is returned unchanged.
func extended(m domain.Mapping) (domain.Node, error) {
	switch len(m) {
	case 1:
		if m[0].Key == dateKey {
			if d, ok := asDate(m[0].Value); ok {
				return domain.Scalar{Value: d}, nil
			}
		}
		if m[0].Key == regexKey {
			return asRegex(m, m[0].Value, nil)
		}
	case 2:
		src, ok := m.Get(regexKey)
		flags, hasFlags := m.Get(flagsKey)
		if ok && hasFlags {
			return asRegex(m, src, flags)
		}
	}
	return m, nil
}

func asDate(n domain.Node) (time.Time, bool) {
	sc, ok := n.(domain.Scalar)
	if !ok {
		return time.Time{}, false
	}
	if ms, ok := structure.AsFloat(sc.Value); ok {
		return time.UnixMilli(int64(ms)), true
	}
	if s, ok := sc.Value.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		return t, err == nil
	}
	return time.Time{}, false
}

func asRegex(m domain.Mapping, srcNode, flagsNode domain.Node) (domain.Node, error) {
	src, ok := srcNode.(domain.Scalar)
	if !ok {
		return m, nil
	}
	source, ok := src.Value.(string)
	if !ok {
		return m, nil
	}
	var flags string
	if f, ok := flagsNode.(domain.Scalar); ok {
		flags, _ = f.Value.(string)
	}
	pattern := source
	if flags != "" {
		for _, f := range flags {
			switch f {
			case 'i', 'm', 's', 'U':
			default:
				return nil, ErrInvalidRegex{Source: source, Flags: flags, Err: fmt.Errorf("unknown flag %q", f)}
			}
		}
		pattern = "(?" + flags + ")" + source
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, ErrInvalidRegex{Source: source, Flags: flags, Err: err}
	}
	return domain.Scalar{Value: re}, nil
}
