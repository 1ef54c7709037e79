package domain

import (
	"strconv"
	"strings"
)

// Segment is a single step in a [Path]: either a mapping key or a sequence
// index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// String returns the key, or the decimal index.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a node inside a query document. The empty path is the root.
type Path []Segment

// String renders the path as "$" followed by every segment, separated by dots.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range p {
		sb.WriteByte('.')
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Append returns a new path with seg appended. The receiver is never modified
// and the result never shares its backing array with siblings.
func (p Path) Append(seg Segment) Path {
	res := make(Path, len(p)+1)
	copy(res, p)
	res[len(p)] = seg
	return res
}

// Last returns the last segment of the path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Strings returns the string form of every segment.
func (p Path) Strings() []string {
	res := make([]string, len(p))
	for n, s := range p {
		res[n] = s.String()
	}
	return res
}

// DataPath keeps only the segments that address the queried data, dropping
// operators and the indexes of combinator lists.
func (p Path) DataPath() Path {
	res := make(Path, 0, len(p))
	for n, s := range p {
		if IsProperty(p, n) {
			res = append(res, s)
		}
	}
	return res
}

// IsProperty reports whether the segment at idx addresses data. A key is a
// property unless it names an operator. An index is a property unless the
// previous segment is $and, $or or $nor.
func IsProperty(path Path, idx int) bool {
	seg := path[idx]
	if !seg.IsIndex {
		return !IsOperator(seg.Key)
	}
	if idx == 0 {
		return true
	}
	prev := path[idx-1]
	if prev.IsIndex {
		return true
	}
	op, ok := ParseOperator(prev.Key)
	return !ok || !op.IsCombinator()
}

// ParsePath splits a dotted field name, such as "address.city", into key
// segments.
func ParsePath(field string) Path {
	if field == "" {
		return Path{}
	}
	parts := strings.Split(field, ".")
	res := make(Path, len(parts))
	for n, part := range parts {
		res[n] = Key(part)
	}
	return res
}
