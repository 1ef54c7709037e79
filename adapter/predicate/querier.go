package predicate

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Querier filters, sorts and pages slices of items with queries compiled by
// the predicate dialect.
type Querier struct {
	compiler     *compiler.Compiler[Predicate, Predicate]
	cmpr         domain.Comparer
	fn           domain.FieldNavigator
	dec          domain.Decoder
	compilerOpts []compiler.Option
}

// NewQuerier returns a new Querier.
func NewQuerier(opts ...Option) (*Querier, error) {
	q := Querier{}
	for _, opt := range opts {
		opt(&q)
	}
	if q.cmpr == nil {
		q.cmpr = comparer.NewComparer()
	}
	if q.fn == nil {
		q.fn = fieldnavigator.NewFieldNavigator()
	}
	if q.dec == nil {
		q.dec = decoder.NewDecoder()
	}
	c, err := compiler.New(NewDialect(q.cmpr, q.fn), q.compilerOpts...)
	if err != nil {
		return nil, err
	}
	q.compiler = c
	return &q, nil
}

// Compile compiles query into a [Predicate].
func (q *Querier) Compile(query any) (Predicate, error) {
	return q.compiler.Compile(query)
}

// Match reports whether item matches query.
func (q *Querier) Match(item any, query any) (bool, error) {
	p, err := q.Compile(query)
	if err != nil {
		return false, err
	}
	return p(item)
}

// Filter returns the items matching p, keeping their order.
func (q *Querier) Filter(items []any, p Predicate) ([]any, error) {
	res := make([]any, 0, len(items))
	for n, item := range items {
		ok, err := p(item)
		if err != nil {
			return nil, fmt.Errorf("matching item %d: %w", n, err)
		}
		if ok {
			res = append(res, item)
		}
	}
	return res, nil
}

// Query filters items with query and applies the $sort, $skip and $limit
// modifiers found at its root. Options given as arguments override the ones
// read from the query.
func (q *Querier) Query(items []any, query any, opts ...domain.QueryOption) ([]any, error) {
	filter, options, err := docparser.Split(docparser.FromValue(query))
	if err != nil {
		return nil, err
	}
	options = options.Apply(opts...)

	p, err := q.Compile(filter)
	if err != nil {
		return nil, err
	}
	res, err := q.Filter(items, p)
	if err != nil {
		return nil, err
	}
	if len(options.Sort) > 0 {
		if res, err = q.Sort(res, options.Sort); err != nil {
			return nil, fmt.Errorf("sorting: %w", err)
		}
	}
	return SkipAndLimit(res, options.Skip, options.Limit), nil
}

// Find runs [Querier.Query] and decodes the result into target, which must be
// a pointer to a slice.
func (q *Querier) Find(items []any, query any, target any, opts ...domain.QueryOption) error {
	res, err := q.Query(items, query, opts...)
	if err != nil {
		return err
	}
	return q.dec.Decode(res, target)
}

// sortKey holds the values an item is sorted by. pos keeps equal items in
// their original order.
type sortKey struct {
	values []any
	pos    int
}

type sortComparer struct {
	cmpr  domain.Comparer
	order []int
}

// CompareKeys implements bst.Comparer.
func (sc *sortComparer) CompareKeys(a, b sortKey) (int, error) {
	for i, order := range sc.order {
		c, err := sc.cmpr.Compare(a.values[i], b.values[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c * order, nil
		}
	}
	return cmp.Compare(a.pos, b.pos), nil
}

// CompareValues implements bst.Comparer.
func (sc *sortComparer) CompareValues(a, b any) (bool, error) {
	c, err := sc.cmpr.Compare(a, b)
	return c == 0, err
}

// Sort returns a sorted copy of items. Items are compared by each criterion in
// sequence and equal items keep their relative order.
func (q *Querier) Sort(items []any, sort domain.Sort) ([]any, error) {
	paths := make([]domain.Path, len(sort))
	order := make([]int, len(sort))
	for i, crit := range sort {
		paths[i] = domain.ParsePath(crit.Key)
		order[i] = cmp.Compare(crit.Order, 0)
	}

	var sc bst.Comparer[sortKey, any] = &sortComparer{cmpr: q.cmpr, order: order}
	tree := avl.NewBST(false, 8, sc)
	for pos, item := range items {
		key := sortKey{values: make([]any, len(paths)), pos: pos}
		for i, path := range paths {
			v, err := q.sortValue(item, path)
			if err != nil {
				return nil, err
			}
			key.values[i] = v
		}
		if err := tree.Insert(key, item); err != nil {
			return nil, err
		}
	}
	return slices.Collect(tree.GetAll()), nil
}

func (q *Querier) sortValue(item any, path domain.Path) (any, error) {
	fields, expanded, err := q.fn.GetField(item, path)
	if err != nil {
		return nil, fmt.Errorf("getting field: %w", err)
	}
	if !expanded && len(fields) == 1 {
		return fields[0], nil
	}
	res := make([]any, len(fields))
	for n, f := range fields {
		res[n] = f
	}
	return res, nil
}

// SkipAndLimit pages data. A zero limit returns every item after skip.
func SkipAndLimit[T any](data []T, skip, limit int64) []T {
	length := int64(len(data))

	skip = max(skip, 0)
	skip = min(skip, length)

	end := length
	if limit > 0 {
		end = min(skip+limit, length)
	}
	return data[skip:end]
}
