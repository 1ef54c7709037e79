package docparser

import (
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// Reserved root keys holding result modifiers instead of filters.
const (
	SortKey  = "$sort"
	SkipKey  = "$skip"
	LimitKey = "$limit"
)

// Split removes the result modifiers $sort, $skip and $limit from the root of
// query and returns them as [domain.QueryOptions]. Malformed modifiers return a
// [domain.UnexpectedValue] error. Queries that are not mappings are returned
// unchanged.
func Split(query domain.Node) (domain.Node, domain.QueryOptions, error) {
	var opts domain.QueryOptions
	m, ok := query.(domain.Mapping)
	if !ok {
		return query, opts, nil
	}
	filter := make(domain.Mapping, 0, len(m))
	for _, e := range m {
		path := domain.Path{domain.Key(e.Key)}
		var err error
		switch e.Key {
		case SortKey:
			opts.Sort, err = readSort(e.Value, path)
		case SkipKey:
			opts.Skip, err = readCount(e.Value, path)
		case LimitKey:
			opts.Limit, err = readCount(e.Value, path)
		default:
			filter = append(filter, e)
		}
		if err != nil {
			return nil, opts, err
		}
	}
	return filter, opts, nil
}

func readSort(n domain.Node, path domain.Path) (domain.Sort, error) {
	m, ok := n.(domain.Mapping)
	if !ok {
		return nil, domain.NewValidationError(domain.UnexpectedValue, n, path)
	}
	sort := make(domain.Sort, 0, len(m))
	for _, e := range m {
		sc, ok := e.Value.(domain.Scalar)
		order, isInt := 0, false
		if ok {
			order, isInt = structure.AsInteger(sc.Value)
		}
		if !isInt || (order != 1 && order != -1) {
			return nil, domain.NewValidationError(domain.UnexpectedValue, e.Value, path.Append(domain.Key(e.Key)))
		}
		sort = append(sort, domain.SortName{Key: e.Key, Order: int64(order)})
	}
	return sort, nil
}

func readCount(n domain.Node, path domain.Path) (int64, error) {
	if sc, ok := n.(domain.Scalar); ok {
		if i, ok := structure.AsInteger(sc.Value); ok && i >= 0 {
			return int64(i), nil
		}
	}
	return 0, domain.NewValidationError(domain.UnexpectedValue, n, path)
}
