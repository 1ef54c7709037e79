// Package fold implements a bottom-up fold over query documents.
package fold

import "github.com/vinicius-lino-figueiredo/criterium/domain"

// Reducer combines the results of the children of node into a single result.
// Returning false as the second value means the node contributes nothing to
// its parent. Returning an error stops the whole fold.
//
// parent is nil for the root node.
type Reducer[R any] func(children []R, node domain.Node, path domain.Path, parent domain.Node) (R, bool, error)

// Fold walks node depth-first, children before parents, in document order,
// calling reducer once for every node. The first error returned by reducer is
// returned unchanged and no other node is visited after it.
func Fold[R any](reducer Reducer[R], node domain.Node) (R, bool, error) {
	return walk(reducer, node, domain.Path{}, nil)
}

func walk[R any](reducer Reducer[R], node domain.Node, path domain.Path, parent domain.Node) (R, bool, error) {
	var children []R
	switch t := node.(type) {
	case domain.Sequence:
		children = make([]R, 0, len(t))
		for n, item := range t {
			res, ok, err := walk(reducer, item, path.Append(domain.Index(n)), node)
			if err != nil {
				var zero R
				return zero, false, err
			}
			if ok {
				children = append(children, res)
			}
		}
	case domain.Mapping:
		children = make([]R, 0, len(t))
		for key, value := range t.Iter() {
			res, ok, err := walk(reducer, value, path.Append(domain.Key(key)), node)
			if err != nil {
				var zero R
				return zero, false, err
			}
			if ok {
				children = append(children, res)
			}
		}
	}
	return reducer(children, node, path, parent)
}
