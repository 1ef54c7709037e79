package domain

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// QueryOptions holds the result modifiers of a query, which are not part of the
// filter itself.
type QueryOptions struct {
	// Sort specifies the sort order for results.
	Sort Sort
	// Skip specifies the number of results to skip.
	Skip int64
	// Limit specifies the maximum number of results to return. Zero means
	// no limit.
	Limit int64
}
