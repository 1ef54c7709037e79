package domain

// QueryOption configures result modifiers through the functional options
// pattern.
type QueryOption func(*QueryOptions)

// WithSort specifies the sort order for query results.
func WithSort(s Sort) QueryOption {
	return func(qo *QueryOptions) {
		qo.Sort = s
	}
}

// WithSkip sets the number of results to skip.
func WithSkip(s int64) QueryOption {
	return func(qo *QueryOptions) {
		qo.Skip = s
	}
}

// WithLimit sets the maximum number of results to return.
func WithLimit(l int64) QueryOption {
	return func(qo *QueryOptions) {
		qo.Limit = l
	}
}

// Apply returns a copy of qo with every option applied.
func (qo QueryOptions) Apply(options ...QueryOption) QueryOptions {
	for _, opt := range options {
		opt(&qo)
	}
	return qo
}
