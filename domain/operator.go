package domain

// Operator is one of the closed set of query operators.
type Operator uint8

// Every operator known by the query language. Dialects implement a subset, but
// must always include [OpAnd] and [OpEq].
const (
	OpAnd Operator = iota
	OpOr
	OpNor
	OpNot
	OpIn
	OpNin
	OpAll
	OpGt
	OpGte
	OpLt
	OpLte
	OpNe
	OpEq
	OpLike
	OpExists

	// OperatorCount is the number of operators. Useful for sizing lookup
	// tables indexed by [Operator].
	OperatorCount int = iota
)

var operatorNames = [OperatorCount]string{
	OpAnd:    "$and",
	OpOr:     "$or",
	OpNor:    "$nor",
	OpNot:    "$not",
	OpIn:     "$in",
	OpNin:    "$nin",
	OpAll:    "$all",
	OpGt:     "$gt",
	OpGte:    "$gte",
	OpLt:     "$lt",
	OpLte:    "$lte",
	OpNe:     "$ne",
	OpEq:     "$eq",
	OpLike:   "$like",
	OpExists: "$exists",
}

// ParseOperator returns the operator with the given name, such as "$gt".
func ParseOperator(name string) (Operator, bool) {
	switch name {
	case "$and":
		return OpAnd, true
	case "$or":
		return OpOr, true
	case "$nor":
		return OpNor, true
	case "$not":
		return OpNot, true
	case "$in":
		return OpIn, true
	case "$nin":
		return OpNin, true
	case "$all":
		return OpAll, true
	case "$gt":
		return OpGt, true
	case "$gte":
		return OpGte, true
	case "$lt":
		return OpLt, true
	case "$lte":
		return OpLte, true
	case "$ne":
		return OpNe, true
	case "$eq":
		return OpEq, true
	case "$like":
		return OpLike, true
	case "$exists":
		return OpExists, true
	default:
		return 0, false
	}
}

// IsOperator reports whether name is the name of a known operator.
func IsOperator(name string) bool {
	_, ok := ParseOperator(name)
	return ok
}

// String returns the operator name as written in queries.
func (o Operator) String() string {
	if int(o) < OperatorCount {
		return operatorNames[o]
	}
	return "$unknown"
}

// IsCombinator reports whether the operator takes a list of sub-queries, which
// means the indexes of its operand are not data properties.
func (o Operator) IsCombinator() bool {
	switch o {
	case OpAnd, OpOr, OpNor:
		return true
	default:
		return false
	}
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, OperatorCount)
	for n := range ops {
		ops[n] = Operator(n)
	}
	return ops
}
