package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedValue is the sentinel of [UnexpectedValue] errors.
	ErrUnexpectedValue = errors.New("unexpected value")
	// ErrPropertyNotFound is the sentinel of [PropertyNotFound] errors.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrOperatorNotSupported is the sentinel of [OperatorNotSupported]
	// errors.
	ErrOperatorNotSupported = errors.New("operator not supported")
	// ErrSchemaValidation is the sentinel of [SchemaValidation] errors.
	ErrSchemaValidation = errors.New("schema validation")
	// ErrMaxDataDepth is the sentinel of [MaxDataDepth] errors.
	ErrMaxDataDepth = errors.New("max data depth")

	// ErrConfiguration is wrapped by every error caused by an invalid
	// dialect definition. It is only returned when building a compiler.
	ErrConfiguration = errors.New("invalid dialect configuration")

	// ErrSkip can be returned by an operator function to contribute
	// nothing to its parent.
	ErrSkip = errors.New("skip node")
)

// ErrorKind classifies a [ValidationError].
type ErrorKind uint8

// Validation error kinds.
const (
	// UnexpectedValue means the operand has the wrong shape for its
	// operator, or the root is not an object.
	UnexpectedValue ErrorKind = iota + 1
	// PropertyNotFound means a field-level operator was used without a
	// field to apply to.
	PropertyNotFound
	// OperatorNotSupported means the key is an unknown operator, an
	// operator the dialect does not implement, or a field holding a list.
	OperatorNotSupported
	// SchemaValidation means the queried data path is not allowed. Reserved
	// for dialects that restrict fields.
	SchemaValidation
	// MaxDataDepth means the data path is deeper than the dialect allows.
	MaxDataDepth
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedValue:
		return "UnexpectedValue"
	case PropertyNotFound:
		return "PropertyNotFound"
	case OperatorNotSupported:
		return "OperatorNotSupported"
	case SchemaValidation:
		return "SchemaValidation"
	case MaxDataDepth:
		return "MaxDataDepth"
	default:
		return "Unknown"
	}
}

// Err returns the sentinel error of the kind.
func (k ErrorKind) Err() error {
	switch k {
	case UnexpectedValue:
		return ErrUnexpectedValue
	case PropertyNotFound:
		return ErrPropertyNotFound
	case OperatorNotSupported:
		return ErrOperatorNotSupported
	case SchemaValidation:
		return ErrSchemaValidation
	case MaxDataDepth:
		return ErrMaxDataDepth
	default:
		return nil
	}
}

// ValidationError is returned when a query is rejected. Only the first
// violation found is ever reported.
type ValidationError struct {
	Kind ErrorKind
	// Value is the offending value as plain go values.
	Value any
	// Path is the location of the offending node.
	Path Path
	// DataPath is the data path derived from Path.
	DataPath Path
}

// NewValidationError returns a [ValidationError] for the node at path.
func NewValidationError(kind ErrorKind, value Node, path Path) ValidationError {
	var v any
	if value != nil {
		v = value.Interface()
	}
	return ValidationError{
		Kind:     kind,
		Value:    v,
		Path:     path,
		DataPath: path.DataPath(),
	}
}

// Error implements [error].
func (e ValidationError) Error() string {
	last, isRoot := "", true
	if seg, ok := e.Path.Last(); ok {
		last, isRoot = seg.String(), false
	}
	switch e.Kind {
	case UnexpectedValue:
		if isRoot {
			return fmt.Sprintf("unexpected value for query at '%s'", e.Path)
		}
		return fmt.Sprintf("unexpected value for operator %s at '%s'", last, e.Path)
	case PropertyNotFound:
		return fmt.Sprintf("property not found for operator %s at '%s'", last, e.Path)
	case OperatorNotSupported:
		return fmt.Sprintf("'%s' operator not supported at '%s'", last, e.Path)
	case SchemaValidation:
		return fmt.Sprintf("querying path '%s' is not allowed at '%s'", e.DataPath, e.Path)
	case MaxDataDepth:
		return fmt.Sprintf("max depth exceeded for path '%s' at '%s'", e.DataPath, e.Path)
	default:
		return fmt.Sprintf("invalid query at '%s'", e.Path)
	}
}

// Unwrap returns the sentinel of the error kind, so callers can use
// [errors.Is] with [ErrUnexpectedValue] and the like.
func (e ValidationError) Unwrap() error {
	return e.Kind.Err()
}

// ErrMissingOperator is returned when a dialect does not implement one of the
// mandatory operators.
type ErrMissingOperator struct {
	Operator Operator
}

// Error implements [error].
func (e ErrMissingOperator) Error() string {
	return fmt.Sprintf("operators %q and %q are mandatory, missing %q", OpEq, OpAnd, e.Operator)
}

// Unwrap implements [errors.Unwrap].
func (e ErrMissingOperator) Unwrap() error {
	return ErrConfiguration
}

// ErrResolveType is returned when a dialect has no resolve function but its
// artifact type differs from its result type.
type ErrResolveType struct {
	Artifact string
	Result   string
}

// Error implements [error].
func (e ErrResolveType) Error() string {
	return fmt.Sprintf("no resolve function to turn %s into %s", e.Artifact, e.Result)
}

// Unwrap implements [errors.Unwrap].
func (e ErrResolveType) Unwrap() error {
	return ErrConfiguration
}

// ErrTargetNil is returned when the passed target, which should be a pointer,
// is passed as a nil value.
var ErrTargetNil = errors.New("target interface is nil")

// ErrNonPointer is returned when a decoding target is not a pointer.
var ErrNonPointer = errors.New("target should be a pointer")

// ErrDecode is returned when a value could not be decoded into a target.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}
