// Package validator checks the operand of every operator before any code is
// generated for it.
package validator

import (
	"regexp"

	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// Validate checks if value is an acceptable operand for op at path. It returns
// nil or a [domain.ValidationError]. The operand shape is checked before the
// presence of a data path.
func Validate(op domain.Operator, path domain.Path, value domain.Node, dataPath domain.Path) error {
	var kind domain.ErrorKind
	switch op {
	case domain.OpAnd, domain.OpOr, domain.OpNor:
		kind = checkQueryList(value)
	case domain.OpNot:
		kind = checkField(value.Kind() == domain.KindMapping, dataPath)
	case domain.OpIn, domain.OpNin, domain.OpAll:
		kind = checkField(value.Kind() == domain.KindSequence, dataPath)
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		kind = checkField(isNumeric(value), dataPath)
	case domain.OpNe, domain.OpEq:
		kind = checkField(value.Kind() == domain.KindScalar, dataPath)
	case domain.OpLike:
		kind = checkField(isPattern(value), dataPath)
	case domain.OpExists:
		kind = checkField(isBool(value), dataPath)
	default:
		kind = domain.OperatorNotSupported
	}
	if kind != 0 {
		return domain.NewValidationError(kind, value, path)
	}
	return nil
}

func checkQueryList(value domain.Node) domain.ErrorKind {
	seq, ok := value.(domain.Sequence)
	if !ok {
		return domain.UnexpectedValue
	}
	for _, item := range seq {
		if item.Kind() != domain.KindMapping {
			return domain.UnexpectedValue
		}
	}
	return 0
}

func checkField(shapeOK bool, dataPath domain.Path) domain.ErrorKind {
	if !shapeOK {
		return domain.UnexpectedValue
	}
	if len(dataPath) == 0 {
		return domain.PropertyNotFound
	}
	return 0
}

func isNumeric(value domain.Node) bool {
	sc, ok := value.(domain.Scalar)
	return ok && structure.IsNumeric(sc.Value)
}

func isPattern(value domain.Node) bool {
	sc, ok := value.(domain.Scalar)
	if !ok {
		return false
	}
	switch sc.Value.(type) {
	case string, *regexp.Regexp:
		return true
	default:
		return false
	}
}

func isBool(value domain.Node) bool {
	sc, ok := value.(domain.Scalar)
	if !ok {
		return false
	}
	_, ok = sc.Value.(bool)
	return ok
}
