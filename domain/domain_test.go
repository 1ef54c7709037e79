package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

type DomainTestSuite struct {
	suite.Suite
}

func path(segs ...any) domain.Path {
	p := make(domain.Path, len(segs))
	for n, s := range segs {
		switch t := s.(type) {
		case int:
			p[n] = domain.Index(t)
		case string:
			p[n] = domain.Key(t)
		}
	}
	return p
}

func (s *DomainTestSuite) TestOptions() {
	qo := domain.QueryOptions{}.Apply(
		domain.WithSkip(-2),
		domain.WithLimit(-3),
		domain.WithSort(domain.Sort{{Key: "a", Order: -4}}),
	)
	s.Equal(domain.QueryOptions{
		Skip:  -2,
		Limit: -3,
		Sort:  domain.Sort{{Key: "a", Order: -4}},
	}, qo)
}

func (s *DomainTestSuite) TestOperatorRoundTrip() {
	for _, op := range domain.Operators() {
		parsed, ok := domain.ParseOperator(op.String())
		s.True(ok)
		s.Equal(op, parsed)
	}
	_, ok := domain.ParseOperator("$bogus")
	s.False(ok)
	_, ok = domain.ParseOperator("and")
	s.False(ok)
	s.Len(domain.Operators(), 15)
	s.Equal("$unknown", domain.Operator(200).String())
}

func (s *DomainTestSuite) TestIsCombinator() {
	for _, op := range domain.Operators() {
		switch op {
		case domain.OpAnd, domain.OpOr, domain.OpNor:
			s.True(op.IsCombinator(), op.String())
		default:
			s.False(op.IsCombinator(), op.String())
		}
	}
}

func (s *DomainTestSuite) TestPathString() {
	s.Equal("$", domain.Path{}.String())
	s.Equal("$.a.0.$gt", path("a", 0, "$gt").String())
}

func (s *DomainTestSuite) TestAppendDoesNotAlias() {
	base := make(domain.Path, 1, 8)
	base[0] = domain.Key("a")
	left := base.Append(domain.Key("b"))
	right := base.Append(domain.Key("c"))
	s.Equal("$.a.b", left.String())
	s.Equal("$.a.c", right.String())
	s.Len(base, 1)
}

func (s *DomainTestSuite) TestIsProperty() {
	p := path("a", "$in", 0, "$and", 1, "b", "$gt")
	expected := []bool{true, false, true, false, false, true, false}
	for n, exp := range expected {
		s.Equal(exp, domain.IsProperty(p, n), "segment %d", n)
	}
	s.True(domain.IsProperty(path(0), 0))
	s.True(domain.IsProperty(path("tags", 0, 1), 2))
	s.True(domain.IsProperty(path("$bogus"), 0))
}

func (s *DomainTestSuite) TestDataPath() {
	s.Equal(path("a", "b"), path("$and", 0, "a", "$not", "b", "$eq").DataPath())
	s.Equal(path("tags", 0), path("tags", "$all", 0).DataPath())
	s.Equal(domain.Path{}, path("$or", 1).DataPath())
}

func (s *DomainTestSuite) TestParsePath() {
	s.Equal(path("a", "b"), domain.ParsePath("a.b"))
	s.Equal(domain.Path{}, domain.ParsePath(""))
}

func (s *DomainTestSuite) TestValidationErrorMessages() {
	testCases := []struct {
		kind domain.ErrorKind
		path domain.Path
		msg  string
	}{
		{domain.UnexpectedValue, domain.Path{}, "unexpected value for query at '$'"},
		{domain.UnexpectedValue, path("a", "$gt"), "unexpected value for operator $gt at '$.a.$gt'"},
		{domain.PropertyNotFound, path("$gt"), "property not found for operator $gt at '$.$gt'"},
		{domain.OperatorNotSupported, path("$and", 1, "b", "$bogus"), "'$bogus' operator not supported at '$.$and.1.b.$bogus'"},
		{domain.SchemaValidation, path("a", "b", "$eq"), "querying path '$.a.b' is not allowed at '$.a.b.$eq'"},
		{domain.MaxDataDepth, path("a", "b", "$eq"), "max depth exceeded for path '$.a.b' at '$.a.b.$eq'"},
	}
	for _, tc := range testCases {
		err := domain.NewValidationError(tc.kind, domain.Scalar{Value: 1}, tc.path)
		s.EqualError(err, tc.msg)
		s.ErrorIs(err, tc.kind.Err())
		s.Equal(1, err.Value)
	}
}

func (s *DomainTestSuite) TestValidationErrorAs() {
	var err error = domain.NewValidationError(
		domain.MaxDataDepth,
		domain.Mapping{{Key: "x", Value: domain.Scalar{Value: "y"}}},
		path("a", "b", "$eq"),
	)
	var verr domain.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(domain.MaxDataDepth, verr.Kind)
	s.Equal(path("a", "b"), verr.DataPath)
	s.Equal(map[string]any{"x": "y"}, verr.Value)
	s.NotErrorIs(err, domain.ErrUnexpectedValue)
}

func (s *DomainTestSuite) TestConfigurationErrors() {
	err := domain.ErrMissingOperator{Operator: domain.OpEq}
	s.ErrorIs(err, domain.ErrConfiguration)
	s.Contains(err.Error(), `operators "$eq" and "$and" are mandatory`)
	s.ErrorIs(domain.ErrResolveType{Artifact: "int", Result: "string"}, domain.ErrConfiguration)
}

func (s *DomainTestSuite) TestNodeInterface() {
	node := domain.Mapping{
		{Key: "a", Value: domain.Sequence{domain.Scalar{Value: 1}, domain.Scalar{}}},
		{Key: "b", Value: domain.Scalar{Value: "x"}},
	}
	s.Equal(map[string]any{"a": []any{1, nil}, "b": "x"}, node.Interface())
	s.Equal(domain.KindMapping, node.Kind())

	v, ok := node.Get("b")
	s.True(ok)
	s.Equal(domain.Scalar{Value: "x"}, v)
	_, ok = node.Get("c")
	s.False(ok)

	var keys []string
	for k := range node.Keys() {
		keys = append(keys, k)
	}
	s.Equal([]string{"a", "b"}, keys)

	var values []domain.Node
	for k, v := range node.Iter() {
		if k == "a" {
			break
		}
		values = append(values, v)
	}
	s.Empty(values)
	for _, v := range node.Iter() {
		values = append(values, v)
	}
	s.Equal([]domain.Node{node[0].Value, node[1].Value}, values)
}

func TestDomainTestSuite(t *testing.T) {
	suite.Run(t, new(DomainTestSuite))
}
