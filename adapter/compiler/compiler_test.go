package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

type M = domain.Mapping
type A = domain.Sequence

func sc(v any) domain.Scalar { return domain.Scalar{Value: v} }

type observerMock struct{ mock.Mock }

// Observe implements [domain.Observer].
func (o *observerMock) Observe(dialect string, elapsed time.Duration, err error) {
	o.Called(dialect, elapsed, err)
}

// trace renders every operation as op(datapath|args), so tests can see
// exactly what each operator function received.
func trace(o Operation[string]) (string, error) {
	args := make([]string, 0, len(o.Children)+len(o.Elements)+1)
	args = append(args, o.Children...)
	for _, e := range o.Elements {
		args = append(args, fmt.Sprint(e.Interface()))
	}
	if v, ok := o.Value.(domain.Scalar); ok {
		args = append(args, fmt.Sprint(v.Value))
	}
	return fmt.Sprintf("%s(%s|%s)", o.Operator, strings.Join(o.DataPath.Strings(), "."), strings.Join(args, ",")), nil
}

func traceDialect(except ...domain.Operator) Dialect[string, string] {
	ops := Operators[string]{}
	for _, op := range domain.Operators() {
		ops[op] = trace
	}
	for _, op := range except {
		delete(ops, op)
	}
	return Dialect[string, string]{Name: "trace", Operators: ops}
}

type CompilerTestSuite struct {
	suite.Suite
	c *Compiler[string, string]
}

func (s *CompilerTestSuite) SetupTest() {
	var err error
	s.c, err = New(traceDialect())
	s.Require().NoError(err)
}

func (s *CompilerTestSuite) compileJSON(query string) (string, error) {
	node, err := docparser.ParseJSON([]byte(query))
	s.Require().NoError(err)
	return s.c.Compile(node)
}

func (s *CompilerTestSuite) assertRejected(err error, kind domain.ErrorKind, path string) {
	s.Require().Error(err)
	var verr domain.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal(kind, verr.Kind, err.Error())
	s.Equal(path, verr.Path.String())
}

func (s *CompilerTestSuite) TestFieldsAndOperators() {
	res, err := s.compileJSON(`{"name": "John", "age": {"$gt": 20}}`)
	s.NoError(err)
	s.Equal("$and(|$eq(name|John),$and(age|$gt(age|20)))", res)
}

func (s *CompilerTestSuite) TestNestedFields() {
	res, err := s.compileJSON(`{"address": {"city": "Rome", "zip": {"$ne": null}}}`)
	s.NoError(err)
	s.Equal("$and(|$and(address|$eq(address.city|Rome),$and(address.zip|$ne(address.zip|<nil>))))", res)
}

func (s *CompilerTestSuite) TestCombinators() {
	res, err := s.compileJSON(`{"$or": [{"a": 1}, {"b": {"$lt": 2}}], "$nor": []}`)
	s.NoError(err)
	s.Equal("$and(|$or(|$and(|$eq(a|1)),$and(|$and(b|$lt(b|2)))),$nor(|))", res)
}

func (s *CompilerTestSuite) TestElements() {
	res, err := s.compileJSON(`{"tags": {"$in": ["a", {"x": 1}], "$all": [1, [2, 3]]}}`)
	s.NoError(err)
	s.Equal("$and(|$and(tags|$in(tags|$and(tags.1|$eq(tags.1.x|1)),a),$all(tags|1,[2 3])))", res)
}

func (s *CompilerTestSuite) TestNot() {
	res, err := s.compileJSON(`{"age": {"$not": {"$gt": 5, "$lt": 2}, "$exists": true}}`)
	s.NoError(err)
	s.Equal("$and(|$and(age|$not(age|$gt(age|5),$lt(age|2)),$exists(age|true)))", res)
}

func (s *CompilerTestSuite) TestEmptyQuery() {
	res, err := s.c.Compile(M{})
	s.NoError(err)
	s.Equal("$and(|)", res)
}

func (s *CompilerTestSuite) TestGoValues() {
	res, err := s.c.Compile(map[string]any{
		"b": map[string]any{"$in": []int{1, 2}},
		"a": "x",
	})
	s.NoError(err)
	s.Equal("$and(|$eq(a|x),$and(b|$in(b|1,2)))", res)

	type query struct {
		Name string `criterium:"name"`
		Age  map[string]any
	}
	res, err = s.c.Compile(&query{Name: "n", Age: map[string]any{"$gte": 3}})
	s.NoError(err)
	s.Equal("$and(|$eq(name|n),$and(Age|$gte(Age|3)))", res)
}

func (s *CompilerTestSuite) TestRootMustBeMapping() {
	for _, q := range []any{nil, 1, "x", []any{map[string]any{}}, A{}, A{M{{Key: "$bogus", Value: sc(1)}}}} {
		_, err := s.c.Compile(q)
		s.assertRejected(err, domain.UnexpectedValue, "$")
		s.EqualError(err, "unexpected value for query at '$'")
	}

	_, err := s.compileJSON(`[{"a": {"$gt": true}}]`)
	s.assertRejected(err, domain.UnexpectedValue, "$")
}

func (s *CompilerTestSuite) TestNestingEquivalence() {
	var got []Operation[string]
	d := traceDialect()
	d.Operators[domain.OpEq] = func(o Operation[string]) (string, error) {
		got = append(got, o)
		return trace(o)
	}
	c, err := New(d)
	s.Require().NoError(err)

	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: sc(5)}}}})
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: M{{Key: "$eq", Value: sc(5)}}}}}})
	s.Require().NoError(err)

	s.Require().Len(got, 2)
	s.Equal(got[0].Operator, got[1].Operator)
	s.Equal(got[0].DataPath, got[1].DataPath)
	s.Equal(got[0].Value, got[1].Value)
	s.Equal([]string{"a", "b"}, got[1].DataPath.Strings())
}

func (s *CompilerTestSuite) TestRepeatedCompile() {
	var ctxs []*Context
	d := traceDialect()
	d.ExtendCtx = func() any { return new(int) }
	d.Resolve = func(artifact string, ctx *Context) (string, error) {
		ctxs = append(ctxs, ctx)
		*Ext[*int](ctx)++
		return artifact, nil
	}
	c, err := New(d)
	s.Require().NoError(err)

	query := M{{Key: "a", Value: M{{Key: "$in", Value: A{sc(1), sc(2)}}}}, {Key: "b", Value: sc("x")}}
	first, err := c.Compile(query)
	s.Require().NoError(err)
	second, err := c.Compile(query)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Require().Len(ctxs, 2)
	s.NotSame(ctxs[0], ctxs[1])
	s.NotEqual(ctxs[0].ID, ctxs[1].ID)
	s.Equal(1, *Ext[*int](ctxs[0]))
	s.Equal(1, *Ext[*int](ctxs[1]))
}

func (s *CompilerTestSuite) TestUnknownOperator() {
	_, err := s.compileJSON(`{"$and": [{"a": 1}, {"b": {"$bogus": 1}}]}`)
	s.assertRejected(err, domain.OperatorNotSupported, "$.$and.1.b.$bogus")
	s.EqualError(err, "'$bogus' operator not supported at '$.$and.1.b.$bogus'")
	s.ErrorIs(err, domain.ErrOperatorNotSupported)
}

func (s *CompilerTestSuite) TestOperatorMissingFromDialect() {
	c, err := New(traceDialect(domain.OpGt, domain.OpLike))
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "$gt", Value: sc(1)}}}})
	s.assertRejected(err, domain.OperatorNotSupported, "$.a.$gt")
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "$lt", Value: sc(1)}}}})
	s.NoError(err)
}

func (s *CompilerTestSuite) TestFieldHoldingList() {
	_, err := s.compileJSON(`{"tags": ["a", "b"]}`)
	s.assertRejected(err, domain.OperatorNotSupported, "$.tags")
}

func (s *CompilerTestSuite) TestInvalidOperands() {
	testCases := []struct {
		query string
		kind  domain.ErrorKind
		path  string
	}{
		{`{"a": {"$gt": true}}`, domain.UnexpectedValue, "$.a.$gt"},
		{`{"a": {"$gt": "abc"}}`, domain.UnexpectedValue, "$.a.$gt"},
		{`{"$gt": 5}`, domain.PropertyNotFound, "$.$gt"},
		{`{"$not": {"a": 1}}`, domain.PropertyNotFound, "$.$not"},
		{`{"a": {"$in": 5}}`, domain.UnexpectedValue, "$.a.$in"},
		{`{"$and": {"a": 1}}`, domain.UnexpectedValue, "$.$and"},
		{`{"$or": [1]}`, domain.UnexpectedValue, "$.$or"},
		{`{"a": {"$exists": 1}}`, domain.UnexpectedValue, "$.a.$exists"},
		{`{"a": {"$like": 1}}`, domain.UnexpectedValue, "$.a.$like"},
		{`{"a": {"$eq": {"b": 1}}}`, domain.UnexpectedValue, "$.a.$eq"},
		{`{"$and": [{"$or": [{"x": {"$nin": {}}}]}]}`, domain.UnexpectedValue, "$.$and.0.$or.0.x.$nin"},
	}
	for _, tc := range testCases {
		_, err := s.compileJSON(tc.query)
		s.assertRejected(err, tc.kind, tc.path)
	}
}

func (s *CompilerTestSuite) TestNumericStringsAreAccepted() {
	res, err := s.compileJSON(`{"a": {"$gt": "30"}}`)
	s.NoError(err)
	s.Equal("$and(|$and(a|$gt(a|30)))", res)
}

func (s *CompilerTestSuite) TestFirstErrorWins() {
	_, err := s.compileJSON(`{"a": {"$gt": true}, "b": {"$bogus": 1}}`)
	s.assertRejected(err, domain.UnexpectedValue, "$.a.$gt")

	_, err = s.compileJSON(`{"b": {"$bogus": 1}, "a": {"$gt": true}}`)
	s.assertRejected(err, domain.OperatorNotSupported, "$.b.$bogus")
}

func (s *CompilerTestSuite) TestDataDepth() {
	d := traceDialect()
	d.DataDepth = 1
	c, err := New(d)
	s.Require().NoError(err)

	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: sc(1)}}}})
	s.assertRejected(err, domain.MaxDataDepth, "$.a.b")
	s.EqualError(err, "max depth exceeded for path '$.a.b' at '$.a.b'")

	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: M{{Key: "$gt", Value: sc(1)}}}}}})
	s.assertRejected(err, domain.MaxDataDepth, "$.a.b.$gt")

	res, err := c.Compile(M{{Key: "$or", Value: A{M{{Key: "a", Value: M{{Key: "$gt", Value: sc(1)}}}}}}})
	s.NoError(err)
	s.Equal("$and(|$or(|$and(|$and(a|$gt(a|1)))))", res)

	// validation comes first
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: M{{Key: "$gt", Value: sc(true)}}}}}})
	s.assertRejected(err, domain.UnexpectedValue, "$.a.b.$gt")

	c, err = New(d, WithDataDepth(0))
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "b", Value: sc(1)}}}})
	s.NoError(err)
}

func (s *CompilerTestSuite) TestMandatoryOperators() {
	for _, op := range []domain.Operator{domain.OpEq, domain.OpAnd} {
		_, err := New(traceDialect(op))
		s.ErrorIs(err, domain.ErrConfiguration)
		s.ErrorAs(err, &domain.ErrMissingOperator{})
	}
	_, err := New(traceDialect(domain.OpOr, domain.OpNor, domain.OpLike))
	s.NoError(err)
}

func (s *CompilerTestSuite) TestResolve() {
	d := Dialect[string, int]{
		Name:      "len",
		Operators: traceDialect().Operators,
		Resolve: func(artifact string, _ *Context) (int, error) {
			return len(artifact), nil
		},
	}
	c, err := New(d)
	s.Require().NoError(err)
	n, err := c.Compile(M{})
	s.NoError(err)
	s.Equal(len("$and(|)"), n)

	d.Resolve = nil
	_, err = New(d)
	s.ErrorIs(err, domain.ErrConfiguration)
	s.EqualError(err, "no resolve function to turn string into int")
}

func (s *CompilerTestSuite) TestContext() {
	calls := 0
	type params struct{ names []string }
	d := traceDialect()
	d.ExtendCtx = func() any {
		calls++
		return &params{}
	}
	d.Operators[domain.OpEq] = func(o Operation[string]) (string, error) {
		p := Ext[*params](o.Ctx)
		p.names = append(p.names, o.DataPath.Strings()...)
		return trace(o)
	}
	d.Resolve = func(artifact string, ctx *Context) (string, error) {
		return strings.Join(Ext[*params](ctx).names, ","), nil
	}
	id := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	c, err := New(d, WithIDGenerator(func() uuid.UUID { return id }))
	s.Require().NoError(err)

	res, err := c.Compile(M{{Key: "a", Value: sc(1)}, {Key: "b", Value: sc(2)}})
	s.NoError(err)
	s.Equal("a,b", res)

	res, err = c.Compile(M{{Key: "c", Value: sc(1)}})
	s.NoError(err)
	s.Equal("c", res)
	s.Equal(2, calls)

	s.Nil(Ext[*params](&Context{Ext: "other"}))
}

func (s *CompilerTestSuite) TestSkip() {
	d := traceDialect()
	d.Operators[domain.OpExists] = func(Operation[string]) (string, error) {
		return "", domain.ErrSkip
	}
	c, err := New(d)
	s.Require().NoError(err)
	res, err := c.Compile(M{{Key: "a", Value: M{{Key: "$exists", Value: sc(true)}, {Key: "$gt", Value: sc(1)}}}})
	s.NoError(err)
	s.Equal("$and(|$and(a|$gt(a|1)))", res)
}

func (s *CompilerTestSuite) TestOperatorErrorsAbort() {
	errBoom := errors.New("boom")
	d := traceDialect()
	d.Operators[domain.OpLike] = func(Operation[string]) (string, error) {
		return "", errBoom
	}
	c, err := New(d)
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "$like", Value: sc("x")}}}})
	s.ErrorIs(err, errBoom)
}

func (s *CompilerTestSuite) TestReject() {
	errCustom := errors.New("custom")
	d := traceDialect()
	var got domain.ValidationError
	d.Reject = func(verr domain.ValidationError, _ *Context) error {
		got = verr
		return fmt.Errorf("%w: %s", errCustom, verr.Path)
	}
	c, err := New(d)
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "$gt", Value: sc(1)}})
	s.ErrorIs(err, errCustom)
	s.EqualError(err, "custom: $.$gt")
	s.Equal(domain.PropertyNotFound, got.Kind)

	// errors from operator functions are not validation errors
	errBoom := errors.New("boom")
	d.Operators[domain.OpEq] = func(Operation[string]) (string, error) { return "", errBoom }
	c, err = New(d)
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "a", Value: sc(1)}})
	s.ErrorIs(err, errBoom)
	s.NotErrorIs(err, errCustom)

	// a hook returning nil keeps the validation error
	d = traceDialect()
	d.Reject = func(domain.ValidationError, *Context) error { return nil }
	c, err = New(d)
	s.Require().NoError(err)
	res, err := c.Compile(5)
	s.assertRejected(err, domain.UnexpectedValue, "$")
	s.Empty(res)
	_, err = c.Compile(M{{Key: "a", Value: M{{Key: "$gt", Value: sc(true)}}}})
	s.assertRejected(err, domain.UnexpectedValue, "$.a.$gt")
}

func (s *CompilerTestSuite) TestObserver() {
	o := new(observerMock)
	o.On("Observe", "trace", mock.AnythingOfType("time.Duration"), nil).Once()
	o.On("Observe", "trace", mock.AnythingOfType("time.Duration"), mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrUnexpectedValue)
	})).Once()

	c, err := New(traceDialect(), WithObserver(o))
	s.Require().NoError(err)
	_, err = c.Compile(M{})
	s.NoError(err)
	_, err = c.Compile(1)
	s.Error(err)
	o.AssertExpectations(s.T())

	// rejections rewritten by the dialect still reach the observer as
	// validation errors
	errCustom := errors.New("custom")
	o = new(observerMock)
	o.On("Observe", "trace", mock.AnythingOfType("time.Duration"), mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrPropertyNotFound) && !errors.Is(err, errCustom)
	})).Once()
	d := traceDialect()
	d.Reject = func(domain.ValidationError, *Context) error { return errCustom }
	c, err = New(d, WithObserver(o))
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "$gt", Value: sc(1)}})
	s.ErrorIs(err, errCustom)
	o.AssertExpectations(s.T())
}

func (s *CompilerTestSuite) TestLogger() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := New(traceDialect(), WithLogger(logger))
	s.Require().NoError(err)
	_, err = c.Compile(M{{Key: "$gt", Value: sc(1)}})
	s.Error(err)
	s.Contains(buf.String(), "compiling query")
	s.Contains(buf.String(), "dialect=trace")
	s.Contains(buf.String(), "kind=PropertyNotFound")
	s.Equal("trace", c.Name())
}

func (s *CompilerTestSuite) TestConcurrentUse() {
	var wg sync.WaitGroup
	results := make([]string, 32)
	for n := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.c.Compile(M{{Key: "a", Value: sc(n)}})
			if err == nil {
				results[n] = res
			}
		}()
	}
	wg.Wait()
	for n, res := range results {
		s.Equal(fmt.Sprintf("$and(|$eq(a|%d))", n), res)
	}
}

func TestCompilerTestSuite(t *testing.T) {
	suite.Run(t, new(CompilerTestSuite))
}
