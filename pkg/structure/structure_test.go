package structure

import (
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StructureTestSuite struct {
	suite.Suite
}

type kv struct {
	K string
	V any
}

func collect2(s *StructureTestSuite, obj any) []kv {
	seq, l, err := Seq2(obj)
	s.Require().NoError(err)
	var res []kv
	for k, v := range seq {
		res = append(res, kv{k, v})
	}
	s.Len(res, l)
	return res
}

func (s *StructureTestSuite) TestSeq2MapsAreSorted() {
	testCases := []any{
		map[string]any{"b": 2, "a": 1, "c": 3},
		map[string]int{"c": 3, "a": 1, "b": 2},
		&map[string]int{"c": 3, "a": 1, "b": 2},
		map[string]int16{"c": 3, "a": 1, "b": 2},
	}
	for _, tc := range testCases {
		res := collect2(s, tc)
		keys := make([]string, len(res))
		for n, r := range res {
			keys[n] = r.K
		}
		s.Equal([]string{"a", "b", "c"}, keys, "%T", tc)
	}
}

func (s *StructureTestSuite) TestSeq2Struct() {
	type inner struct{ X int }
	obj := struct {
		Zeta   string
		Alpha  int `criterium:"alpha"`
		Hidden int `criterium:"-"`
		Empty  []int `criterium:",omitempty"`
		Zero   int   `criterium:"zero,omitzero"`
		Inner  inner
		priv   int
	}{Zeta: "z", Alpha: 1, Hidden: 2, Inner: inner{X: 3}, priv: 4}

	s.Equal([]kv{
		{"Zeta", "z"},
		{"alpha", 1},
		{"Inner", inner{X: 3}},
	}, collect2(s, obj))
	s.Equal(collect2(s, obj), collect2(s, &obj))
}

func (s *StructureTestSuite) TestSeq2StopsEarly() {
	seq, _, err := Seq2(map[string]int{"a": 1, "b": 2})
	s.Require().NoError(err)
	count := 0
	for range seq {
		count++
		break
	}
	s.Equal(1, count)
}

func (s *StructureTestSuite) TestSeq2Errors() {
	_, _, err := Seq2(nil)
	s.ErrorIs(err, ErrNilObj)

	var ptr *struct{ A int }
	_, _, err = Seq2(ptr)
	s.ErrorIs(err, ErrNilObj)

	for _, v := range []any{1, "a", true, time.Now(), []any{}, map[int]int{}} {
		_, _, err = Seq2(v)
		s.ErrorAs(err, &ErrorNonObject{}, "%T", v)
	}
}

func (s *StructureTestSuite) TestSeq() {
	testCases := []any{
		[]any{1, "a"},
		[]string{"a", "b"},
		[]int16{1, 2},
		[2]int{1, 2},
		&[]int{1, 2},
	}
	for _, tc := range testCases {
		seq, l, err := Seq(tc)
		s.Require().NoError(err)
		res := slices.Collect(seq)
		s.Len(res, l)
		s.Len(res, 2)
	}

	_, _, err := Seq(nil)
	s.ErrorIs(err, ErrNilObj)
	_, _, err = Seq([]byte("ab"))
	s.ErrorAs(err, &ErrorNonList{})
	_, _, err = Seq(map[string]any{})
	s.ErrorAs(err, &ErrorNonList{})
}

func (s *StructureTestSuite) TestIsObjectAndIsList() {
	s.True(IsObject(map[string]any{}))
	s.True(IsObject(struct{}{}))
	s.True(IsObject(&struct{}{}))
	s.False(IsObject(map[int]any{}))
	s.False(IsObject(time.Now()))
	s.False(IsObject(nil))

	s.True(IsList([]any{}))
	s.True(IsList([3]int{}))
	s.False(IsList([]byte{}))
	s.False(IsList("abc"))
	s.False(IsList(nil))
}

func (s *StructureTestSuite) TestAsInteger() {
	n, ok := AsInteger(int8(3))
	s.True(ok)
	s.Equal(3, n)
	n, ok = AsInteger(4.0)
	s.True(ok)
	s.Equal(4, n)
	_, ok = AsInteger(4.5)
	s.False(ok)
	_, ok = AsInteger("4")
	s.False(ok)
}

func (s *StructureTestSuite) TestToNumber() {
	testCases := []struct {
		value any
		num   float64
		ok    bool
	}{
		{value: 3, num: 3, ok: true},
		{value: uint16(3), num: 3, ok: true},
		{value: float32(1.5), num: 1.5, ok: true},
		{value: json.Number("12.5"), num: 12.5, ok: true},
		{value: "30", num: 30, ok: true},
		{value: " -2e3 ", num: -2000, ok: true},
		{value: time.UnixMilli(1500), num: 1500, ok: true},
		{value: "thirty", ok: false},
		{value: "", ok: false},
		{value: true, ok: false},
		{value: nil, ok: false},
		{value: regexp.MustCompile("a"), ok: false},
	}
	for _, tc := range testCases {
		num, ok := ToNumber(tc.value)
		s.Equal(tc.ok, ok, "%v", tc.value)
		if tc.ok {
			s.Equal(tc.num, num)
		}
	}
}

func (s *StructureTestSuite) TestIsNumeric() {
	s.True(IsNumeric(10))
	s.True(IsNumeric("10"))
	s.True(IsNumeric(time.Now()))
	s.False(IsNumeric(math.NaN()))
	s.False(IsNumeric("NaN"))
	s.False(IsNumeric("inf"))
	s.False(IsNumeric("-Infinity"))
	s.False(IsNumeric(math.Inf(1)))
	s.False(IsNumeric(float32(math.Inf(-1))))
	s.False(IsNumeric(false))
	s.False(IsNumeric(nil))
}

func (s *StructureTestSuite) TestContains() {
	eq := func(a, b int) (bool, error) { return a == b, nil }
	ok, err := Contains([]int{1, 2, 3}, 2, eq)
	s.NoError(err)
	s.True(ok)
	ok, err = Contains([]int{1, 2, 3}, 5, eq)
	s.NoError(err)
	s.False(ok)
}

func TestStructureTestSuite(t *testing.T) {
	suite.Run(t, new(StructureTestSuite))
}
