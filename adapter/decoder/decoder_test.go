package decoder

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

type DecoderTestSuite struct {
	suite.Suite
	d *Decoder
}

func (s *DecoderTestSuite) SetupTest() {
	s.d = NewDecoder().(*Decoder)
}

type person struct {
	Name string `criterium:"name"`
	Age  int    `criterium:"age"`
	Tags []string
}

func (s *DecoderTestSuite) TestDecodeMaps() {
	var people []person
	src := []any{
		map[string]any{"name": "John", "age": 30, "Tags": []any{"a"}},
		map[string]any{"name": "Jane", "age": 25.0},
	}
	s.NoError(s.d.Decode(src, &people))
	s.Equal([]person{
		{Name: "John", Age: 30, Tags: []string{"a"}},
		{Name: "Jane", Age: 25},
	}, people)
}

func (s *DecoderTestSuite) TestDecodeNodes() {
	var p person
	src := domain.Mapping{
		{Key: "name", Value: domain.Scalar{Value: "Ann"}},
		{Key: "Tags", Value: domain.Sequence{domain.Scalar{Value: "x"}}},
	}
	s.NoError(s.d.Decode(src, &p))
	s.Equal(person{Name: "Ann", Tags: []string{"x"}}, p)

	var m map[string]any
	s.NoError(s.d.Decode(map[string]any{"inner": domain.Scalar{Value: 1}}, &m))
	s.Equal(map[string]any{"inner": 1}, m)
}

func (s *DecoderTestSuite) TestErrors() {
	s.ErrorIs(s.d.Decode(1, nil), domain.ErrTargetNil)

	var p person
	s.ErrorIs(s.d.Decode(1, p), domain.ErrNonPointer)

	err := s.d.Decode("not a person", &p)
	s.ErrorAs(err, &domain.ErrDecode{})
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}
