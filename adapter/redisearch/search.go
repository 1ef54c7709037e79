package redisearch

import (
	"strconv"

	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// DefaultPageSize is the page size used when a query skips results without
// limiting them.
const DefaultPageSize = 10

// SortBy is the SORTBY argument of FT.SEARCH.
type SortBy struct {
	Field string
	Desc  bool
}

// Limit is the LIMIT argument of FT.SEARCH.
type Limit struct {
	Offset int64
	Num    int64
}

// Command is a complete FT.SEARCH call.
type Command struct {
	Index  string
	Query  Query
	SortBy *SortBy
	Limit  *Limit
}

// Args returns the command and its arguments, ready to be sent to redis.
func (c Command) Args() []string {
	text := c.Query.Text
	if text == "" {
		text = "*"
	}
	args := []string{"FT.SEARCH", c.Index, text}
	if len(c.Query.Params) > 0 {
		args = append(args, "PARAMS", strconv.Itoa(len(c.Query.Params)*2))
		for _, p := range c.Query.Params {
			args = append(args, p.Name, p.Value)
		}
	}
	if c.SortBy != nil {
		dir := "ASC"
		if c.SortBy.Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", c.SortBy.Field, dir)
	}
	if c.Limit != nil {
		args = append(args, "LIMIT",
			strconv.FormatInt(c.Limit.Offset, 10),
			strconv.FormatInt(c.Limit.Num, 10),
		)
	}
	return append(args, "DIALECT", "2")
}

// Searcher builds FT.SEARCH commands from queries.
type Searcher struct {
	compiler     *compiler.Compiler[string, Query]
	compilerOpts []compiler.Option
}

// NewSearcher returns a new Searcher.
func NewSearcher(opts ...Option) (*Searcher, error) {
	s := Searcher{}
	for _, opt := range opts {
		opt(&s)
	}
	c, err := compiler.New(NewDialect(), s.compilerOpts...)
	if err != nil {
		return nil, err
	}
	s.compiler = c
	return &s, nil
}

// Compile compiles the filter query into a RediSearch query.
func (s *Searcher) Compile(query any) (Query, error) {
	return s.compiler.Compile(query)
}

// Search builds the search of query in index. Root keys $sort, $skip and
// $limit are read as result modifiers, and opts override them. RediSearch
// sorts by a single field, so only the first sort criterion is used.
func (s *Searcher) Search(index string, query any, opts ...domain.QueryOption) (Command, error) {
	filter, options, err := docparser.Split(docparser.FromValue(query))
	if err != nil {
		return Command{}, err
	}
	options = options.Apply(opts...)

	q, err := s.Compile(filter)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Index: index, Query: q}
	if len(options.Sort) > 0 {
		cmd.SortBy = &SortBy{
			Field: options.Sort[0].Key,
			Desc:  options.Sort[0].Order < 0,
		}
	}
	if options.Skip > 0 || options.Limit > 0 {
		cmd.Limit = &Limit{Offset: options.Skip, Num: options.Limit}
		if cmd.Limit.Num == 0 {
			cmd.Limit.Num = DefaultPageSize
		}
	}
	return cmd, nil
}
