package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

// Parser parses rule source into an ast.RuleSet.
type Parser struct {
	maxDepth int // maximum expression nesting depth
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return &Parser{maxDepth: 50}
}

// WithMaxDepth sets the maximum expression nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses rule source. The name labels the source in locations and
// diagnostics. On failure the returned error is a *errors.ParseError, or
// a *errors.ErrorList when multiple independent problems were found.
func (p *Parser) Parse(content []byte, name string) (*ast.RuleSet, error) {
	tokens, err := lex(content, name)
	if err != nil {
		return nil, err
	}
	s := &state{
		tokens:   tokens,
		src:      content,
		maxDepth: p.maxDepth,
		errs:     rerrors.NewErrorList(),
	}
	rules := s.parseFile()
	if err := s.errs.ToError(); err != nil {
		return nil, err
	}
	return ast.NewRuleSet(name, rules), nil
}

// Parse parses rule source with default configuration.
func Parse(content []byte, name string) (*ast.RuleSet, error) {
	return NewParser().Parse(content, name)
}

// state holds the token cursor for one parse.
type state struct {
	tokens   []token
	pos      int
	src      []byte
	maxDepth int
	errs     *rerrors.ErrorList
}

func (s *state) cur() token { return s.tokens[s.pos] }

func (s *state) peekNext() token {
	if s.pos+1 < len(s.tokens) {
		return s.tokens[s.pos+1]
	}
	return s.tokens[len(s.tokens)-1] // EOF
}

func (s *state) advance() token {
	tok := s.tokens[s.pos]
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

func (s *state) skipNewlines() {
	for s.cur().is(tokenNewline) {
		s.advance()
	}
}

func (s *state) errorAt(loc ast.Location, message, suggestion string) *rerrors.ParseError {
	return rerrors.WithContext(&rerrors.ParseError{
		Location:   loc,
		Message:    message,
		Suggestion: suggestion,
	}, s.src)
}

// syncStatement skips to the next statement boundary after an error.
func (s *state) syncStatement() {
	for !s.cur().is(tokenNewline) && !s.cur().is(tokenRBrace) && !s.cur().is(tokenEOF) {
		s.advance()
	}
}

// syncRule skips to the next top-level "rule" keyword after an error,
// tracking brace depth so a "rule" key inside a block does not stop it.
func (s *state) syncRule() {
	depth := 0
	for !s.cur().is(tokenEOF) {
		switch {
		case s.cur().is(tokenLBrace):
			depth++
		case s.cur().is(tokenRBrace):
			if depth > 0 {
				depth--
			}
		case depth == 0 && s.cur().isKeyword("rule"):
			return
		}
		s.advance()
	}
}

func (s *state) parseFile() []*ast.Rule {
	var rules []*ast.Rule
	seen := make(map[string]ast.Location)

	s.skipNewlines()
	for !s.cur().is(tokenEOF) {
		if !s.cur().isKeyword("rule") {
			s.errs.Add(s.errorAt(s.cur().loc,
				fmt.Sprintf("expected 'rule', found %s", describe(s.cur())),
				"top level declarations start with 'rule <name> { ... }'"))
			s.advance()
			s.syncRule()
			continue
		}
		rule, ok := s.parseRule()
		if !ok {
			s.syncRule()
			continue
		}
		if prev, dup := seen[rule.Name]; dup {
			s.errs.Add(s.errorAt(rule.Location,
				fmt.Sprintf("rule %q already declared at %s", rule.Name, prev.String()),
				"rule names must be unique within a rule set"))
			s.skipNewlines()
			continue
		}
		seen[rule.Name] = rule.Location
		rules = append(rules, rule)
		s.skipNewlines()
	}
	return rules
}

func (s *state) parseRule() (*ast.Rule, bool) {
	ruleTok := s.advance() // 'rule'

	if !s.cur().is(tokenIdent) {
		s.errs.Add(s.errorAt(s.cur().loc,
			fmt.Sprintf("expected rule name, found %s", describe(s.cur())), ""))
		return nil, false
	}
	nameTok := s.advance()
	rule := &ast.Rule{Name: nameTok.text, Location: ruleTok.loc}

	if s.cur().isKeyword("when") {
		s.advance()
		when, err := s.parseExpr(0)
		if err != nil {
			s.errs.Add(err)
			return nil, false
		}
		rule.When = when
	}

	if !s.cur().is(tokenLBrace) {
		s.errs.Add(s.errorAt(s.cur().loc,
			fmt.Sprintf("expected '{' to open rule %q, found %s", rule.Name, describe(s.cur())), ""))
		return nil, false
	}
	s.advance()
	s.skipNewlines()

	for !s.cur().is(tokenRBrace) && !s.cur().is(tokenEOF) {
		stmt, err := s.parseExpr(0)
		if err != nil {
			s.errs.Add(err)
			s.syncStatement()
			s.skipNewlines()
			continue
		}
		rule.Statements = append(rule.Statements, stmt)

		if !s.cur().is(tokenNewline) && !s.cur().is(tokenRBrace) {
			s.errs.Add(s.errorAt(s.cur().loc,
				fmt.Sprintf("unexpected %s after statement", describe(s.cur())),
				"statements are separated by newlines"))
			s.syncStatement()
		}
		s.skipNewlines()
	}

	if !s.cur().is(tokenRBrace) {
		s.errs.Add(s.errorAt(ruleTok.loc,
			fmt.Sprintf("rule %q is missing a closing '}'", rule.Name), ""))
		return nil, false
	}
	s.advance()
	return rule, true
}

// parseExpr parses a full expression. Precedence, loosest first:
// or, and, not, primary. Ties break left-to-right.
func (s *state) parseExpr(depth int) (*ast.Expr, error) {
	return s.parseOr(depth)
}

func (s *state) parseOr(depth int) (*ast.Expr, error) {
	left, err := s.parseAnd(depth)
	if err != nil {
		return nil, err
	}
	for s.cur().isKeyword("or", "OR") {
		s.advance()
		s.skipNewlines()
		right, err := s.parseAnd(depth)
		if err != nil {
			return nil, err
		}
		if left.Kind == ast.ExprOr {
			left.Children = append(left.Children, right)
		} else {
			or := ast.OrExpr(left, right)
			or.Location = left.Location
			left = or
		}
	}
	return left, nil
}

func (s *state) parseAnd(depth int) (*ast.Expr, error) {
	left, err := s.parseNot(depth)
	if err != nil {
		return nil, err
	}
	for s.cur().isKeyword("and", "AND") {
		s.advance()
		s.skipNewlines()
		right, err := s.parseNot(depth)
		if err != nil {
			return nil, err
		}
		if left.Kind == ast.ExprAnd {
			left.Children = append(left.Children, right)
		} else {
			and := ast.AndExpr(left, right)
			and.Location = left.Location
			left = and
		}
	}
	return left, nil
}

func (s *state) parseNot(depth int) (*ast.Expr, error) {
	if depth > s.maxDepth {
		return nil, s.errorAt(s.cur().loc,
			fmt.Sprintf("expression nesting exceeds %d levels", s.maxDepth), "")
	}
	if s.cur().isKeyword("not", "NOT") || s.cur().is(tokenBang) {
		tok := s.advance()
		child, err := s.parseNot(depth + 1)
		if err != nil {
			return nil, err
		}
		not := ast.NotExpr(child)
		not.Location = tok.loc
		return not, nil
	}
	return s.parsePrimary(depth)
}

func (s *state) parsePrimary(depth int) (*ast.Expr, error) {
	tok := s.cur()
	switch {
	case tok.is(tokenLParen):
		s.advance()
		s.skipNewlines()
		expr, err := s.parseExpr(depth + 1)
		if err != nil {
			return nil, err
		}
		s.skipNewlines()
		if !s.cur().is(tokenRParen) {
			return nil, s.errorAt(s.cur().loc,
				fmt.Sprintf("expected ')', found %s", describe(s.cur())), "")
		}
		s.advance()
		return expr, nil

	case tok.isKeyword("some") && startsPath(s.peekNext()):
		s.advance()
		return s.parseClause(depth, true, tok.loc)

	case tok.is(tokenIdent) && isRuleRef(s.peekNext()):
		s.advance()
		return &ast.Expr{Kind: ast.ExprRef, RefName: tok.text, Location: tok.loc}, nil

	case startsPath(tok):
		return s.parseClause(depth, false, tok.loc)
	}

	return nil, s.errorAt(tok.loc,
		fmt.Sprintf("expected a clause, rule reference, or '(', found %s", describe(tok)), "")
}

// startsPath reports whether the token can begin a path expression.
func startsPath(tok token) bool {
	return tok.is(tokenIdent) || tok.is(tokenString) || tok.is(tokenStar) || tok.is(tokenLBracket)
}

// isRuleRef reports whether the token following a bare identifier leaves
// it a rule reference rather than the head of a clause path.
func isRuleRef(next token) bool {
	switch next.kind {
	case tokenDot, tokenDotDot, tokenLBracket,
		tokenEq, tokenNe, tokenGt, tokenGe, tokenLt, tokenLe, tokenBang:
		return false
	case tokenIdent:
		return !isComparatorWord(next.text)
	}
	return true
}

func isComparatorWord(word string) bool {
	switch word {
	case "in", "matches", "exists", "empty",
		"is_string", "is_int", "is_bool", "is_list", "is_map":
		return true
	}
	return false
}

func (s *state) parseClause(depth int, some bool, loc ast.Location) (*ast.Expr, error) {
	path, err := s.parsePath()
	if err != nil {
		return nil, err
	}
	clause := &ast.Clause{Path: path, Some: some, Location: loc}

	opTok := s.cur()
	switch {
	case opTok.is(tokenEq):
		clause.Op = ast.OpEqual
		s.advance()
	case opTok.is(tokenNe):
		clause.Op = ast.OpNotEqual
		s.advance()
	case opTok.is(tokenGt):
		clause.Op = ast.OpGreaterThan
		s.advance()
	case opTok.is(tokenGe):
		clause.Op = ast.OpGreaterEqual
		s.advance()
	case opTok.is(tokenLt):
		clause.Op = ast.OpLessThan
		s.advance()
	case opTok.is(tokenLe):
		clause.Op = ast.OpLessEqual
		s.advance()
	case opTok.is(tokenBang):
		s.advance()
		unary, err := s.parseUnaryOp()
		if err != nil {
			return nil, err
		}
		clause.Op = unary
		clause.Negated = true
	case opTok.is(tokenIdent) && isComparatorWord(opTok.text):
		switch opTok.text {
		case "in":
			clause.Op = ast.OpIn
			s.advance()
		case "matches":
			clause.Op = ast.OpMatches
			s.advance()
		default:
			unary, err := s.parseUnaryOp()
			if err != nil {
				return nil, err
			}
			clause.Op = unary
		}
	default:
		return nil, s.errorAt(opTok.loc,
			fmt.Sprintf("expected comparator after path %q, found %s", path.String(), describe(opTok)),
			"clauses look like 'path == value' or 'path exists'")
	}

	if clause.Op.IsBinary() {
		value, err := s.parseValue(depth)
		if err != nil {
			return nil, err
		}
		clause.Expected = value
	}

	if s.cur().is(tokenMessage) {
		clause.Message = s.advance().text
	}

	return ast.ClauseExpr(clause), nil
}

func (s *state) parseUnaryOp() (ast.Operator, error) {
	tok := s.cur()
	if tok.is(tokenIdent) {
		switch tok.text {
		case "exists":
			s.advance()
			return ast.OpExists, nil
		case "empty":
			s.advance()
			return ast.OpEmpty, nil
		case "is_string":
			s.advance()
			return ast.OpIsString, nil
		case "is_int":
			s.advance()
			return ast.OpIsInt, nil
		case "is_bool":
			s.advance()
			return ast.OpIsBool, nil
		case "is_list":
			s.advance()
			return ast.OpIsList, nil
		case "is_map":
			s.advance()
			return ast.OpIsMap, nil
		}
	}
	return "", s.errorAt(tok.loc,
		fmt.Sprintf("expected unary comparator after '!', found %s", describe(tok)),
		"negated comparators: !exists, !empty, !is_string, !is_int, !is_bool, !is_list, !is_map")
}

func (s *state) parsePath() (*ast.Path, error) {
	path := &ast.Path{Location: s.cur().loc}

	if err := s.parseSegment(path); err != nil {
		return nil, err
	}
	for {
		switch s.cur().kind {
		case tokenDot:
			s.advance()
			if err := s.parseSegment(path); err != nil {
				return nil, err
			}
		case tokenDotDot:
			s.advance()
			path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentDescend})
			if err := s.parseSegment(path); err != nil {
				return nil, err
			}
		case tokenLBracket:
			if err := s.parseBracket(path); err != nil {
				return nil, err
			}
		default:
			return path, nil
		}
	}
}

func (s *state) parseSegment(path *ast.Path) error {
	tok := s.cur()
	switch tok.kind {
	case tokenIdent, tokenString:
		s.advance()
		path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentKey, Key: tok.text})
		return nil
	case tokenStar:
		s.advance()
		path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentAnyValue})
		return nil
	case tokenLBracket:
		return s.parseBracket(path)
	}
	return s.errorAt(tok.loc,
		fmt.Sprintf("expected path segment, found %s", describe(tok)),
		"path segments are keys, '*', '[n]', '[*]', or quoted keys")
}

func (s *state) parseBracket(path *ast.Path) error {
	s.advance() // '['
	tok := s.cur()
	switch tok.kind {
	case tokenInt:
		idx, err := strconv.Atoi(tok.text)
		if err != nil {
			return s.errorAt(tok.loc, fmt.Sprintf("invalid index %q", tok.text), "")
		}
		s.advance()
		path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentIndex, Index: idx})
	case tokenStar:
		s.advance()
		path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentAnyIndex})
	case tokenString:
		s.advance()
		path.Segments = append(path.Segments, ast.Segment{Kind: ast.SegmentKey, Key: tok.text})
	default:
		return s.errorAt(tok.loc,
			fmt.Sprintf("expected index, '*', or quoted key inside brackets, found %s", describe(tok)), "")
	}
	if !s.cur().is(tokenRBracket) {
		return s.errorAt(s.cur().loc,
			fmt.Sprintf("expected ']', found %s", describe(s.cur())), "")
	}
	s.advance()
	return nil
}

func (s *state) parseValue(depth int) (*ast.Value, error) {
	if depth > s.maxDepth {
		return nil, s.errorAt(s.cur().loc,
			fmt.Sprintf("value nesting exceeds %d levels", s.maxDepth), "")
	}
	tok := s.cur()
	switch tok.kind {
	case tokenString:
		s.advance()
		v := ast.StringValue(tok.text)
		v.Location = tok.loc
		return v, nil
	case tokenInt:
		i, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, s.errorAt(tok.loc, fmt.Sprintf("invalid integer %q", tok.text), "")
		}
		s.advance()
		v := ast.IntValue(i)
		v.Location = tok.loc
		return v, nil
	case tokenFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, s.errorAt(tok.loc, fmt.Sprintf("invalid float %q", tok.text), "")
		}
		s.advance()
		v := ast.FloatValue(f)
		v.Location = tok.loc
		return v, nil
	case tokenRegex:
		re, err := regexp.Compile(tok.text)
		if err != nil {
			return nil, s.errorAt(tok.loc,
				fmt.Sprintf("invalid regex /%s/: %v", tok.text, err), "")
		}
		s.advance()
		v := &ast.Value{Type: ast.ValueTypeRegex, Regex: re, Location: tok.loc}
		return v, nil
	case tokenIdent:
		switch tok.text {
		case "true":
			s.advance()
			v := ast.BoolValue(true)
			v.Location = tok.loc
			return v, nil
		case "false":
			s.advance()
			v := ast.BoolValue(false)
			v.Location = tok.loc
			return v, nil
		case "null":
			s.advance()
			v := ast.NullValue()
			v.Location = tok.loc
			return v, nil
		}
		return nil, s.errorAt(tok.loc,
			fmt.Sprintf("unexpected identifier %q as value", tok.text),
			"string values must be quoted")
	case tokenLBracket:
		return s.parseListValue(depth, tok.loc)
	}
	return nil, s.errorAt(tok.loc,
		fmt.Sprintf("expected a value, found %s", describe(tok)), "")
}

func (s *state) parseListValue(depth int, loc ast.Location) (*ast.Value, error) {
	s.advance() // '['
	s.skipNewlines()
	list := &ast.Value{Type: ast.ValueTypeList, Location: loc}
	for !s.cur().is(tokenRBracket) {
		item, err := s.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		list.List = append(list.List, item)
		s.skipNewlines()
		if s.cur().is(tokenComma) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if !s.cur().is(tokenRBracket) {
		return nil, s.errorAt(s.cur().loc,
			fmt.Sprintf("expected ']' or ',', found %s", describe(s.cur())), "")
	}
	s.advance()
	return list, nil
}

func describe(tok token) string {
	switch tok.kind {
	case tokenIdent:
		return fmt.Sprintf("identifier %q", tok.text)
	case tokenString:
		return fmt.Sprintf("string %q", tok.text)
	case tokenInt, tokenFloat:
		return fmt.Sprintf("number %q", tok.text)
	case tokenNewline:
		return "end of line"
	case tokenEOF:
		return "end of input"
	default:
		return fmt.Sprintf("%q", string(tok.kind))
	}
}
