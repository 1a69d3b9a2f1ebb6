package parser

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

// lexer scans rule source into tokens, tracking line and column for every
// token. Newlines are significant (statement separators) and are emitted
// as tokens; consecutive newlines collapse into one.
type lexer struct {
	src  []byte
	name string
	pos  int
	line int
	col  int
}

func newLexer(src []byte, name string) *lexer {
	return &lexer{src: src, name: name, line: 1, col: 1}
}

// lex scans the whole source. The returned slice always ends with an EOF
// token. Lexical errors abort the scan.
func lex(src []byte, name string) ([]token, error) {
	l := newLexer(src, name)
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		// Collapse consecutive newlines.
		if tok.kind == tokenNewline && len(tokens) > 0 && tokens[len(tokens)-1].kind == tokenNewline {
			continue
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) location() ast.Location {
	return ast.Location{File: l.name, Line: l.line, Column: l.col}
}

func (l *lexer) errorf(loc ast.Location, format string, args ...interface{}) error {
	return rerrors.WithContext(&rerrors.ParseError{
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}, l.src)
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) next() (token, error) {
	// Skip horizontal whitespace and comments.
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case '#':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			goto scan
		}
	}
scan:
	loc := l.location()
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, loc: loc}, nil
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return token{kind: tokenNewline, loc: loc}, nil
	case isIdentStart(ch):
		return l.scanIdent(loc), nil
	case ch >= '0' && ch <= '9':
		return l.scanNumber(loc)
	case ch == '-' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9':
		return l.scanNumber(loc)
	case ch == '"' || ch == '\'':
		return l.scanString(loc)
	case ch == '/':
		return l.scanRegex(loc)
	}

	l.advance()
	switch ch {
	case '{':
		return token{kind: tokenLBrace, loc: loc}, nil
	case '}':
		return token{kind: tokenRBrace, loc: loc}, nil
	case '(':
		return token{kind: tokenLParen, loc: loc}, nil
	case ')':
		return token{kind: tokenRParen, loc: loc}, nil
	case '[':
		return token{kind: tokenLBracket, loc: loc}, nil
	case ']':
		return token{kind: tokenRBracket, loc: loc}, nil
	case ',':
		return token{kind: tokenComma, loc: loc}, nil
	case '*':
		return token{kind: tokenStar, loc: loc}, nil
	case '.':
		if l.peek() == '.' {
			l.advance()
			return token{kind: tokenDotDot, loc: loc}, nil
		}
		return token{kind: tokenDot, loc: loc}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenEq, loc: loc}, nil
		}
		return token{}, l.errorf(loc, "unexpected '='; comparison uses '=='")
	case '!':
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenNe, loc: loc}, nil
		}
		return token{kind: tokenBang, loc: loc}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenGe, loc: loc}, nil
		}
		return token{kind: tokenGt, loc: loc}, nil
	case '<':
		if l.peek() == '<' {
			l.advance()
			return l.scanMessage(loc)
		}
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenLe, loc: loc}, nil
		}
		return token{kind: tokenLt, loc: loc}, nil
	}

	return token{}, l.errorf(loc, "unexpected character %q", string(ch))
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '-'
}

func (l *lexer) scanIdent(loc ast.Location) token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	return token{kind: tokenIdent, text: string(l.src[start:l.pos]), loc: loc}
}

func (l *lexer) scanNumber(loc ast.Location) (token, error) {
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	kind := tokenInt
	for l.pos < len(l.src) {
		ch := l.peek()
		if ch >= '0' && ch <= '9' {
			l.advance()
			continue
		}
		// A '.' is part of the number only when followed by a digit;
		// otherwise it starts a path segment (e.g. "items[0].name").
		if ch == '.' && kind == tokenInt && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
			kind = tokenFloat
			l.advance()
			continue
		}
		if (ch == 'e' || ch == 'E') && kind == tokenFloat {
			kind = tokenFloat
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			continue
		}
		break
	}
	return token{kind: kind, text: string(l.src[start:l.pos]), loc: loc}, nil
}

func (l *lexer) scanString(loc ast.Location) (token, error) {
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.peek() == '\n' {
			return token{}, l.errorf(loc, "unterminated string literal")
		}
		ch := l.advance()
		if ch == quote {
			return token{kind: tokenString, text: sb.String(), loc: loc}, nil
		}
		if ch == '\\' {
			if l.pos >= len(l.src) {
				return token{}, l.errorf(loc, "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"', '\'', '/':
				sb.WriteByte(esc)
			default:
				return token{}, l.errorf(loc, "invalid escape sequence \\%s", string(esc))
			}
			continue
		}
		sb.WriteByte(ch)
	}
}

// scanRegex scans a /pattern/ literal. The pattern is kept raw; the
// parser compiles it so compile failures point at the literal.
func (l *lexer) scanRegex(loc ast.Location) (token, error) {
	l.advance() // opening '/'
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.peek() == '\n' {
			return token{}, l.errorf(loc, "unterminated regex literal")
		}
		ch := l.advance()
		if ch == '/' {
			return token{kind: tokenRegex, text: sb.String(), loc: loc}, nil
		}
		if ch == '\\' && l.peek() == '/' {
			sb.WriteByte(l.advance())
			continue
		}
		sb.WriteByte(ch)
	}
}

// scanMessage scans a << ... >> custom message, trimming surrounding
// whitespace. Messages may span multiple lines.
func (l *lexer) scanMessage(loc ast.Location) (token, error) {
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(loc, "unterminated message: expected '>>'")
		}
		if l.peek() == '>' && l.peekAt(1) == '>' {
			l.advance()
			l.advance()
			return token{kind: tokenMessage, text: strings.TrimSpace(sb.String()), loc: loc}, nil
		}
		sb.WriteByte(l.advance())
	}
}
