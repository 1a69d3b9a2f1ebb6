package parser

import "mercator-hq/callisto/pkg/rules/ast"

// tokenKind tags a lexical token.
type tokenKind string

const (
	tokenIdent   tokenKind = "identifier"
	tokenInt     tokenKind = "integer"
	tokenFloat   tokenKind = "float"
	tokenString  tokenKind = "string"
	tokenRegex   tokenKind = "regex"
	tokenMessage tokenKind = "message" // << ... >>
	tokenNewline tokenKind = "newline"
	tokenEOF     tokenKind = "end of input"

	tokenLBrace   tokenKind = "{"
	tokenRBrace   tokenKind = "}"
	tokenLParen   tokenKind = "("
	tokenRParen   tokenKind = ")"
	tokenLBracket tokenKind = "["
	tokenRBracket tokenKind = "]"
	tokenDot      tokenKind = "."
	tokenDotDot   tokenKind = ".."
	tokenComma    tokenKind = ","
	tokenStar     tokenKind = "*"

	tokenEq   tokenKind = "=="
	tokenNe   tokenKind = "!="
	tokenGt   tokenKind = ">"
	tokenGe   tokenKind = ">="
	tokenLt   tokenKind = "<"
	tokenLe   tokenKind = "<="
	tokenBang tokenKind = "!"
)

// token is a single lexical unit with its source location.
type token struct {
	kind tokenKind
	text string // raw text for identifiers, literals, and messages
	loc  ast.Location
}

func (t token) is(kind tokenKind) bool { return t.kind == kind }

// isKeyword reports whether the token is the given bare-word keyword.
// Keywords are not reserved by the lexer; the parser interprets
// identifiers in position, so "rule", "in" etc. remain usable as mapping
// keys inside paths.
func (t token) isKeyword(words ...string) bool {
	if t.kind != tokenIdent {
		return false
	}
	for _, w := range words {
		if t.text == w {
			return true
		}
	}
	return false
}
