package ast

import "strings"

// Operator is a clause comparator. Binary operators compare the resolved
// node against the clause's expected Value; unary operators interrogate
// the node itself and take no right-hand side.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreaterThan  Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLessThan     Operator = "<"
	OpLessEqual    Operator = "<="
	OpIn           Operator = "in"
	OpMatches      Operator = "matches"

	OpExists   Operator = "exists"
	OpEmpty    Operator = "empty"
	OpIsString Operator = "is_string"
	OpIsInt    Operator = "is_int"
	OpIsBool   Operator = "is_bool"
	OpIsList   Operator = "is_list"
	OpIsMap    Operator = "is_map"
)

// IsUnary returns true for operators that take no expected value.
func (o Operator) IsUnary() bool {
	switch o {
	case OpExists, OpEmpty, OpIsString, OpIsInt, OpIsBool, OpIsList, OpIsMap:
		return true
	}
	return false
}

// IsBinary returns true for operators that require an expected value.
func (o Operator) IsBinary() bool { return !o.IsUnary() }

// ExprKind tags the variant of an Expr node.
type ExprKind string

const (
	ExprClause ExprKind = "clause" // path comparator [value]
	ExprAnd    ExprKind = "and"    // all children must pass
	ExprOr     ExprKind = "or"     // any child must pass
	ExprNot    ExprKind = "not"    // inverts a single child
	ExprRef    ExprKind = "ref"    // reference to another rule by name
)

// Expr is a node in a rule's expression tree. Exactly one variant's fields
// are populated, selected by Kind.
type Expr struct {
	Kind ExprKind

	// Clause fields
	Clause *Clause

	// Ref fields
	RefName string

	// And/Or/Not children. Not always has exactly one child.
	Children []*Expr

	Location Location
}

// Clause is a single predicate: a path, a comparator, and (for binary
// comparators) an expected value. A clause may resolve to multiple
// document nodes; Some selects any-must-pass across them instead of the
// default all-must-pass.
type Clause struct {
	Path     *Path
	Op       Operator
	Negated  bool   // negated unary form, e.g. "!exists"
	Expected *Value // nil for unary operators
	Some     bool   // "some" quantifier: any match suffices
	Message  string // custom failure message from "<< ... >>", may be empty
	Location Location
}

// String renders the clause in rule-source syntax for diagnostics.
func (c *Clause) String() string {
	var sb strings.Builder
	if c.Some {
		sb.WriteString("some ")
	}
	sb.WriteString(c.Path.String())
	sb.WriteByte(' ')
	if c.Negated {
		sb.WriteByte('!')
	}
	sb.WriteString(string(c.Op))
	if c.Expected != nil {
		sb.WriteByte(' ')
		sb.WriteString(c.Expected.String())
	}
	return sb.String()
}

// ClauseExpr wraps a Clause into an expression node.
func ClauseExpr(c *Clause) *Expr {
	return &Expr{Kind: ExprClause, Clause: c, Location: c.Location}
}

// AndExpr combines children under all-must-pass semantics.
func AndExpr(children ...*Expr) *Expr { return &Expr{Kind: ExprAnd, Children: children} }

// OrExpr combines children under any-must-pass semantics.
func OrExpr(children ...*Expr) *Expr { return &Expr{Kind: ExprOr, Children: children} }

// NotExpr inverts a single child.
func NotExpr(child *Expr) *Expr {
	return &Expr{Kind: ExprNot, Children: []*Expr{child}, Location: child.Location}
}

// Walk visits the expression tree depth-first, parents before children.
// The walk stops early if fn returns false.
func (e *Expr) Walk(fn func(*Expr) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	for _, child := range e.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
