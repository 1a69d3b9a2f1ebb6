package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValueType tags the literal kind of a Value.
// The rule language has a strong type system with no automatic coercion;
// the one deliberate widening (int vs float) happens in the comparison
// layer, never here.
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeInt    ValueType = "int"
	ValueTypeFloat  ValueType = "float"
	ValueTypeBool   ValueType = "bool"
	ValueTypeNull   ValueType = "null"
	ValueTypeList   ValueType = "list"
	ValueTypeRegex  ValueType = "regex"
)

// Value is a literal appearing on the right-hand side of a clause:
// the expected value a resolved document node is compared against.
type Value struct {
	Type     ValueType
	Str      string         // set for String
	Int      int64          // set for Int
	Float    float64        // set for Float
	Bool     bool           // set for Bool
	List     []*Value       // set for List
	Regex    *regexp.Regexp // set for Regex, compiled at parse time
	Location Location
}

// StringValue returns a string literal Value.
func StringValue(s string) *Value { return &Value{Type: ValueTypeString, Str: s} }

// IntValue returns an integer literal Value.
func IntValue(i int64) *Value { return &Value{Type: ValueTypeInt, Int: i} }

// FloatValue returns a float literal Value.
func FloatValue(f float64) *Value { return &Value{Type: ValueTypeFloat, Float: f} }

// BoolValue returns a boolean literal Value.
func BoolValue(b bool) *Value { return &Value{Type: ValueTypeBool, Bool: b} }

// NullValue returns the null literal Value.
func NullValue() *Value { return &Value{Type: ValueTypeNull} }

// String renders the value the way it would appear in rule source.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.Type {
	case ValueTypeString:
		return strconv.Quote(v.Str)
	case ValueTypeInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueTypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueTypeBool:
		return strconv.FormatBool(v.Bool)
	case ValueTypeNull:
		return "null"
	case ValueTypeRegex:
		return "/" + v.Regex.String() + "/"
	case ValueTypeList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}
