package graph

import (
	"fmt"
	"strconv"
	"time"
)

// Resource is a stable opaque identifier naming a domain entity, a
// schema-level constant, or a predicate. Resources are immutable and
// never reused.
type Resource string

// LiteralKind declares the kind of a literal value.
type LiteralKind string

const (
	// KindString is free-form text.
	KindString LiteralKind = "string"

	// KindCategory is a value from a closed enumeration.
	KindCategory LiteralKind = "category"

	// KindNumber is a floating-point number.
	KindNumber LiteralKind = "number"

	// KindBool is a boolean.
	KindBool LiteralKind = "bool"

	// KindDate is an RFC 3339 date.
	KindDate LiteralKind = "date"
)

// Literal carries a value and its declared kind. The value is stored in
// canonical string form so literals compare and serialize byte-for-byte.
type Literal struct {
	Kind  LiteralKind
	Value string
}

// String constructs a string literal.
func String(v string) Literal { return Literal{Kind: KindString, Value: v} }

// Category constructs a category literal.
func Category(v string) Literal { return Literal{Kind: KindCategory, Value: v} }

// Number constructs a number literal.
func Number(v float64) Literal {
	return Literal{Kind: KindNumber, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// Bool constructs a boolean literal.
func Bool(v bool) Literal { return Literal{Kind: KindBool, Value: strconv.FormatBool(v)} }

// Date constructs a date literal.
func Date(t time.Time) Literal {
	return Literal{Kind: KindDate, Value: t.UTC().Format(time.RFC3339)}
}

// Float returns the numeric value of a number literal.
func (l Literal) Float() (float64, bool) {
	if l.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(l.Value, 64)
	return f, err == nil
}

// Truth returns the value of a boolean literal.
func (l Literal) Truth() (bool, bool) {
	if l.Kind != KindBool {
		return false, false
	}
	b, err := strconv.ParseBool(l.Value)
	return b, err == nil
}

// Object is the object slot of a triple: either a Resource or a Literal.
// Exactly one of the two is set.
type Object struct {
	Resource Resource
	Literal  *Literal
}

// Ref wraps a resource as an object.
func Ref(r Resource) Object { return Object{Resource: r} }

// Lit wraps a literal as an object.
func Lit(l Literal) Object { return Object{Literal: &l} }

// IsResource reports whether the object is a resource reference.
func (o Object) IsResource() bool { return o.Literal == nil }

// Key returns a canonical string form used for indexing and set
// membership. Resources and literals cannot collide: literal keys are
// prefixed with their kind.
func (o Object) Key() string {
	if o.Literal != nil {
		return string(o.Literal.Kind) + "\x1f" + o.Literal.Value
	}
	return "r\x1f" + string(o.Resource)
}

func (o Object) String() string {
	if o.Literal != nil {
		return o.Literal.Value
	}
	return string(o.Resource)
}

// Triple is one (subject, predicate, object) fact.
type Triple struct {
	Subject   Resource
	Predicate Resource
	Object    Object
}

// Key returns the canonical set-membership key of the triple.
func (t Triple) Key() string {
	return string(t.Subject) + "\x1e" + string(t.Predicate) + "\x1e" + t.Object.Key()
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s %s %s)", t.Subject, t.Predicate, t.Object)
}
