// Query AST and boundary parser.
//
// A query is an immutable tree with a closed set of node kinds: a
// whole-word text match, an and/or combinator, or a conjunction of
// per-field conditions. Callers either build trees with the typed
// constructors (Text, And, Or, Where) or hand the Mongo-style JSON form
// to ParseQuery, which discriminates node shape by reserved key and
// fails fast with ErrQueryShape on anything it does not recognise.
// Shape probing happens only here; the evaluator switches on the tag.
package shelf

import (
	"fmt"

	json "github.com/goccy/go-json"
)

type queryKind uint8

const (
	qFields queryKind = iota // zero value: empty Where matches all
	qText
	qAnd
	qOr
)

type condOp uint8

const (
	opEq condOp = iota
	opIn
	opLt
	opGt
)

// Cond is a single field condition.
type Cond struct {
	op      condOp
	operand Value
	set     []Value
}

// Eq matches fields strictly equal to v. Array values never match.
func Eq(v Value) Cond { return Cond{op: opEq, operand: v} }

// In matches scalar fields equal to any of the given values.
func In(vs ...Value) Cond { return Cond{op: opIn, set: vs} }

// Lt matches numeric fields strictly less than n. On a non-numeric
// field the condition never matches.
func Lt(n float64) Cond { return Cond{op: opLt, operand: Number(n)} }

// Gt matches numeric fields strictly greater than n. On a non-numeric
// field the condition never matches.
func Gt(n float64) Cond { return Cond{op: opGt, operand: Number(n)} }

type clause struct {
	field string
	cond  Cond
}

// Query is one node of a query tree. The zero Query matches every
// document.
type Query struct {
	kind    queryKind
	text    string
	subs    []Query
	clauses []clause
}

// Text matches documents where any configured full-text field contains
// token as a whole whitespace-delimited word, case-insensitively.
func Text(token string) Query { return Query{kind: qText, text: token} }

// And matches documents matched by every sub-query. With no sub-queries
// it matches nothing: the intersection of zero sets has no universal
// set here.
func And(qs ...Query) Query { return Query{kind: qAnd, subs: qs} }

// Or matches documents matched by at least one sub-query. With no
// sub-queries it matches nothing.
func Or(qs ...Query) Query { return Query{kind: qOr, subs: qs} }

// Where matches documents satisfying every field condition. An empty
// conds map matches every document, so Where(nil) is the match-all
// query.
func Where(conds map[string]Cond) Query {
	q := Query{kind: qFields}
	for field, cond := range conds {
		q.clauses = append(q.clauses, clause{field: field, cond: cond})
	}
	return q
}

// All returns the match-all query, equivalent to the JSON form {}.
func All() Query { return Query{kind: qFields} }

// ParseQuery parses the JSON query form:
//
//	{}                              match all
//	{"$text": "word"}               whole-word text match
//	{"$and": [q, ...]}              conjunction of sub-queries
//	{"$or": [q, ...]}               disjunction of sub-queries
//	{"field": {"$eq": v}, ...}      field conditions (implicit and)
//
// Recognised operators are $eq, $in, $lt, $gt. Unknown reserved keys,
// unknown operators, and operands outside each operator's model fail
// with ErrQueryShape rather than silently matching nothing.
func ParseQuery(data []byte) (Query, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrQueryShape, err)
	}
	return parseNode(raw)
}

func parseNode(raw map[string]any) (Query, error) {
	if v, ok := raw["$text"]; ok {
		if len(raw) != 1 {
			return Query{}, fmt.Errorf("%w: $text mixed with other keys", ErrQueryShape)
		}
		s, ok := v.(string)
		if !ok {
			return Query{}, fmt.Errorf("%w: $text operand must be a string", ErrQueryShape)
		}
		return Text(s), nil
	}
	if v, ok := raw["$and"]; ok {
		if len(raw) != 1 {
			return Query{}, fmt.Errorf("%w: $and mixed with other keys", ErrQueryShape)
		}
		subs, err := parseList(v)
		if err != nil {
			return Query{}, err
		}
		return And(subs...), nil
	}
	if v, ok := raw["$or"]; ok {
		if len(raw) != 1 {
			return Query{}, fmt.Errorf("%w: $or mixed with other keys", ErrQueryShape)
		}
		subs, err := parseList(v)
		if err != nil {
			return Query{}, err
		}
		return Or(subs...), nil
	}

	// Field-condition conjunction. An empty object matches everything.
	q := Query{kind: qFields}
	for field, v := range raw {
		if len(field) > 0 && field[0] == '$' {
			return Query{}, fmt.Errorf("%w: unknown combinator %q", ErrQueryShape, field)
		}
		cond, err := parseCond(field, v)
		if err != nil {
			return Query{}, err
		}
		q.clauses = append(q.clauses, clause{field: field, cond: cond})
	}
	return q, nil
}

func parseList(v any) ([]Query, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: combinator operand must be an array", ErrQueryShape)
	}
	subs := make([]Query, 0, len(list))
	for _, e := range list {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: sub-query must be an object", ErrQueryShape)
		}
		sub, err := parseNode(obj)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func parseCond(field string, v any) (Cond, error) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return Cond{}, fmt.Errorf("%w: field %q needs exactly one operator", ErrQueryShape, field)
	}
	for op, operand := range obj {
		switch op {
		case "$eq":
			val, err := fromAny(operand)
			if err != nil {
				return Cond{}, fmt.Errorf("%w: field %q: %v", ErrQueryShape, field, err)
			}
			return Eq(val), nil
		case "$in":
			list, ok := operand.([]any)
			if !ok {
				return Cond{}, fmt.Errorf("%w: field %q: $in operand must be an array", ErrQueryShape, field)
			}
			vals := make([]Value, 0, len(list))
			for _, e := range list {
				val, err := fromAny(e)
				if err != nil || !val.scalar() {
					return Cond{}, fmt.Errorf("%w: field %q: $in elements must be scalars", ErrQueryShape, field)
				}
				vals = append(vals, val)
			}
			return In(vals...), nil
		case "$lt", "$gt":
			n, ok := operand.(float64)
			if !ok {
				return Cond{}, fmt.Errorf("%w: field %q: %s operand must be a number", ErrQueryShape, field, op)
			}
			if op == "$lt" {
				return Lt(n), nil
			}
			return Gt(n), nil
		default:
			return Cond{}, fmt.Errorf("%w: field %q: unknown operator %q", ErrQueryShape, field, op)
		}
	}
	return Cond{}, fmt.Errorf("%w: field %q", ErrQueryShape, field)
}
