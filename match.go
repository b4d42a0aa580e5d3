// Recursive query evaluation.
//
// evaluate returns the subset of the input rows matched by a query
// node. Leaf nodes preserve input order. Combinators evaluate every
// branch against the full input and combine by set algebra, keyed on
// row ordinal so that duplicate documents remain distinct rows: $and
// intersects (first branch's order), $or unions with first-seen
// deduplication. A condition that cannot apply to a field's kind, such
// as a numeric comparison on a string, is a silent non-match.
package shelf

import "strings"

func evaluate(rows []row, q Query, textFields map[string]bool) []row {
	switch q.kind {
	case qText:
		token := strings.ToLower(q.text)
		var out []row
		for _, r := range rows {
			if matchText(r.doc, token, textFields) {
				out = append(out, r)
			}
		}
		return out

	case qAnd:
		// Intersection of zero sets is empty: there is no universal set.
		if len(q.subs) == 0 {
			return nil
		}
		out := evaluate(rows, q.subs[0], textFields)
		for _, sub := range q.subs[1:] {
			other := evaluate(rows, sub, textFields)
			keep := make(map[int]bool, len(other))
			for _, r := range other {
				keep[r.ord] = true
			}
			filtered := out[:0]
			for _, r := range out {
				if keep[r.ord] {
					filtered = append(filtered, r)
				}
			}
			out = filtered
		}
		return out

	case qOr:
		seen := make(map[int]bool)
		var out []row
		for _, sub := range q.subs {
			for _, r := range evaluate(rows, sub, textFields) {
				if !seen[r.ord] {
					seen[r.ord] = true
					out = append(out, r)
				}
			}
		}
		return out

	default: // qFields
		var out []row
		for _, r := range rows {
			if matchClauses(r.doc, q.clauses) {
				out = append(out, r)
			}
		}
		return out
	}
}

// matchText reports whether any configured full-text field is a string
// containing token as a whole whitespace-delimited word. Matching is
// case-insensitive and never partial: "fast" matches "fast and curious"
// but "fas" does not.
func matchText(doc Document, token string, textFields map[string]bool) bool {
	for field := range textFields {
		v, ok := doc[field]
		if !ok || v.Kind() != KindString {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(v.Str())) {
			if word == token {
				return true
			}
		}
	}
	return false
}

// matchClauses reports whether a document satisfies every field
// condition. A zero-length clause list is a vacuous conjunction and
// matches everything.
func matchClauses(doc Document, clauses []clause) bool {
	for _, c := range clauses {
		if !matchCond(doc[c.field], c.cond) {
			return false
		}
	}
	return true
}

// matchCond applies one condition to a field value. A missing field
// decodes as the zero Value, which no operator matches.
func matchCond(v Value, c Cond) bool {
	switch c.op {
	case opEq:
		return v.scalar() && v.equal(c.operand)
	case opIn:
		if !v.scalar() {
			return false
		}
		for _, candidate := range c.set {
			if v.equal(candidate) {
				return true
			}
		}
		return false
	case opLt:
		return v.Kind() == KindNumber && v.Num() < c.operand.Num()
	case opGt:
		return v.Kind() == KindNumber && v.Num() > c.operand.Num()
	}
	return false
}
