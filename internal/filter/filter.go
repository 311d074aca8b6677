package filter

import (
	"strings"

	"github.com/docbase/docbase/pkg/types"
)

// Op identifies a filter node.
type Op string

const (
	OpEquals   Op = "eq"
	OpIn       Op = "in"
	OpRange    Op = "range"
	OpContains Op = "contains"
	OpAnd      Op = "and"
	OpOr       Op = "or"
	OpNot      Op = "not"
	OpAll      Op = "all"  // matches everything
	OpNone     Op = "none" // matches nothing
)

// Filter is one node of a constraint tree. Leaves (eq, in, range) name a
// metadata field; combinators (and, or, not) hold sub-filters.
type Filter struct {
	Op     Op
	Field  string
	Value  types.Value   // eq
	Values []types.Value // in
	GTE    *types.Value  // range lower bound, inclusive
	LTE    *types.Value  // range upper bound, inclusive
	Sub    []Filter      // and/or children, not holds exactly one
}

// All returns the match-everything filter.
func All() Filter { return Filter{Op: OpAll} }

// None returns the match-nothing filter.
func None() Filter { return Filter{Op: OpNone} }

// IsAll reports whether the filter matches everything.
func (f Filter) IsAll() bool { return f.Op == OpAll || f.Op == "" }

// IsNone reports whether the filter matches nothing.
func (f Filter) IsNone() bool { return f.Op == OpNone }

// Equals constrains a field to exactly one value.
func Equals(field string, value types.Value) Filter {
	return Filter{Op: OpEquals, Field: field, Value: value}
}

// In constrains a field to a set of values. A single value degenerates to
// Equals; an empty set matches nothing.
func In(field string, values ...types.Value) Filter {
	switch len(values) {
	case 0:
		return None()
	case 1:
		return Equals(field, values[0])
	}
	return Filter{Op: OpIn, Field: field, Values: append([]types.Value(nil), values...)}
}

// InStrings is In over string values.
func InStrings(field string, values ...string) Filter {
	vs := make([]types.Value, len(values))
	for i, s := range values {
		vs[i] = types.String(s)
	}
	return In(field, vs...)
}

// Contains constrains a string field to values containing substring,
// case-insensitively. An empty substring is no constraint at all.
func Contains(field, substring string) Filter {
	if substring == "" {
		return All()
	}
	return Filter{Op: OpContains, Field: field, Value: types.String(substring)}
}

// Range constrains a field to an inclusive interval. Either bound may be
// nil for a half-open interval; both nil is no constraint at all.
func Range(field string, gte, lte *types.Value) Filter {
	if gte == nil && lte == nil {
		return All()
	}
	return Filter{Op: OpRange, Field: field, GTE: gte, LTE: lte}
}

// And combines filters conjunctively. Match-everything children are
// dropped; a match-nothing child collapses the whole conjunction. An
// all-empty input yields the match-everything filter.
func And(filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f.IsAll() {
			continue
		}
		if f.IsNone() {
			return None()
		}
		kept = append(kept, f)
	}
	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return Filter{Op: OpAnd, Sub: kept}
}

// Or combines filters disjunctively. Match-nothing children are dropped;
// a match-everything child collapses the whole disjunction. Passing no
// filters at all means "no constraint supplied" and yields
// match-everything; passing only match-nothing filters yields
// match-nothing.
func Or(filters ...Filter) Filter {
	if len(filters) == 0 {
		return All()
	}
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f.IsNone() {
			continue
		}
		if f.IsAll() {
			return All()
		}
		kept = append(kept, f)
	}
	switch len(kept) {
	case 0:
		return None()
	case 1:
		return kept[0]
	}
	return Filter{Op: OpOr, Sub: kept}
}

// Not negates a filter. Negating match-everything yields match-nothing
// and vice versa; double negation unwraps to the original filter.
func Not(f Filter) Filter {
	if f.IsAll() {
		return None()
	}
	if f.IsNone() {
		return All()
	}
	if f.Op == OpNot && len(f.Sub) == 1 {
		return f.Sub[0]
	}
	return Filter{Op: OpNot, Sub: []Filter{f}}
}

// ByDocumentID is the deletion filter used when a document is removed or
// re-ingested: every chunk vector carries its parent id.
func ByDocumentID(documentID string) Filter {
	return Equals(types.FieldDocumentID, types.String(documentID))
}

// Canonical returns a stable textual form of the tree, used for search
// cache keys.
func (f Filter) Canonical() string {
	var sb strings.Builder
	writeCanonical(&sb, f)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, f Filter) {
	sb.WriteString(string(f.Op))
	if f.Field != "" {
		sb.WriteString("(")
		sb.WriteString(f.Field)
		sb.WriteString(")")
	}
	switch f.Op {
	case OpEquals, OpContains:
		sb.WriteString(f.Value.Canonical())
	case OpIn:
		for _, v := range f.Values {
			sb.WriteString(v.Canonical())
			sb.WriteString(",")
		}
	case OpRange:
		if f.GTE != nil {
			sb.WriteString(">=")
			sb.WriteString(f.GTE.Canonical())
		}
		if f.LTE != nil {
			sb.WriteString("<=")
			sb.WriteString(f.LTE.Canonical())
		}
	case OpAnd, OpOr, OpNot:
		sb.WriteString("[")
		for _, sub := range f.Sub {
			writeCanonical(sb, sub)
			sb.WriteString(" ")
		}
		sb.WriteString("]")
	}
}
