package filter

import (
	"strings"

	"github.com/docbase/docbase/pkg/types"
)

// Matches evaluates a filter against a metadata map in memory. A leaf
// over a missing field never matches (and therefore matches under Not).
func Matches(meta types.Metadata, f Filter) bool {
	switch f.Op {
	case OpAll, "":
		return true
	case OpNone:
		return false
	case OpEquals:
		v, ok := meta.Get(f.Field)
		return ok && v.Equal(f.Value)
	case OpIn:
		v, ok := meta.Get(f.Field)
		if !ok {
			return false
		}
		for _, candidate := range f.Values {
			if v.Equal(candidate) {
				return true
			}
		}
		return false
	case OpContains:
		v, ok := meta.Get(f.Field)
		if !ok {
			return false
		}
		s, ok := v.AsString()
		if !ok {
			return false
		}
		sub, _ := f.Value.AsString()
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	case OpRange:
		v, ok := meta.Get(f.Field)
		if !ok {
			return false
		}
		if f.GTE != nil {
			cmp, comparable := v.Compare(*f.GTE)
			if !comparable || cmp < 0 {
				return false
			}
		}
		if f.LTE != nil {
			cmp, comparable := v.Compare(*f.LTE)
			if !comparable || cmp > 0 {
				return false
			}
		}
		return true
	case OpAnd:
		for _, sub := range f.Sub {
			if !Matches(meta, sub) {
				return false
			}
		}
		return true
	case OpOr:
		for _, sub := range f.Sub {
			if Matches(meta, sub) {
				return true
			}
		}
		return false
	case OpNot:
		if len(f.Sub) != 1 {
			return false
		}
		return !Matches(meta, f.Sub[0])
	}
	return false
}
