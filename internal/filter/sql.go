package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docbase/docbase/pkg/types"
)

// fieldNamePattern limits field names to identifier characters. Field
// names are interpolated into json_extract paths, so anything else is
// rejected outright.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ToSQL translates a filter tree into a SQLite WHERE clause over a JSON
// metadata column, with placeholder args. The clause is always non-empty
// so callers can unconditionally append "AND (clause)". Leaf clauses are
// COALESCE-wrapped so a missing field evaluates to a definite false and
// the clause agrees with Matches, including under Not.
func ToSQL(f Filter) (string, []interface{}, error) {
	var sb strings.Builder
	var args []interface{}
	if err := writeSQL(&sb, &args, f); err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func writeSQL(sb *strings.Builder, args *[]interface{}, f Filter) error {
	switch f.Op {
	case OpAll, "":
		sb.WriteString("1=1")
		return nil
	case OpNone:
		sb.WriteString("0=1")
		return nil
	case OpEquals:
		path, err := fieldPath(f.Field)
		if err != nil {
			return err
		}
		// COALESCE forces a missing field to a definite false. Without
		// it json_extract yields NULL, and NOT over NULL would exclude
		// rows that Matches accepts.
		sb.WriteString("COALESCE(")
		sb.WriteString(path)
		sb.WriteString(" = ?, 0)")
		*args = append(*args, bindValue(f.Value))
		return nil
	case OpIn:
		path, err := fieldPath(f.Field)
		if err != nil {
			return err
		}
		sb.WriteString("COALESCE(")
		sb.WriteString(path)
		sb.WriteString(" IN (")
		for i, v := range f.Values {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("?")
			*args = append(*args, bindValue(v))
		}
		sb.WriteString("), 0)")
		return nil
	case OpContains:
		path, err := fieldPath(f.Field)
		if err != nil {
			return err
		}
		sb.WriteString("COALESCE(")
		sb.WriteString(path)
		sb.WriteString(" LIKE ? ESCAPE '\\', 0)")
		sub, _ := f.Value.AsString()
		*args = append(*args, "%"+escapeLike(sub)+"%")
		return nil
	case OpRange:
		path, err := fieldPath(f.Field)
		if err != nil {
			return err
		}
		sb.WriteString("COALESCE((")
		wrote := false
		if f.GTE != nil {
			sb.WriteString(path)
			sb.WriteString(" >= ?")
			*args = append(*args, bindValue(*f.GTE))
			wrote = true
		}
		if f.LTE != nil {
			if wrote {
				sb.WriteString(" AND ")
			}
			sb.WriteString(path)
			sb.WriteString(" <= ?")
			*args = append(*args, bindValue(*f.LTE))
		}
		sb.WriteString("), 0)")
		return nil
	case OpAnd, OpOr:
		joiner := " AND "
		if f.Op == OpOr {
			joiner = " OR "
		}
		sb.WriteString("(")
		for i, sub := range f.Sub {
			if i > 0 {
				sb.WriteString(joiner)
			}
			if err := writeSQL(sb, args, sub); err != nil {
				return err
			}
		}
		sb.WriteString(")")
		return nil
	case OpNot:
		if len(f.Sub) != 1 {
			return fmt.Errorf("%w: not filter requires exactly one sub-filter", types.ErrInvalidInput)
		}
		sb.WriteString("NOT (")
		if err := writeSQL(sb, args, f.Sub[0]); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil
	}
	return fmt.Errorf("%w: unknown filter op %q", types.ErrInvalidInput, f.Op)
}

// escapeLike escapes the LIKE metacharacters in a literal substring so
// user text cannot act as a wildcard pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func fieldPath(field string) (string, error) {
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("%w: invalid filter field %q", types.ErrInvalidInput, field)
	}
	return fmt.Sprintf("json_extract(metadata, '$.%s')", field), nil
}

// bindValue converts a metadata value to a driver-friendly bind
// parameter. Booleans bind as integers because json_extract surfaces
// JSON booleans as 0/1.
func bindValue(v types.Value) interface{} {
	switch v.Kind() {
	case types.KindString:
		s, _ := v.AsString()
		return s
	case types.KindNumber:
		n, _ := v.AsNumber()
		return n
	case types.KindBool:
		b, _ := v.AsBool()
		if b {
			return 1
		}
		return 0
	case types.KindStringList:
		list, _ := v.AsStringList()
		return strings.Join(list, ",")
	}
	return nil
}
