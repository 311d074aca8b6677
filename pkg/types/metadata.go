package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Well-known metadata field names. Chunk and vector metadata always carry
// FieldDocumentID, FieldChunkIndex, and FieldText in addition to whatever
// the ingesting caller attached to the document.
const (
	FieldDocumentID = "documentId"
	FieldChunkIndex = "chunkIndex"
	FieldText       = "text"
	FieldTitle      = "title"
	FieldCategory   = "category"
	FieldVersion    = "version"
	FieldCreatedAt  = "createdAt"
)

// ValueKind identifies the scalar variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindStringList
)

// Value is a closed scalar variant for metadata fields: string, number,
// boolean, or list of strings. Keeping the set closed keeps filter
// construction and JSON (de)serialization sound.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []string
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// StringList creates a list-of-strings value.
func StringList(items ...string) Value {
	return Value{kind: KindStringList, list: append([]string(nil), items...)}
}

// Kind returns the variant held by the value.
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload and whether the value is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsStringList returns the list payload and whether the value is a list.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindStringList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values of the same scalar kind. Strings compare
// lexically, numbers numerically. The second return is false when the
// kinds differ or the kind has no ordering (bool, list).
func (v Value) Compare(other Value) (int, bool) {
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.str, other.str), true
	case KindNumber:
		switch {
		case v.num < other.num:
			return -1, true
		case v.num > other.num:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// Canonical returns a stable textual form of the value, used for cache
// keys and deterministic hashing.
func (v Value) Canonical() string {
	switch v.kind {
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return fmt.Sprintf("n:%g", v.num)
	case KindBool:
		return fmt.Sprintf("b:%t", v.b)
	case KindStringList:
		return "l:" + strings.Join(v.list, "\x00")
	}
	return ""
}

// MarshalJSON emits the plain scalar, so metadata round-trips as ordinary
// JSON objects ({"category":"api","chunkIndex":2,...}).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindStringList:
		if v.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.list)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON probes the JSON scalar types in order. Anything outside
// the closed set (nested objects, mixed arrays) is rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Bool(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = StringList(list...)
		return nil
	}
	return fmt.Errorf("metadata value %s is not a supported scalar", string(data))
}

// Metadata maps field names to scalar values.
type Metadata map[string]Value

// Get returns the value for a field.
func (m Metadata) Get(field string) (Value, bool) {
	v, ok := m[field]
	return v, ok
}

// GetString returns the string payload of a field, or "" when the field
// is missing or not a string.
func (m Metadata) GetString(field string) string {
	if v, ok := m[field]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// Clone returns a shallow copy. Values are immutable from the caller's
// perspective, so copying the map is sufficient.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StampCreatedAt records the current time under FieldCreatedAt as unix
// seconds, unless the field is already set.
func (m Metadata) StampCreatedAt() {
	if _, ok := m[FieldCreatedAt]; ok {
		return
	}
	m[FieldCreatedAt] = Number(float64(time.Now().Unix()))
}

// Canonical returns a stable textual form of the whole map, with fields
// sorted by name.
func (m Metadata) Canonical() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(m[k].Canonical())
		sb.WriteString(";")
	}
	return sb.String()
}
