package poet

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the variant held by a Value
type ValueKind int

// Value kinds. The zero Value is Nil.
const (
	KindNil ValueKind = iota
	KindString
	KindBool
	KindNumber
	KindSequence
	KindMap
)

var valueKindNames = map[ValueKind]string{
	KindNil:      "nil",
	KindString:   "string",
	KindBool:     "bool",
	KindNumber:   "number",
	KindSequence: "sequence",
	KindMap:      "map",
}

// String returns the kind name
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return valueKindNames[KindNil]
}

// Value is the closed set of values produced by expressions, props and
// component results. Values are immutable once built.
type Value struct {
	kind    ValueKind
	str     string
	boolean bool
	number  float64
	seq     []Value
	m       *Map
}

// NilValue returns the unit value. It renders as the empty string.
func NilValue() Value { return Value{} }

// StringValue wraps a string
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue wraps a bool
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// NumberValue wraps a number
func NumberValue(n float64) Value { return Value{kind: KindNumber, number: n} }

// SequenceValue wraps an ordered list of values
func SequenceValue(items ...Value) Value {
	return Value{kind: KindSequence, seq: append([]Value(nil), items...)}
}

// MapValue wraps an ordered map. A nil map is treated as empty.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant held by v
func (v Value) Kind() ValueKind { return v.kind }

// IsNil reports whether v is the unit value
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsString returns the string held by a String value
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the bool held by a Bool value
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// AsNumber returns the number held by a Number value
func (v Value) AsNumber() (float64, bool) { return v.number, v.kind == KindNumber }

// AsSequence returns a copy of the items of a Sequence value
func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return append([]Value(nil), v.seq...), true
}

// AsMap returns the map held by a Map value
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// String returns the scalar string form of v. Nil is empty, numbers use the
// shortest decimal form, sequences and maps use a bracketed listing.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		return formatNumber(v.number)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			parts[i] = item.quoted()
		}
		return "[" + strings.Join(parts, SequenceSeparator) + "]"
	case KindMap:
		keys := v.m.Keys()
		parts := make([]string, len(keys))
		for i, key := range keys {
			item, _ := v.m.Get(key)
			parts[i] = key + MapEntrySeparator + item.quoted()
		}
		return "{" + strings.Join(parts, SequenceSeparator) + "}"
	default:
		return ""
	}
}

// Flatten renders v for body text: a sequence becomes the concatenation of
// its items' string forms, everything else its scalar string form.
func (v Value) Flatten() string {
	if v.kind != KindSequence {
		return v.String()
	}
	var b strings.Builder
	for _, item := range v.seq {
		b.WriteString(item.String())
	}
	return b.String()
}

func (v Value) quoted() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.String()
}

// Lookup walks a dotted path through maps and sequences. Sequence segments
// are decimal indexes.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch current.kind {
		case KindMap:
			next, ok := current.m.Get(segment)
			if !ok {
				return NilValue(), false
			}
			current = next
		case KindSequence:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.seq) {
				return NilValue(), false
			}
			current = current.seq[idx]
		default:
			return NilValue(), false
		}
	}
	return current, true
}

// ToAny converts v to plain Go values: nil, string, bool, float64, []any
// and map[string]any.
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, v.m.Len())
		for _, key := range v.m.Keys() {
			item, _ := v.m.Get(key)
			out[key] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go values into a Value. Maps with unordered keys
// are converted in sorted key order. Times become RFC 3339 strings.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NilValue(), nil
	case Value:
		return t, nil
	case *Map:
		return MapValue(t), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case int:
		return NumberValue(float64(t)), nil
	case int8:
		return NumberValue(float64(t)), nil
	case int16:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint:
		return NumberValue(float64(t)), nil
	case uint8:
		return NumberValue(float64(t)), nil
	case uint16:
		return NumberValue(float64(t)), nil
	case uint32:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case float32:
		return NumberValue(float64(t)), nil
	case float64:
		return NumberValue(t), nil
	case time.Time:
		return StringValue(t.Format(time.RFC3339)), nil
	case []Value:
		return SequenceValue(t...), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = StringValue(s)
		}
		return SequenceValue(items...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return NilValue(), err
			}
			items[i] = converted
		}
		return SequenceValue(items...), nil
	case map[string]string:
		m := NewMap()
		for _, key := range sortedKeys(t) {
			m.Set(key, StringValue(t[key]))
		}
		return MapValue(m), nil
	case map[string]any:
		m := NewMap()
		for _, key := range sortedKeys(t) {
			converted, err := FromAny(t[key])
			if err != nil {
				return NilValue(), err
			}
			m.Set(key, converted)
		}
		return MapValue(m), nil
	case map[any]any:
		plain := make(map[string]any, len(t))
		for key, item := range t {
			s, ok := key.(string)
			if !ok {
				return NilValue(), NewUnsupportedValueError(key)
			}
			plain[s] = item
		}
		return FromAny(plain)
	default:
		return NilValue(), NewUnsupportedValueError(x)
	}
}

// MustFromAny is like FromAny but panics on unsupported input
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Map is a string-keyed map that remembers insertion order. The zero value
// is not usable; call NewMap.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap creates an empty ordered map
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Set stores a value. Re-setting a key keeps its original position.
func (m *Map) Set(key string, v Value) *Map {
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
	return m
}

// Get returns the value stored under key
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return NilValue(), false
	}
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns the keys in insertion order
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}
