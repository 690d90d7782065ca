package ifc

import (
	"encoding/json"
	"fmt"
)

// ValueKind enumerates the variants an attribute value can take.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindString
	KindFloat
	KindInt
	KindBool
	KindRef
	KindList
	KindMap
)

// Value is a tagged union over the attribute types a document entity can
// carry. Entity references are stored by ID so values stay valid across
// document copies.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	i    int64
	b    bool
	ref  int64
	list []Value
	m    map[string]Value
}

// Str creates a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Float creates a float value.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Int creates an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Ref creates an entity reference value.
func Ref(id int64) Value { return Value{kind: KindRef, ref: id} }

// List creates a list value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map creates a map value.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind reports the variant stored in the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNil reports whether the value is the zero value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsFloat returns the numeric payload. Integer values are widened.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.num, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsRef returns the referenced entity ID.
func (v Value) AsRef() (int64, bool) {
	return v.ref, v.kind == KindRef
}

// AsList returns the list payload.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// AsMap returns the map payload.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.m, v.kind == KindMap
}

// Get returns the named entry of a map value.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	entry, ok := v.m[name]
	return entry, ok
}

// Native unwraps the value into plain Go types: string, float64, int64,
// bool, int64 for refs, []any and map[string]any for containers.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return v.num
	case KindInt:
		return v.i
	case KindBool:
		return v.b
	case KindRef:
		return v.ref
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Native()
		}
		return out
	}
	return nil
}

// Clone deep-copies the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		m := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			m[k] = item.Clone()
		}
		return Value{kind: KindMap, m: m}
	}
	return v
}

type valueJSON struct {
	Str  *string          `json:"s,omitempty"`
	Num  *float64         `json:"f,omitempty"`
	Int  *int64           `json:"i,omitempty"`
	Bool *bool            `json:"b,omitempty"`
	Ref  *int64           `json:"ref,omitempty"`
	List []Value          `json:"l,omitempty"`
	Map  map[string]Value `json:"m,omitempty"`
}

// MarshalJSON encodes the value as a single-key tagged object.
func (v Value) MarshalJSON() ([]byte, error) {
	var enc valueJSON
	switch v.kind {
	case KindNil:
		return []byte("null"), nil
	case KindString:
		enc.Str = &v.str
	case KindFloat:
		enc.Num = &v.num
	case KindInt:
		enc.Int = &v.i
	case KindBool:
		enc.Bool = &v.b
	case KindRef:
		enc.Ref = &v.ref
	case KindList:
		if v.list == nil {
			enc.List = []Value{}
		} else {
			enc.List = v.list
		}
		return json.Marshal(map[string][]Value{"l": enc.List})
	case KindMap:
		if v.m == nil {
			enc.Map = map[string]Value{}
		} else {
			enc.Map = v.m
		}
		return json.Marshal(map[string]map[string]Value{"m": enc.Map})
	}
	return json.Marshal(enc)
}

// UnmarshalJSON decodes the tagged object form produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var dec valueJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return fmt.Errorf("decode attribute value: %w", err)
	}
	switch {
	case dec.Str != nil:
		*v = Str(*dec.Str)
	case dec.Num != nil:
		*v = Float(*dec.Num)
	case dec.Int != nil:
		*v = Int(*dec.Int)
	case dec.Bool != nil:
		*v = Bool(*dec.Bool)
	case dec.Ref != nil:
		*v = Ref(*dec.Ref)
	case dec.List != nil:
		*v = Value{kind: KindList, list: dec.List}
	case dec.Map != nil:
		*v = Value{kind: KindMap, m: dec.Map}
	default:
		*v = Value{}
	}
	return nil
}
