package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ValueKind tells which of the Value fields is meaningful.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInteger
	KindBoolean
)

// Value is one canonical field value: a tag, cleaned text or distance
// (string), a bounded integer, a boolean, or null when the field was not
// stated or not recognised.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int
	Bool bool
}

// Null is the "unrecognised / not stated" value.
func Null() Value { return Value{} }

// String wraps a tag or text value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Integer wraps an integer value.
func Integer(i int) Value { return Value{Kind: KindInteger, Int: i} }

// Boolean wraps a yes/no value.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// IsNull reports whether v carries no value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Interface returns v as a plain Go value (nil, string, int or bool).
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInteger:
		return v.Int
	case KindBoolean:
		return v.Bool
	}
	return nil
}

// MarshalJSON encodes v as null, a string, a number or a boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts null, strings, integral numbers and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return v.set(raw)
}

func (v *Value) set(raw interface{}) error {
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(x)
	case bool:
		*v = Boolean(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return fmt.Errorf("value %s is not an integer", x)
		}
		*v = Integer(int(i))
	case int32:
		*v = Integer(int(x))
	case int64:
		*v = Integer(int(x))
	case int:
		*v = Integer(x)
	default:
		return fmt.Errorf("unsupported value type %T", raw)
	}
	return nil
}

// FieldValue is one named entry of a CanonicalRecord.
type FieldValue struct {
	Name  string
	Value Value
}

// CanonicalRecord maps every configured field to exactly one value. Field
// order is the source configuration order and is kept through JSON and BSON,
// so identical input always encodes to identical bytes.
type CanonicalRecord struct {
	Fields []FieldValue
}

// Set stores value under name, replacing an earlier value in place.
func (r *CanonicalRecord) Set(name string, value Value) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, FieldValue{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r CanonicalRecord) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null(), false
}

// NullCount counts the null entries.
func (r CanonicalRecord) NullCount() int {
	n := 0
	for _, f := range r.Fields {
		if f.Value.IsNull() {
			n++
		}
	}
	return n
}

// Map flattens the record for search documents.
func (r CanonicalRecord) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value.Interface()
	}
	return m
}

// MarshalJSON writes the record as an object in field order.
func (r CanonicalRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping its key order.
func (r *CanonicalRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		r.Fields = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("canonical record: expected object")
	}

	r.Fields = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("canonical record: expected key, got %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("canonical record field %q: %w", name, err)
		}
		r.Fields = append(r.Fields, FieldValue{Name: name, Value: v})
	}
	_, err = dec.Token()
	return err
}

// MarshalBSON stores the record as an ordered document.
func (r CanonicalRecord) MarshalBSON() ([]byte, error) {
	d := make(bson.D, 0, len(r.Fields))
	for _, f := range r.Fields {
		v := f.Value.Interface()
		if i, ok := v.(int); ok {
			v = int64(i)
		}
		d = append(d, bson.E{Key: f.Name, Value: v})
	}
	return bson.Marshal(d)
}

// UnmarshalBSON reads an ordered document written by MarshalBSON.
func (r *CanonicalRecord) UnmarshalBSON(data []byte) error {
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	r.Fields = make([]FieldValue, 0, len(d))
	for _, e := range d {
		var v Value
		if err := v.set(e.Value); err != nil {
			return fmt.Errorf("canonical record field %q: %w", e.Key, err)
		}
		r.Fields = append(r.Fields, FieldValue{Name: e.Key, Value: v})
	}
	return nil
}
