// Package jsontree decodes JSON into a generic tree that keeps object fields
// in document order, so that walks over it are deterministic.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

type Value struct {
	Kind Kind

	// Str holds the text of a String or the literal of a Number.
	Str    string
	Bool   bool
	Items  []Value
	Fields []Field
}

type Field struct {
	Key   string
	Value Value
}

// MaxNesting bounds how deep arrays and objects may nest.
const MaxNesting = 10000

var (
	errTrailingData = errors.New("trailing data after top-level value")
	ErrTooDeep      = errors.New("exceeded max nesting depth")
)

func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, fmt.Errorf("jsontree - Parse: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("jsontree - Parse: %w", errTrailingData)
	}

	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxNesting {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return Value{Kind: String, Str: t}, nil
	case json.Number:
		return Value{Kind: Number, Str: t.String()}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case nil:
		return Value{Kind: Null}, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	v := Value{Kind: Array}

	for dec.More() {
		item, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.Items = append(v.Items, item)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return v, nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	v := Value{Kind: Object}
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", tok)
		}

		field, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		// A repeated key keeps its first position and its last value.
		if i, seen := index[key]; seen {
			v.Fields[i].Value = field
			continue
		}
		index[key] = len(v.Fields)
		v.Fields = append(v.Fields, Field{Key: key, Value: field})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return v, nil
}

// Get returns the field named key of an object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}

	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return Value{}, false
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.Kind != Array || i < 0 || i >= len(v.Items) {
		return Value{}, false
	}

	return v.Items[i], true
}

// Path follows object keys and, for int steps, array indexes.
func (v Value) Path(steps ...any) (Value, bool) {
	cur := v
	for _, step := range steps {
		var ok bool
		switch s := step.(type) {
		case string:
			cur, ok = cur.Get(s)
		case int:
			cur, ok = cur.Index(s)
		}
		if !ok {
			return Value{}, false
		}
	}

	return cur, true
}

// GetString returns the field named key when it holds a string.
func (v Value) GetString(key string) (string, bool) {
	f, ok := v.Get(key)
	if !ok || f.Kind != String {
		return "", false
	}

	return f.Str, true
}
