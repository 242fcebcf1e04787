package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// DecodeValue parses a single JSON value while keeping object key order and
// the raw number literals. Numbers come back as json.Number so "1" and "1.0"
// stay distinguishable; objects come back as *Object in document order.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeNext(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return value, nil
}

func decodeNext(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// bool, string, json.Number, or nil
		return tok, nil
	}
	switch delim {
	case '{':
		obj := &Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string: %v", keyTok)
			}
			value, err := decodeNext(dec)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil
	case '[':
		list := []any{}
		for dec.More() {
			value, err := decodeNext(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Infer derives a schema node from a decoded JSON value. withExample controls
// whether the observed literals are carried along; the aggregation path always
// suppresses them.
//
// Known limitations, kept deliberately: array item schemas come from the first
// element only, so heterogeneous arrays are under-specified.
func Infer(value any, withExample bool) *SchemaNode {
	switch v := value.(type) {
	case nil:
		return scalar(KindNull, nil, withExample)
	case bool:
		// bool is matched before any numeric interpretation.
		return scalar(KindBoolean, v, withExample)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return scalar(KindInteger, n, withExample)
		}
		f, err := v.Float64()
		if err != nil {
			return scalar(KindString, v.String(), withExample)
		}
		return scalar(KindNumber, f, withExample)
	case int:
		return scalar(KindInteger, int64(v), withExample)
	case int64:
		return scalar(KindInteger, v, withExample)
	case float64:
		return scalar(KindNumber, v, withExample)
	case string:
		return scalar(KindString, v, withExample)
	case []any:
		node := &SchemaNode{Kind: KindArray, Items: &SchemaNode{}}
		if len(v) == 0 {
			return node
		}
		node.Items = Infer(v[0], withExample)
		if withExample {
			node.Example = v
			node.HasExample = true
		}
		return node
	case *Object:
		node := &SchemaNode{Kind: KindObject}
		for _, m := range v.Members {
			node.Properties = append(node.Properties, Property{Name: m.Key, Schema: Infer(m.Value, withExample)})
			if m.Value != nil {
				node.Required = append(node.Required, m.Key)
			}
		}
		if withExample {
			node.Example = v
			node.HasExample = true
		}
		return node
	case map[string]any:
		// Convenience for programmatic callers; key order is made
		// deterministic by sorting.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := &Object{}
		for _, k := range keys {
			obj.Members = append(obj.Members, Member{Key: k, Value: v[k]})
		}
		return Infer(obj, withExample)
	default:
		// Unrecognized values degrade to a string schema rather than failing.
		return &SchemaNode{Kind: KindString}
	}
}

func scalar(kind Kind, example any, withExample bool) *SchemaNode {
	node := &SchemaNode{Kind: kind}
	if withExample {
		node.Example = example
		node.HasExample = true
	}
	return node
}
