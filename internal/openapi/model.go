// Package openapi reconstructs an OpenAPI 3.0 surface from captured network
// exchanges: it infers schemas from observed JSON bodies, normalizes variable
// path segments into template parameters, and folds per-exchange operation
// descriptors into a single document.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind is the JSON-Schema type of an inferred schema node.
type Kind string

const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Document is the aggregated OpenAPI 3.0 output.
//
// Paths, methods, and response codes are plain maps: both encoding/json and
// yaml.v3 emit string map keys in sorted order, which satisfies the
// lexicographic-path contract. Everything whose order carries meaning
// (parameter lists, object properties) is a slice instead.
type Document struct {
	OpenAPI string              `json:"openapi" yaml:"openapi"`
	Info    Info                `json:"info" yaml:"info"`
	Servers []Server            `json:"servers" yaml:"servers"`
	Paths   map[string]PathItem `json:"paths" yaml:"paths"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

type Server struct {
	URL string `json:"url" yaml:"url"`
}

// PathItem maps a lower-cased HTTP method to its operation.
type PathItem map[string]*Operation

// Operation is one (path, method) pair's documented behavior.
type Operation struct {
	Summary     string                   `json:"summary" yaml:"summary"`
	Parameters  []Parameter              `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody             `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]*ResponseItem `json:"responses" yaml:"responses"`
}

// Parameter describes one path or query parameter. Example is always emitted;
// Required only appears for path parameters.
type Parameter struct {
	Name     string      `json:"name" yaml:"name"`
	In       string      `json:"in" yaml:"in"`
	Required bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   *SchemaNode `json:"schema" yaml:"schema"`
	Example  any         `json:"example" yaml:"example"`
}

type RequestBody struct {
	Content map[string]*MediaType `json:"content" yaml:"content"`
}

type MediaType struct {
	Schema *SchemaNode `json:"schema" yaml:"schema"`
}

type ResponseItem struct {
	Description string                `json:"description" yaml:"description"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// SchemaNode is an inferred type descriptor for a JSON value. The zero value
// renders as the empty schema {} (used for items of empty arrays).
//
// Properties is an ordered list so object keys round-trip in document order;
// SchemaNode implements both json.Marshaler and yaml.Marshaler to keep that
// order in either rendering.
type SchemaNode struct {
	Kind       Kind
	Format     string
	Items      *SchemaNode
	Properties []Property
	Required   []string
	Example    any
	HasExample bool
}

// Property is one named object property in document order.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// Object is a decoded JSON object with its key order preserved.
type Object struct {
	Members []Member
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	for _, m := range o.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.Members) }

type jsonField struct {
	name  string
	value any
}

func marshalOrderedJSON(fields []jsonField) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *SchemaNode) jsonFields() ([]jsonField, error) {
	if s == nil || s.Kind == "" {
		return nil, nil
	}
	fields := []jsonField{{"type", string(s.Kind)}}
	if s.Format != "" {
		fields = append(fields, jsonField{"format", s.Format})
	}
	if s.Kind == KindArray {
		items, err := s.Items.MarshalJSON()
		if err != nil {
			return nil, err
		}
		fields = append(fields, jsonField{"items", json.RawMessage(items)})
	}
	if s.Kind == KindObject {
		propFields := make([]jsonField, 0, len(s.Properties))
		for _, p := range s.Properties {
			raw, err := p.Schema.MarshalJSON()
			if err != nil {
				return nil, err
			}
			propFields = append(propFields, jsonField{p.Name, json.RawMessage(raw)})
		}
		props, err := marshalOrderedJSON(propFields)
		if err != nil {
			return nil, err
		}
		fields = append(fields, jsonField{"properties", json.RawMessage(props)})
		if len(s.Required) > 0 {
			fields = append(fields, jsonField{"required", s.Required})
		}
	}
	if s.HasExample {
		fields = append(fields, jsonField{"example", s.Example})
	}
	return fields, nil
}

// MarshalJSON renders the node with a stable field order: type, format,
// items, properties, required, example.
func (s *SchemaNode) MarshalJSON() ([]byte, error) {
	fields, err := s.jsonFields()
	if err != nil {
		return nil, err
	}
	return marshalOrderedJSON(fields)
}

// MarshalJSON renders members in their preserved order.
func (o *Object) MarshalJSON() ([]byte, error) {
	fields := make([]jsonField, 0, len(o.Members))
	for _, m := range o.Members {
		fields = append(fields, jsonField{m.Key, m.Value})
	}
	return marshalOrderedJSON(fields)
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func appendMapping(node *yaml.Node, key string, value *yaml.Node) {
	node.Content = append(node.Content, scalarNode("!!str", key), value)
}

// valueNode converts a decoded JSON value (including json.Number literals and
// ordered Objects) into a yaml.Node so number and key-order fidelity survive
// YAML rendering.
func valueNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(val)), nil
	case string:
		return scalarNode("!!str", val), nil
	case int:
		return scalarNode("!!int", strconv.Itoa(val)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(val, 10)), nil
	case float64:
		return scalarNode("!!float", strconv.FormatFloat(val, 'g', -1, 64)), nil
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return scalarNode("!!int", val.String()), nil
		}
		return scalarNode("!!float", val.String()), nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case *Object:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range val.Members {
			child, err := valueNode(m.Value)
			if err != nil {
				return nil, err
			}
			appendMapping(mapping, m.Key, child)
		}
		return mapping, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return node, nil
	}
}

func (s *SchemaNode) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if s == nil || s.Kind == "" {
		node.Style = yaml.FlowStyle
		return node, nil
	}
	appendMapping(node, "type", scalarNode("!!str", string(s.Kind)))
	if s.Format != "" {
		appendMapping(node, "format", scalarNode("!!str", s.Format))
	}
	if s.Kind == KindArray {
		items, err := s.Items.yamlNode()
		if err != nil {
			return nil, err
		}
		appendMapping(node, "items", items)
	}
	if s.Kind == KindObject {
		props := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range s.Properties {
			child, err := p.Schema.yamlNode()
			if err != nil {
				return nil, err
			}
			appendMapping(props, p.Name, child)
		}
		appendMapping(node, "properties", props)
		if len(s.Required) > 0 {
			req := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, name := range s.Required {
				req.Content = append(req.Content, scalarNode("!!str", name))
			}
			appendMapping(node, "required", req)
		}
	}
	if s.HasExample {
		example, err := valueNode(s.Example)
		if err != nil {
			return nil, err
		}
		appendMapping(node, "example", example)
	}
	return node, nil
}

// MarshalYAML renders the node with the same field order as MarshalJSON.
func (s *SchemaNode) MarshalYAML() (any, error) {
	return s.yamlNode()
}

// MarshalYAML renders members in their preserved order.
func (o *Object) MarshalYAML() (any, error) {
	return valueNode(o)
}
