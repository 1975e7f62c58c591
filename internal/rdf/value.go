package rdf

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a single RDF term: either a resource reference or a literal with
// an optional datatype or language tag. Values are immutable and comparable
// with ==
type Value struct {
	id         string
	literal    string
	isResource bool
	datatype   string
	language   string
}

// NewResource returns a value referencing the resource id
func NewResource(id string) Value {
	return Value{id: id, isResource: true}
}

// NewLiteral returns a literal value. datatype and language may be empty
func NewLiteral(literal, datatype, language string) Value {
	return Value{literal: literal, datatype: datatype, language: language}
}

// IsResource reports whether the value references a resource
func (v Value) IsResource() bool {
	return v.isResource
}

// ID returns the referenced resource IRI, if the value is a resource
func (v Value) ID() (string, bool) {
	return v.id, v.isResource
}

// Literal returns the lexical form, if the value is a literal
func (v Value) Literal() (string, bool) {
	return v.literal, !v.isResource
}

// Datatype returns the datatype IRI of a typed literal, or ""
func (v Value) Datatype() string {
	return v.datatype
}

// Language returns the language tag of a literal, or ""
func (v Value) Language() string {
	return v.language
}

// IDOrValue returns the resource IRI or the literal's lexical form
func (v Value) IDOrValue() string {
	if v.isResource {
		return v.id
	}
	return v.literal
}

func (v Value) String() string {
	if v.isResource {
		return "<" + v.id + ">"
	}
	s := strconv.Quote(v.literal)
	switch {
	case v.language != "":
		s += "@" + v.language
	case v.datatype != "":
		s += "^^<" + v.datatype + ">"
	}
	return s
}

// decodeValues converts one JSON-LD property value into RDF values. Scalars
// become untyped literals, "@list" objects are flattened in order
func decodeValues(ns *Namespaces, raw any) ([]Value, error) {
	switch x := raw.(type) {
	case []any:
		var values []Value
		for _, item := range x {
			vs, err := decodeValues(ns, item)
			if err != nil {
				return nil, err
			}
			values = append(values, vs...)
		}
		return values, nil
	case map[string]any:
		if list, ok := x["@list"]; ok {
			return decodeValues(ns, list)
		}
		v, err := decodeValueObject(ns, x)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	case nil:
		return nil, fmt.Errorf("%w: null value", ErrInvalidValue)
	default:
		lit, err := scalarString(x)
		if err != nil {
			return nil, err
		}
		return []Value{NewLiteral(lit, "", "")}, nil
	}
}

func decodeValueObject(ns *Namespaces, obj map[string]any) (Value, error) {
	if rawID, ok := obj["@id"]; ok {
		id, ok := rawID.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: @id must be a string", ErrInvalidValue)
		}
		return NewResource(ns.Expand(id)), nil
	}

	rawLiteral, ok := obj["@value"]
	if !ok {
		return Value{}, fmt.Errorf("%w: either @value or @id must be set", ErrInvalidValue)
	}
	lit, err := scalarString(rawLiteral)
	if err != nil {
		return Value{}, err
	}

	var datatype, language string
	if t, ok := obj["@type"].(string); ok {
		datatype = ns.Expand(t)
	}
	if l, ok := obj["@language"].(string); ok {
		language = l
	}
	return NewLiteral(lit, datatype, language), nil
}

func scalarString(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: unsupported literal %T", ErrInvalidValue, raw)
	}
}
