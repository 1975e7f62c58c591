package rdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Entry is one node of a knowledge graph: an identifier, its types and the
// values of its properties. Identifiers, types and property keys are expanded
// at construction. Entries are never mutated once built
type Entry struct {
	ns          *Namespaces
	id          string
	types       []string
	propertyIDs []string
	values      map[string][]Value
}

// ParseEntry builds an entry from one JSON-LD node object. Property order
// follows the order of keys in the document
func ParseEntry(ns *Namespaces, data []byte) (*Entry, error) {
	keys, fields, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	rawID, ok := fields["@id"]
	if !ok {
		return nil, fmt.Errorf("%w: missing @id", ErrInvalidNode)
	}
	var id string
	if err := json.Unmarshal(rawID, &id); err != nil {
		return nil, fmt.Errorf("%w: @id must be a string", ErrInvalidNode)
	}

	e := &Entry{
		ns:     ns,
		id:     ns.Expand(id),
		values: make(map[string][]Value),
	}

	for _, key := range keys {
		raw := fields[key]
		switch key {
		case "@id":
			continue
		case "@type":
			types, err := decodeTypes(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidNode, e.id, err)
			}
			for _, t := range types {
				e.types = append(e.types, ns.Expand(t))
			}
		default:
			if strings.HasPrefix(key, "@") {
				continue
			}
			var decoded any
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			if err := dec.Decode(&decoded); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidNode, e.id, err)
			}
			values, err := decodeValues(ns, decoded)
			if err != nil {
				return nil, fmt.Errorf("property %s of %s: %w", key, e.id, err)
			}
			propertyID := ns.Expand(key)
			if _, seen := e.values[propertyID]; !seen {
				e.propertyIDs = append(e.propertyIDs, propertyID)
			}
			e.values[propertyID] = append(e.values[propertyID], values...)
		}
	}

	return e, nil
}

// ID returns the entry identifier
func (e *Entry) ID() string {
	return e.id
}

// Types returns the expanded type IRIs in document order
func (e *Entry) Types() []string {
	return slices.Clone(e.types)
}

// HasTypeOneOf reports whether the entry has at least one of the given types
func (e *Entry) HasTypeOneOf(typeIDs ...string) bool {
	for _, typeID := range typeIDs {
		if slices.Contains(e.types, e.ns.Expand(typeID)) {
			return true
		}
	}
	return false
}

// PropertyIDs returns the expanded property IRIs in document order
func (e *Entry) PropertyIDs() []string {
	return slices.Clone(e.propertyIDs)
}

// HasProperty reports whether the entry carries the property
func (e *Entry) HasProperty(propertyID string) bool {
	_, ok := e.values[e.ns.Expand(propertyID)]
	return ok
}

// Values returns all values of a property in document order
func (e *Entry) Values(propertyID string) ([]Value, error) {
	expanded := e.ns.Expand(propertyID)
	values, ok := e.values[expanded]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, expanded)
	}
	return slices.Clone(values), nil
}

// Value returns the sole value of a property. It fails if the property is
// missing or has more than one value
func (e *Entry) Value(propertyID string) (Value, error) {
	values, err := e.Values(propertyID)
	if err != nil {
		return Value{}, err
	}
	if len(values) != 1 {
		return Value{}, fmt.Errorf("%w for property ID: %s", ErrMultipleValues, e.ns.Expand(propertyID))
	}
	return values[0], nil
}

// RawValues returns the IDOrValue form of every value of a property
func (e *Entry) RawValues(propertyID string) ([]string, error) {
	values, err := e.Values(propertyID)
	if err != nil {
		return nil, err
	}
	raw := make([]string, 0, len(values))
	for _, v := range values {
		raw = append(raw, v.IDOrValue())
	}
	return raw, nil
}

// HasPropertyValue reports whether any value of the property, resource id or
// literal, equals value. value is expanded before comparison
func (e *Entry) HasPropertyValue(propertyID, value string) bool {
	values, ok := e.values[e.ns.Expand(propertyID)]
	if !ok {
		return false
	}
	expanded := e.ns.Expand(value)
	for _, v := range values {
		if raw := v.IDOrValue(); raw == value || raw == expanded {
			return true
		}
	}
	return false
}

func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString(e.id)
	b.WriteString("\n")

	lines := make([]string, 0, len(e.propertyIDs))
	for _, propertyID := range e.propertyIDs {
		rendered := make([]string, 0, len(e.values[propertyID]))
		for _, v := range e.values[propertyID] {
			rendered = append(rendered, v.String())
		}
		lines = append(lines, "  "+propertyID+" "+strings.Join(rendered, ", "))
	}
	b.WriteString(strings.Join(lines, " ;\n"))
	b.WriteString(" .\n")
	return b.String()
}

func decodeTypes(raw json.RawMessage) ([]string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("@type must be a string or a list of strings")
	}
	return many, nil
}

// decodeObject decodes a JSON object and returns its keys in document order.
// Duplicate keys keep their first position and their last value
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidNode)
	}

	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("%w: expected an object key", ErrInvalidNode)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}

	return keys, fields, nil
}
