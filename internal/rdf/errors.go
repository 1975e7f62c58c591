package rdf

import "errors"

// Graph resolution errors. All of them indicate a malformed knowledge graph
var (
	ErrPrefixBound          = errors.New("namespace prefix already bound")
	ErrInvalidNode          = errors.New("invalid JSON-LD node")
	ErrInvalidValue         = errors.New("invalid RDF value")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrMultipleValues       = errors.New("more than one value found")
	ErrEntryNotFound        = errors.New("entry not found")
	ErrAmbiguousShape       = errors.New("multiple NodeShape instances target the same class")
	ErrEmptyPath            = errors.New("value of sh:path is empty")
	ErrUnresolvableProperty = errors.New("property name cannot be resolved")
)
