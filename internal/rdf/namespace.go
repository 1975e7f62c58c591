package rdf

import (
	"fmt"
	"strings"
)

// Well-known namespace IRIs
const (
	NamespaceDWM    = "https://github.com/k00ni/dwm#"
	NamespaceRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS   = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceSchema = "https://schema.org/"
	NamespaceSHACL  = "http://www.w3.org/ns/shacl#"
	NamespaceXSD    = "http://www.w3.org/2001/XMLSchema#"
	NamespaceDC     = "http://purl.org/dc/elements/1.1/"
	NamespaceDCT    = "http://purl.org/dc/terms/"
	NamespaceOWL    = "http://www.w3.org/2002/07/owl#"
	NamespaceSKOS   = "http://www.w3.org/2004/02/skos/core#"
)

type binding struct {
	prefix string
	iri    string
}

// Namespaces expands prefixed identifiers ("sh:path") to full IRIs.
//
// Prefixes are tried in registration order and the first one whose "prefix:"
// occurs in the identifier wins, so registered prefixes must not collide.
// A Namespaces value is not safe for concurrent Register calls
type Namespaces struct {
	bindings []binding
}

// NewNamespaces returns a resolver with the builtin prefixes bound:
// dwm, rdf, rdfs, schema, sh, xsd, dc, dct, owl and skos
func NewNamespaces() *Namespaces {
	return &Namespaces{
		bindings: []binding{
			{"dwm", NamespaceDWM},
			{"rdf", NamespaceRDF},
			{"rdfs", NamespaceRDFS},
			{"schema", NamespaceSchema},
			{"sh", NamespaceSHACL},
			{"xsd", NamespaceXSD},
			{"dc", NamespaceDC},
			{"dct", NamespaceDCT},
			{"owl", NamespaceOWL},
			{"skos", NamespaceSKOS},
		},
	}
}

// Register binds prefix to iri. It fails if prefix is already bound
func (n *Namespaces) Register(prefix, iri string) error {
	if _, ok := n.IRI(prefix); ok {
		return fmt.Errorf("%w: %s", ErrPrefixBound, prefix)
	}
	n.bindings = append(n.bindings, binding{prefix: prefix, iri: iri})
	return nil
}

// IRI returns the namespace bound to prefix
func (n *Namespaces) IRI(prefix string) (string, bool) {
	for _, b := range n.bindings {
		if b.prefix == prefix {
			return b.iri, true
		}
	}
	return "", false
}

// Prefixes returns the bound prefixes in registration order
func (n *Namespaces) Prefixes() []string {
	prefixes := make([]string, 0, len(n.bindings))
	for _, b := range n.bindings {
		prefixes = append(prefixes, b.prefix)
	}
	return prefixes
}

// Expand returns id with its prefix replaced by the bound namespace IRI.
// Blank node identifiers and identifiers without a known prefix are returned
// unchanged, which makes Expand a no-op on already expanded IRIs
func (n *Namespaces) Expand(id string) string {
	if IsBlankNode(id) {
		return id
	}
	for _, b := range n.bindings {
		if strings.Contains(id, b.prefix+":") {
			return strings.ReplaceAll(id, b.prefix+":", b.iri)
		}
	}
	return id
}

// IsBlankNode reports whether id is a graph-local blank node identifier
func IsBlankNode(id string) bool {
	return strings.Contains(id, "_:")
}
