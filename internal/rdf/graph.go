package rdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Graph is an ordered collection of entries. Subgraphs returned by the query
// methods share entries with their source and never modify it
type Graph struct {
	ns      *Namespaces
	entries []*Entry
	byID    map[string][]int
}

// NewGraph returns a graph over the given entries
func NewGraph(ns *Namespaces, entries ...*Entry) *Graph {
	g := &Graph{
		ns:   ns,
		byID: make(map[string][]int, len(entries)),
	}
	for _, e := range entries {
		g.add(e)
	}
	return g
}

// ParseGraph builds a graph from a JSON-LD document. The document is either a
// node array or an object holding the nodes under "@graph". String-valued
// "@context" terms that are not bound yet are registered on ns as prefixes
func ParseGraph(ns *Namespaces, data []byte) (*Graph, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidNode)
	}

	var nodes []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
	} else {
		var doc struct {
			Context json.RawMessage   `json:"@context"`
			Graph   []json.RawMessage `json:"@graph"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		if err := registerContext(ns, doc.Context); err != nil {
			return nil, err
		}
		nodes = doc.Graph
	}

	g := NewGraph(ns)
	for i, node := range nodes {
		e, err := ParseEntry(ns, node)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		g.add(e)
	}
	return g, nil
}

func registerContext(ns *Namespaces, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var terms map[string]any
	if err := json.Unmarshal(raw, &terms); err != nil {
		// remote or array contexts are not resolved
		return nil
	}
	for prefix, v := range terms {
		iri, ok := v.(string)
		if !ok || strings.HasPrefix(prefix, "@") {
			continue
		}
		if _, bound := ns.IRI(prefix); bound {
			continue
		}
		if err := ns.Register(prefix, iri); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) add(e *Entry) {
	g.byID[e.ID()] = append(g.byID[e.ID()], len(g.entries))
	g.entries = append(g.entries, e)
}

// Namespaces returns the resolver the graph expands identifiers with
func (g *Graph) Namespaces() *Namespaces {
	return g.ns
}

// Len returns the number of entries
func (g *Graph) Len() int {
	return len(g.entries)
}

// Entries returns the entries in graph order
func (g *Graph) Entries() []*Entry {
	out := make([]*Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Entry returns the first entry with the given id
func (g *Graph) Entry(id string) (*Entry, error) {
	expanded := g.ns.Expand(id)
	positions := g.byID[expanded]
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, expanded)
	}
	return g.entries[positions[0]], nil
}

// EntriesOfType returns the subgraph of entries having the given type
func (g *Graph) EntriesOfType(typeID string) *Graph {
	sub := NewGraph(g.ns)
	for _, e := range g.entries {
		if e.HasTypeOneOf(typeID) {
			sub.add(e)
		}
	}
	return sub
}

// EntriesWithPropertyValue returns the subgraph of entries having at least one
// value equal to value for the property
func (g *Graph) EntriesWithPropertyValue(propertyID, value string) *Graph {
	sub := NewGraph(g.ns)
	for _, e := range g.entries {
		if e.HasPropertyValue(propertyID, value) {
			sub.add(e)
		}
	}
	return sub
}

// EntriesWithIDsIn returns the subgraph of entries whose id is one of ids,
// ordered like ids. Repeated ids are only included once
func (g *Graph) EntriesWithIDsIn(ids ...string) *Graph {
	sub := NewGraph(g.ns)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		expanded := g.ns.Expand(id)
		if seen[expanded] {
			continue
		}
		seen[expanded] = true
		for _, pos := range g.byID[expanded] {
			sub.add(g.entries[pos])
		}
	}
	return sub
}

// PropertyName resolves the human readable name of a property via
// dwm:propertyName. Without a node for id the id itself is returned
func (g *Graph) PropertyName(id string) (string, error) {
	sub := g.EntriesWithIDsIn(id)
	if sub.Len() != 1 {
		return id, nil
	}
	v, err := sub.entries[0].Value("dwm:propertyName")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnresolvableProperty, id, err)
	}
	return v.IDOrValue(), nil
}

func (g *Graph) String() string {
	var b strings.Builder
	for _, e := range g.entries {
		b.WriteString(e.String())
	}
	return b.String()
}
