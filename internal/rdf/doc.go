// Package rdf models a knowledge graph decoded from JSON-LD and resolves the
// SHACL property shapes attached to its classes.
package rdf
