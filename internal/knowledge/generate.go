package knowledge

import (
	"encoding/json"
	"fmt"

	"github.com/tordrt/kgschema/internal/rdf"
	"github.com/tordrt/kgschema/internal/schema"
	"github.com/tordrt/kgschema/internal/typemap"
)

// Document is the knowledge of one table as a JSON-LD document
type Document struct {
	Table    string
	FileName string
	Data     []byte
}

type node map[string]any

// Generate renders one document per table. Class and property IRIs are
// minted under prefix, which is bound to prefixURI in each document's context.
// A property IRI is "<prefix>:<table>.<column>" so documents of several tables
// can be merged without clashing
func Generate(s *schema.Schema, prefix, prefixURI string) ([]Document, error) {
	if prefix == "" || prefixURI == "" {
		return nil, fmt.Errorf("prefix and prefix URI are required")
	}

	var docs []Document
	for _, table := range s.Tables {
		data, err := generateTable(table, prefix, prefixURI)
		if err != nil {
			return nil, fmt.Errorf("failed to generate knowledge for table %s: %w", table.Name, err)
		}
		docs = append(docs, Document{Table: table.Name, FileName: table.Name + ".jsonld", Data: data})
	}
	return docs, nil
}

func generateTable(table *schema.Table, prefix, prefixURI string) ([]byte, error) {
	classID := prefix + ":" + table.Name
	indexes := make(map[string]*schema.Index)
	for _, idx := range table.Indexes() {
		// multi-column indexes are reduced to their first column on load
		if _, ok := indexes[idx.ColumnName]; !ok {
			indexes[idx.ColumnName] = idx
		}
	}

	graph := []node{{
		"@id":                    classID,
		"@type":                  "rdfs:Class",
		"rdfs:label":             table.Name,
		"dwm:className":          table.Name,
		"dwm:isStoredInDatabase": true,
	}}

	var refs []node
	var shapes, names []node
	for _, col := range table.Columns() {
		propertyID := prefix + ":" + table.Name + "." + col.Name
		shapeID := "_:" + table.Name + "_" + col.Name

		shape, err := propertyShape(col, indexes[col.Name])
		if err != nil {
			return nil, err
		}
		shape["@id"] = shapeID
		shape["sh:path"] = node{"@id": propertyID}

		refs = append(refs, node{"@id": shapeID})
		shapes = append(shapes, shape)
		names = append(names, node{"@id": propertyID, "dwm:propertyName": col.Name})
	}

	nodeShape := node{
		"@id":            classID + "Shape",
		"@type":          "sh:NodeShape",
		"sh:targetClass": node{"@id": classID},
	}
	if len(refs) > 0 {
		nodeShape["sh:property"] = refs
	}

	graph = append(graph, nodeShape)
	graph = append(graph, shapes...)
	graph = append(graph, names...)

	doc := map[string]any{
		"@context": map[string]string{
			prefix:   prefixURI,
			"dwm":    rdf.NamespaceDWM,
			"rdfs":   rdf.NamespaceRDFS,
			"schema": rdf.NamespaceSchema,
			"sh":     rdf.NamespaceSHACL,
			"xsd":    rdf.NamespaceXSD,
		},
		"@graph": graph,
	}
	return json.MarshalIndent(doc, "", "    ")
}

func propertyShape(col *schema.Column, idx *schema.Index) (node, error) {
	length := ""
	if col.Length != nil {
		length = *col.Length
	}
	datatype, err := typemap.DatatypeFor(col.Type, length)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}

	shape := node{"sh:datatype": node{"@id": datatype.ID}}
	if !col.CanBeNull {
		shape["sh:minCount"] = 1
	}
	if datatype.MaxLength != "" {
		shape["sh:maxLength"] = datatype.MaxLength
	}
	if datatype.Precision != "" && datatype.Scale != "" {
		shape["dwm:precision"] = datatype.Precision
		shape["dwm:scale"] = datatype.Scale
	}
	if datatype.MySQLColumnDataType != "" {
		shape["dwm:mysqlColumnDataType"] = datatype.MySQLColumnDataType
	}
	if col.IsPrimaryKey {
		shape["dwm:dbIsPrimaryKey"] = true
	}
	if col.IsAutoIncrement {
		shape["dwm:dbIsAutoIncrement"] = true
	}
	if col.DefaultValue != nil {
		shape["dwm:defaultValue"] = *col.DefaultValue
	}

	if k := col.Constraint; k != nil {
		shape["dwm:constraintName"] = k.Name
		shape["dwm:constraintColumnName"] = k.ColumnName
		shape["dwm:constraintReferencedTable"] = k.ReferencedTable
		shape["dwm:constraintReferencedTableColumnName"] = k.ReferencedColumn
		if k.OnUpdate != "" {
			shape["dwm:constraintUpdateRule"] = k.OnUpdate
		}
		if k.OnDelete != "" {
			shape["dwm:constraintDeleteRule"] = k.OnDelete
		}
	}

	if idx != nil {
		shape["dwm:dbIndexName"] = idx.Name
		shape["dwm:dbIndexType"] = idx.IndexType
		if idx.IsUnique {
			shape["dwm:dbIsUnique"] = true
		}
	}

	return shape, nil
}
