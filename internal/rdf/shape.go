package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstraintDescriptor holds the dwm:constraint* facts of a property shape
type ConstraintDescriptor struct {
	Name                 string
	ColumnName           string
	ReferencedTable      string
	ReferencedColumnName string
	UpdateRule           string
	DeleteRule           string
}

// IndexDescriptor holds the dwm:dbIndex* facts of a property shape
type IndexDescriptor struct {
	Name     string
	Type     string
	IsUnique bool
}

// PropertyDescriptor is what one SHACL property shape says about a property.
// Nil fields were not present on the shape
type PropertyDescriptor struct {
	PropertyName        string
	DatatypeID          string
	Datatype            string
	MinCount            *int
	MaxCount            *int
	IsPrimaryKey        *bool
	IsAutoIncrement     *bool
	MaxLength           *string
	Precision           *string
	Scale               *string
	DefaultValue        *string
	MySQLColumnDataType *string
	ListTargetType      *string
	Constraint          *ConstraintDescriptor
	Index               *IndexDescriptor
}

// IsRequired reports whether the shape demands at least one value
func (d *PropertyDescriptor) IsRequired() bool {
	return d.MinCount != nil && *d.MinCount > 0
}

// IsList reports whether the property is a to-many relation
func (d *PropertyDescriptor) IsList() bool {
	return d.ListTargetType != nil
}

// PropertyMap maps resolved property names to descriptors and remembers the
// order in which names were first inserted
type PropertyMap struct {
	names []string
	byKey map[string]*PropertyDescriptor
}

func newPropertyMap() *PropertyMap {
	return &PropertyMap{byKey: make(map[string]*PropertyDescriptor)}
}

func (m *PropertyMap) set(d *PropertyDescriptor) {
	if _, ok := m.byKey[d.PropertyName]; !ok {
		m.names = append(m.names, d.PropertyName)
	}
	m.byKey[d.PropertyName] = d
}

// Len returns the number of properties
func (m *PropertyMap) Len() int {
	return len(m.names)
}

// Names returns property names in insertion order
func (m *PropertyMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Get returns the descriptor for name
func (m *PropertyMap) Get(name string) (*PropertyDescriptor, bool) {
	d, ok := m.byKey[name]
	return d, ok
}

// All returns the descriptors in insertion order
func (m *PropertyMap) All() []*PropertyDescriptor {
	out := make([]*PropertyDescriptor, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.byKey[name])
	}
	return out
}

// PropertyInfoForNodeShape resolves the property descriptors of the NodeShape
// targeting targetClassID. It returns nil without error when no shape targets
// the class and ErrAmbiguousShape when more than one does
func (g *Graph) PropertyInfoForNodeShape(targetClassID string) (*PropertyMap, error) {
	shapes := g.EntriesWithPropertyValue("sh:targetClass", targetClassID)
	switch {
	case shapes.Len() == 0:
		return nil, nil
	case shapes.Len() > 1:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousShape, targetClassID)
	}
	shape := shapes.entries[0]

	var refs []string
	if shape.HasProperty("sh:property") {
		values, err := shape.Values("sh:property")
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if ref := strings.TrimSpace(v.IDOrValue()); ref != "" {
				refs = append(refs, ref)
			}
		}
	}

	info := newPropertyMap()
	for _, node := range g.EntriesWithIDsIn(refs...).entries {
		d, err := g.describeProperty(node)
		if err != nil {
			return nil, fmt.Errorf("property shape %s: %w", node.ID(), err)
		}
		info.set(d)
	}
	return info, nil
}

func (g *Graph) describeProperty(node *Entry) (*PropertyDescriptor, error) {
	if !node.HasProperty("sh:path") {
		return nil, ErrEmptyPath
	}
	path, err := node.Value("sh:path")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path.IDOrValue()) == "" {
		return nil, ErrEmptyPath
	}
	name, err := g.PropertyName(path.IDOrValue())
	if err != nil {
		return nil, err
	}

	d := &PropertyDescriptor{PropertyName: name}
	r := shapeReader{entry: node}

	d.MinCount = r.integer("sh:minCount")
	d.MaxCount = r.integer("sh:maxCount")
	d.DefaultValue = r.str("dwm:defaultValue")
	d.IsPrimaryKey = r.boolean("dwm:dbIsPrimaryKey")
	d.IsAutoIncrement = r.boolean("dwm:dbIsAutoIncrement")
	d.ListTargetType = r.str("dwm:listWithEntriesOfType")
	d.MaxLength = r.str("sh:maxLength")
	d.MySQLColumnDataType = r.str("dwm:mysqlColumnDataType")

	if datatype := r.str("sh:datatype"); datatype != nil {
		d.DatatypeID = *datatype
		d.Datatype = d.DatatypeID[strings.Index(d.DatatypeID, "#")+1:]
	}

	if node.HasProperty("dwm:precision") && node.HasProperty("dwm:scale") {
		d.Precision = r.str("dwm:precision")
		d.Scale = r.str("dwm:scale")
	}

	if constraintName := r.str("dwm:constraintName"); constraintName != nil {
		d.Constraint = &ConstraintDescriptor{
			Name:                 *constraintName,
			ColumnName:           r.stringOr("dwm:constraintColumnName", d.PropertyName),
			ReferencedTable:      r.stringOr("dwm:constraintReferencedTable", ""),
			ReferencedColumnName: r.stringOr("dwm:constraintReferencedTableColumnName", ""),
			UpdateRule:           r.stringOr("dwm:constraintUpdateRule", ""),
			DeleteRule:           r.stringOr("dwm:constraintDeleteRule", ""),
		}
	}

	if indexName := r.str("dwm:dbIndexName"); indexName != nil {
		d.Index = &IndexDescriptor{
			Name: *indexName,
			Type: strings.ToUpper(r.stringOr("dwm:dbIndexType", "BTREE")),
		}
		if unique := r.boolean("dwm:dbIsUnique"); unique != nil {
			d.Index.IsUnique = *unique
		}
	}

	return d, r.err
}

// shapeReader reads optional single-valued fields and keeps the first error
type shapeReader struct {
	entry *Entry
	err   error
}

func (r *shapeReader) str(propertyID string) *string {
	if r.err != nil || !r.entry.HasProperty(propertyID) {
		return nil
	}
	v, err := r.entry.Value(propertyID)
	if err != nil {
		r.err = err
		return nil
	}
	s := v.IDOrValue()
	return &s
}

func (r *shapeReader) stringOr(propertyID, fallback string) string {
	if s := r.str(propertyID); s != nil {
		return *s
	}
	return fallback
}

func (r *shapeReader) integer(propertyID string) *int {
	s := r.str(propertyID)
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		r.err = fmt.Errorf("%w: %s is not an integer: %q", ErrInvalidValue, propertyID, *s)
		return nil
	}
	return &n
}

func (r *shapeReader) boolean(propertyID string) *bool {
	s := r.str(propertyID)
	if s == nil {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(*s))
	if err != nil {
		r.err = fmt.Errorf("%w: %s is not a boolean: %q", ErrInvalidValue, propertyID, *s)
		return nil
	}
	return &b
}
