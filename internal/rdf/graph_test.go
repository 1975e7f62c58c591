package rdf

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPersonGraph(t *testing.T) *Graph {
	t.Helper()

	data, err := os.ReadFile("testdata/person.jsonld")
	require.NoError(t, err)

	g, err := ParseGraph(NewNamespaces(), data)
	require.NoError(t, err)
	return g
}

func ptr[T any](v T) *T {
	return &v
}

func TestGraphQueries(t *testing.T) {
	g := loadPersonGraph(t)

	assert.Equal(t, 11, g.Len())
	assert.Equal(t, 2, g.EntriesOfType("rdfs:Class").Len())
	assert.Equal(t, 1, g.EntriesOfType("sh:NodeShape").Len())

	stored := g.EntriesWithPropertyValue("dwm:isStoredInDatabase", "true")
	require.Equal(t, 1, stored.Len())
	assert.Equal(t, "https://example.org/Person", stored.Entries()[0].ID())

	name, err := g.PropertyName("schema:givenName")
	require.NoError(t, err)
	assert.Equal(t, "givenName", name)

	name, err = g.PropertyName("https://example.org/unknown")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/unknown", name)
}

func TestSubgraphsDoNotMutateSource(t *testing.T) {
	g := loadPersonGraph(t)
	before := g.Entries()

	sub := g.EntriesOfType("rdfs:Class")
	require.Equal(t, 2, sub.Len())
	assert.Same(t, before[0], sub.Entries()[0])

	assert.Equal(t, before, g.Entries())
	assert.Equal(t, 11, g.Len())
}

func TestEntriesWithIDsIn(t *testing.T) {
	g := loadPersonGraph(t)

	sub := g.EntriesWithIDsIn("_:b1", "_:b0", "_:b1", "_:missing")
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, "_:b1", sub.Entries()[0].ID())
	assert.Equal(t, "_:b0", sub.Entries()[1].ID())

	e, err := g.Entry("https://example.org/Address")
	require.NoError(t, err)
	assert.True(t, e.HasTypeOneOf("rdfs:Class"))

	_, err = g.Entry("https://example.org/Nothing")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestListValuesAreFlattened(t *testing.T) {
	g := loadPersonGraph(t)

	list, err := g.Entry("_:list")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.w3.org/2002/07/owl#unionOf"}, list.PropertyIDs())

	values, err := list.Values("owl:unionOf")
	require.NoError(t, err)
	assert.Equal(t, []Value{
		NewResource("https://example.org/Person"),
		NewResource("https://example.org/Address"),
	}, values)
}

func TestPropertyInfoForNodeShape(t *testing.T) {
	g := loadPersonGraph(t)

	info, err := g.PropertyInfoForNodeShape("https://example.org/Person")
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, []string{"id", "givenName", "address_id", "https://example.org/friends"}, info.Names())

	id, ok := info.Get("id")
	require.True(t, ok)
	assert.Equal(t, &PropertyDescriptor{
		PropertyName:    "id",
		DatatypeID:      "http://www.w3.org/2001/XMLSchema#integer",
		Datatype:        "integer",
		MinCount:        ptr(1),
		IsPrimaryKey:    ptr(true),
		IsAutoIncrement: ptr(true),
	}, id)

	givenName, ok := info.Get("givenName")
	require.True(t, ok)
	assert.Equal(t, "string", givenName.Datatype)
	assert.Equal(t, ptr("100"), givenName.MaxLength)
	assert.Equal(t, ptr("anonymous"), givenName.DefaultValue)
	assert.True(t, givenName.IsRequired())
	assert.Equal(t, &IndexDescriptor{Name: "idx_given_name", Type: "BTREE"}, givenName.Index)

	address, ok := info.Get("address_id")
	require.True(t, ok)
	assert.False(t, address.IsRequired())
	assert.Equal(t, &ConstraintDescriptor{
		Name:                 "fk_person_address",
		ColumnName:           "address_id",
		ReferencedTable:      "Address",
		ReferencedColumnName: "id",
		UpdateRule:           "RESTRICT",
		DeleteRule:           "CASCADE",
	}, address.Constraint)

	friends, ok := info.Get("https://example.org/friends")
	require.True(t, ok)
	assert.True(t, friends.IsList())
	assert.Equal(t, ptr("https://example.org/Person"), friends.ListTargetType)
}

func TestPropertyInfoForNodeShapeWithoutShape(t *testing.T) {
	g := loadPersonGraph(t)

	info, err := g.PropertyInfoForNodeShape("https://example.org/Address")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestPropertyInfoForNodeShapeAmbiguous(t *testing.T) {
	doc := `[
		{"@id": "ex:A", "@type": "sh:NodeShape", "sh:targetClass": {"@id": "ex:Thing"}},
		{"@id": "ex:B", "@type": "sh:NodeShape", "sh:targetClass": {"@id": "ex:Thing"}}
	]`
	g, err := ParseGraph(NewNamespaces(), []byte(doc))
	require.NoError(t, err)

	_, err = g.PropertyInfoForNodeShape("ex:Thing")
	require.ErrorIs(t, err, ErrAmbiguousShape)
}

func TestPropertyInfoForNodeShapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		property string
		want     error
	}{
		{
			name:     "missing path",
			property: `{"@id": "_:p", "sh:datatype": {"@id": "xsd:string"}}`,
			want:     ErrEmptyPath,
		},
		{
			name:     "empty path",
			property: `{"@id": "_:p", "sh:path": {"@value": ""}}`,
			want:     ErrEmptyPath,
		},
		{
			name:     "non numeric min count",
			property: `{"@id": "_:p", "sh:path": {"@id": "ex:p"}, "sh:minCount": "one"}`,
			want:     ErrInvalidValue,
		},
		{
			name:     "two datatypes",
			property: `{"@id": "_:p", "sh:path": {"@id": "ex:p"}, "sh:datatype": [{"@id": "xsd:string"}, {"@id": "xsd:integer"}]}`,
			want:     ErrMultipleValues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[
				{"@id": "ex:Shape", "sh:targetClass": {"@id": "ex:Thing"}, "sh:property": {"@id": "_:p"}},
				` + tt.property + `
			]`
			g, err := ParseGraph(NewNamespaces(), []byte(doc))
			require.NoError(t, err)

			_, err = g.PropertyInfoForNodeShape("ex:Thing")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPropertyInfoDuplicateNamesLastWins(t *testing.T) {
	doc := `[
		{"@id": "ex:Shape", "sh:targetClass": {"@id": "ex:Thing"}, "sh:property": [{"@id": "_:a"}, {"@id": "_:b"}]},
		{"@id": "_:a", "sh:path": {"@id": "ex:p"}, "sh:maxLength": "10"},
		{"@id": "_:b", "sh:path": {"@id": "ex:p"}, "sh:maxLength": "20"},
		{"@id": "ex:p", "dwm:propertyName": "p"}
	]`
	g, err := ParseGraph(NewNamespaces(), []byte(doc))
	require.NoError(t, err)

	info, err := g.PropertyInfoForNodeShape("ex:Thing")
	require.NoError(t, err)
	require.Equal(t, 1, info.Len())

	p, ok := info.Get("p")
	require.True(t, ok)
	assert.Equal(t, ptr("20"), p.MaxLength)
}

func TestParseGraphRegistersContextPrefixes(t *testing.T) {
	doc := `{
		"@context": {"ex": "https://example.org/", "sh": "https://elsewhere.example.org/"},
		"@graph": [
			{"@id": "ex:Person", "@type": "rdfs:Class"},
			{"@id": "ex:PersonShape", "sh:targetClass": {"@id": "ex:Person"}}
		]
	}`
	ns := NewNamespaces()
	g, err := ParseGraph(ns, []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/Person", g.Entries()[0].ID())
	assert.Equal(t, NamespaceSHACL+"targetClass", g.Entries()[1].PropertyIDs()[0])

	iri, ok := ns.IRI("ex")
	require.True(t, ok)
	assert.Equal(t, "https://example.org/", iri)
}
