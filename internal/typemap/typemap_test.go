package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/kgschema/internal/rdf"
)

func str(s string) *string {
	return &s
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		name string
		desc rdf.PropertyDescriptor
		want string
	}{
		{"integer", rdf.PropertyDescriptor{Datatype: "integer"}, "int"},
		{"integer with length", rdf.PropertyDescriptor{Datatype: "integer", MaxLength: str("11")}, "int(11)"},
		{"string default length", rdf.PropertyDescriptor{Datatype: "string"}, "varchar(255)"},
		{"string with length", rdf.PropertyDescriptor{Datatype: "string", MaxLength: str("100")}, "varchar(100)"},
		{"date", rdf.PropertyDescriptor{Datatype: "date"}, "date"},
		{"dateTime", rdf.PropertyDescriptor{Datatype: "dateTime"}, "datetime"},
		{"double", rdf.PropertyDescriptor{Datatype: "double"}, "double"},
		{"float", rdf.PropertyDescriptor{Datatype: "float"}, "float"},
		{"decimal", rdf.PropertyDescriptor{Datatype: "decimal", Precision: str("4"), Scale: str("2")}, "decimal(4,2)"},
		{"override", rdf.PropertyDescriptor{Datatype: "string", MySQLColumnDataType: str("LONGTEXT")}, "longtext"},
		{"override with length", rdf.PropertyDescriptor{MySQLColumnDataType: str("smallint"), MaxLength: str("6")}, "smallint(6)"},
		{"override with precision", rdf.PropertyDescriptor{Datatype: "double", MySQLColumnDataType: str("decimal"), Precision: str("10"), Scale: str("3")}, "decimal(10,3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ColumnType(&tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnTypeUnknownDatatype(t *testing.T) {
	_, err := ColumnType(&rdf.PropertyDescriptor{PropertyName: "flag", Datatype: "boolean"})
	require.ErrorIs(t, err, ErrUnknownDatatype)

	_, err = ColumnType(&rdf.PropertyDescriptor{PropertyName: "price", Datatype: "decimal"})
	require.ErrorIs(t, err, ErrUnknownDatatype)

	_, err = ColumnType(&rdf.PropertyDescriptor{PropertyName: "untyped"})
	require.ErrorIs(t, err, ErrUnknownDatatype)
}

func TestDatatypeFor(t *testing.T) {
	tests := []struct {
		columnType string
		length     string
		want       Datatype
	}{
		{"varchar", "100", Datatype{ID: "xsd:string", MaxLength: "100"}},
		{"varchar(30)", "", Datatype{ID: "xsd:string", MaxLength: "30"}},
		{"int", "11", Datatype{ID: "xsd:integer", MaxLength: "11"}},
		{"int", "", Datatype{ID: "xsd:integer"}},
		{"decimal(4,2)", "", Datatype{ID: "xsd:decimal", Precision: "4", Scale: "2"}},
		{"date", "", Datatype{ID: "xsd:date"}},
		{"datetime", "", Datatype{ID: "xsd:dateTime"}},
		{"double", "", Datatype{ID: "xsd:double"}},
		{"float", "", Datatype{ID: "xsd:float"}},
		{"text", "", Datatype{ID: "xsd:string", MySQLColumnDataType: "text"}},
		{"longtext", "", Datatype{ID: "xsd:string", MySQLColumnDataType: "longtext"}},
		{"smallint", "6", Datatype{ID: "xsd:integer", MaxLength: "6", MySQLColumnDataType: "smallint"}},
	}

	for _, tt := range tests {
		t.Run(tt.columnType+"/"+tt.length, func(t *testing.T) {
			got, err := DatatypeFor(tt.columnType, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatatypeForUnknown(t *testing.T) {
	_, err := DatatypeFor("geometry", "")
	require.ErrorIs(t, err, ErrUnknownColumnType)

	_, err = DatatypeFor("  ", "")
	require.ErrorIs(t, err, ErrUnknownColumnType)

	for _, columnType := range []string{"int unsigned", "int(10) unsigned", "bigint unsigned zerofill"} {
		_, err = DatatypeFor(columnType, "10")
		require.ErrorIs(t, err, ErrUnknownColumnType, columnType)
	}
}
