// Package typemap translates between XML Schema datatypes used in SHACL
// property shapes and MySQL column types.
package typemap

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tordrt/kgschema/internal/rdf"
)

var (
	ErrUnknownDatatype   = errors.New("unknown datatype")
	ErrUnknownColumnType = errors.New("unknown MySQL column type")
)

const defaultVarcharLength = "255"

// ColumnType returns the lower-cased MySQL column type for a property.
// An explicit dwm:mysqlColumnDataType wins over the inferred type
func ColumnType(d *rdf.PropertyDescriptor) (string, error) {
	if d.MySQLColumnDataType != nil {
		columnType := *d.MySQLColumnDataType
		switch {
		case d.MaxLength != nil:
			columnType += "(" + *d.MaxLength + ")"
		case d.Precision != nil && d.Scale != nil:
			columnType += "(" + *d.Precision + "," + *d.Scale + ")"
		}
		return strings.ToLower(columnType), nil
	}

	var columnType string
	switch d.Datatype {
	case "integer":
		columnType = "int"
		if d.MaxLength != nil {
			columnType += "(" + *d.MaxLength + ")"
		}
	case "string":
		length := defaultVarcharLength
		if d.MaxLength != nil {
			length = *d.MaxLength
		}
		columnType = "varchar(" + length + ")"
	case "date":
		columnType = "date"
	case "dateTime":
		columnType = "datetime"
	case "double":
		columnType = "double"
	case "float":
		columnType = "float"
	case "decimal":
		if d.Precision == nil || d.Scale == nil {
			return "", fmt.Errorf("%w: decimal property %s needs dwm:precision and dwm:scale", ErrUnknownDatatype, d.PropertyName)
		}
		columnType = "decimal(" + *d.Precision + "," + *d.Scale + ")"
	default:
		return "", fmt.Errorf("%w: %q for property %s", ErrUnknownDatatype, d.Datatype, d.PropertyName)
	}
	return strings.ToLower(columnType), nil
}

// Datatype describes a MySQL column as property-shape facts
type Datatype struct {
	// ID is the prefixed xsd datatype, e.g. "xsd:string"
	ID                  string
	MaxLength           string
	Precision           string
	Scale               string
	MySQLColumnDataType string
}

var (
	lengthPattern  = regexp.MustCompile(`^([a-z]+)\((\d+)\)`)
	decimalPattern = regexp.MustCompile(`^decimal\((\d+),\s*(\d+)\)`)
)

// overridden maps MySQL base types without an xsd equivalent to the xsd type
// they are stored as; the MySQL type is kept as dwm:mysqlColumnDataType
var overridden = map[string]string{
	"text":       "xsd:string",
	"mediumtext": "xsd:string",
	"longtext":   "xsd:string",
	"tinytext":   "xsd:string",
	"char":       "xsd:string",
	"tinyint":    "xsd:integer",
	"smallint":   "xsd:integer",
	"mediumint":  "xsd:integer",
	"bigint":     "xsd:integer",
	"timestamp":  "xsd:dateTime",
}

// DatatypeFor maps a MySQL column type, with or without its length suffix,
// back to property-shape facts
func DatatypeFor(columnType, length string) (Datatype, error) {
	fields := strings.Fields(strings.ToLower(columnType))
	switch {
	case len(fields) == 0:
		return Datatype{}, fmt.Errorf("%w: empty type", ErrUnknownColumnType)
	case len(fields) > 1:
		// attributes like "unsigned" or "zerofill" have no shape equivalent
		return Datatype{}, fmt.Errorf("%w: %s", ErrUnknownColumnType, columnType)
	}
	full := fields[0]
	if length != "" && !strings.Contains(full, "(") {
		full += "(" + length + ")"
	}

	if m := decimalPattern.FindStringSubmatch(full); m != nil {
		return Datatype{ID: "xsd:decimal", Precision: m[1], Scale: m[2]}, nil
	}

	name, size := full, ""
	if m := lengthPattern.FindStringSubmatch(full); m != nil {
		name, size = m[1], m[2]
	}

	switch name {
	case "varchar":
		if size == "" {
			size = defaultVarcharLength
		}
		return Datatype{ID: "xsd:string", MaxLength: size}, nil
	case "int", "integer":
		return Datatype{ID: "xsd:integer", MaxLength: size}, nil
	case "date":
		return Datatype{ID: "xsd:date"}, nil
	case "datetime":
		return Datatype{ID: "xsd:dateTime"}, nil
	case "double":
		return Datatype{ID: "xsd:double"}, nil
	case "float":
		return Datatype{ID: "xsd:float"}, nil
	}

	if xsd, ok := overridden[name]; ok {
		return Datatype{ID: xsd, MaxLength: size, MySQLColumnDataType: name}, nil
	}

	return Datatype{}, fmt.Errorf("%w: %s", ErrUnknownColumnType, columnType)
}
