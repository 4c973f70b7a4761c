package core

import "strings"

// SQLType is the declared wire type family of a result column.
type SQLType int

// Type families, modelled on the driver-neutral categories used by catalog APIs.
const (
	TypeUnknown SQLType = iota
	TypeNull
	TypeBoolean
	TypeBit
	TypeTinyInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeFloat
	TypeDouble
	TypeChar
	TypeVarchar
	TypeText
	TypeBinary
	TypeBlob
	TypeDate
	TypeTime
	TypeTimestamp
	TypeJSON
)

var sqlTypeNames = map[SQLType]string{
	TypeUnknown:   "UNKNOWN",
	TypeNull:      "NULL",
	TypeBoolean:   "BOOLEAN",
	TypeBit:       "BIT",
	TypeTinyInt:   "TINYINT",
	TypeSmallInt:  "SMALLINT",
	TypeInteger:   "INTEGER",
	TypeBigInt:    "BIGINT",
	TypeDecimal:   "DECIMAL",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeChar:      "CHAR",
	TypeVarchar:   "VARCHAR",
	TypeText:      "TEXT",
	TypeBinary:    "BINARY",
	TypeBlob:      "BLOB",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeTimestamp: "TIMESTAMP",
	TypeJSON:      "JSON",
}

// String returns the canonical type name.
func (t SQLType) String() string {
	if name, ok := sqlTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsBoolean reports whether values of this type are read as booleans.
func (t SQLType) IsBoolean() bool {
	return t == TypeBoolean || t == TypeBit
}

// IsInteger reports whether t is an integral type.
func (t SQLType) IsInteger() bool {
	switch t {
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt:
		return true
	default:
		return false
	}
}

var databaseTypeNames = map[string]SQLType{
	"NULL":              TypeNull,
	"BOOL":              TypeBoolean,
	"BOOLEAN":           TypeBoolean,
	"BIT":               TypeBit,
	"TINYINT":           TypeTinyInt,
	"INT1":              TypeTinyInt,
	"SMALLINT":          TypeSmallInt,
	"INT2":              TypeSmallInt,
	"YEAR":              TypeSmallInt,
	"MEDIUMINT":         TypeInteger,
	"INT":               TypeInteger,
	"INT4":              TypeInteger,
	"INTEGER":           TypeInteger,
	"BIGINT":            TypeBigInt,
	"INT8":              TypeBigInt,
	"HUGEINT":           TypeDecimal,
	"DECIMAL":           TypeDecimal,
	"NUMERIC":           TypeDecimal,
	"FLOAT":             TypeFloat,
	"FLOAT4":            TypeFloat,
	"REAL":              TypeFloat,
	"DOUBLE":            TypeDouble,
	"FLOAT8":            TypeDouble,
	"DOUBLE PRECISION":  TypeDouble,
	"CHAR":              TypeChar,
	"BPCHAR":            TypeChar,
	"CHARACTER":         TypeChar,
	"VARCHAR":           TypeVarchar,
	"NVARCHAR":          TypeVarchar,
	"CHARACTER VARYING": TypeVarchar,
	"TEXT":              TypeText,
	"TINYTEXT":          TypeText,
	"MEDIUMTEXT":        TypeText,
	"LONGTEXT":          TypeText,
	"ENUM":              TypeText,
	"SET":               TypeText,
	"NAME":              TypeText,
	"UUID":              TypeText,
	"BINARY":            TypeBinary,
	"VARBINARY":         TypeBinary,
	"BYTEA":             TypeBinary,
	"BLOB":              TypeBlob,
	"TINYBLOB":          TypeBlob,
	"MEDIUMBLOB":        TypeBlob,
	"LONGBLOB":          TypeBlob,
	"DATE":              TypeDate,
	"TIME":              TypeTime,
	"TIMETZ":            TypeTime,
	"DATETIME":          TypeTimestamp,
	"TIMESTAMP":         TypeTimestamp,
	"TIMESTAMPTZ":       TypeTimestamp,
	"JSON":              TypeJSON,
	"JSONB":             TypeJSON,
}

// ParseSQLType maps a driver-reported database type name
// (sql.ColumnType.DatabaseTypeName) to its type family.
// Length and precision suffixes and the UNSIGNED marker are ignored.
func ParseSQLType(name string) SQLType {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	n = strings.TrimSpace(strings.TrimPrefix(n, "UNSIGNED "))
	n = strings.TrimSpace(strings.TrimSuffix(n, " UNSIGNED"))
	if t, ok := databaseTypeNames[n]; ok {
		return t
	}
	return TypeUnknown
}
