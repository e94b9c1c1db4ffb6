package types

import "strings"

// FieldType is the primitive storage type a module field is declared with.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInt     FieldType = "int"
	FieldTypeDecimal FieldType = "decimal"
	FieldTypeDate    FieldType = "date"
	FieldTypeBinary  FieldType = "binary"
	FieldTypeObject  FieldType = "object"
	FieldTypeArray   FieldType = "array"
)

func ParseFieldType(raw string) (FieldType, bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(raw))) {
	case FieldTypeString:
		return FieldTypeString, true
	case FieldTypeInt:
		return FieldTypeInt, true
	case FieldTypeDecimal:
		return FieldTypeDecimal, true
	case FieldTypeDate:
		return FieldTypeDate, true
	case FieldTypeBinary:
		return FieldTypeBinary, true
	case FieldTypeObject:
		return FieldTypeObject, true
	case FieldTypeArray:
		return FieldTypeArray, true
	default:
		return "", false
	}
}

// Numeric reports whether operands of this type need numeric coercion.
func (t FieldType) Numeric() bool {
	return t == FieldTypeInt || t == FieldTypeDecimal
}

// ModuleField is one declared field of a module schema.
type ModuleField struct {
	FieldName string    `json:"field_name"`
	FieldType FieldType `json:"field_type"`
}
