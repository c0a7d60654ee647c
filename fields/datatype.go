package fields

import (
	"errors"
	"fmt"
	"strings"
)

// DataType enumerates the field kinds supported by schema definitions. The
// set is closed: unrecognized values must be rejected at the boundary via
// Parse rather than defaulted.
type DataType string

const (
	DataTypeShortText  DataType = "short_text"
	DataTypeText       DataType = "text"
	DataTypeDate       DataType = "date"
	DataTypeBoolean    DataType = "boolean"
	DataTypeImage      DataType = "image"
	DataTypeFile       DataType = "file"
	DataTypeList       DataType = "list"
	DataTypeCollection DataType = "collection"
	DataTypeComponent  DataType = "component"
)

// ErrUnknownDataType flags data type strings outside the supported set.
var ErrUnknownDataType = errors.New("fields: unknown data type")

// UnknownDataTypeError carries the offending value for caller diagnostics.
type UnknownDataTypeError struct {
	Value string
}

func (e *UnknownDataTypeError) Error() string {
	if e == nil {
		return ErrUnknownDataType.Error()
	}
	return fmt.Sprintf("%s: %q", ErrUnknownDataType.Error(), e.Value)
}

func (e *UnknownDataTypeError) Unwrap() error {
	return ErrUnknownDataType
}

// All returns the supported data types in declaration order.
func All() []DataType {
	return []DataType{
		DataTypeShortText,
		DataTypeText,
		DataTypeDate,
		DataTypeBoolean,
		DataTypeImage,
		DataTypeFile,
		DataTypeList,
		DataTypeCollection,
		DataTypeComponent,
	}
}

// Parse resolves a raw string into a DataType, failing fast on unknown input.
func Parse(value string) (DataType, error) {
	normalized := DataType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case DataTypeShortText, DataTypeText, DataTypeDate, DataTypeBoolean,
		DataTypeImage, DataTypeFile, DataTypeList, DataTypeCollection,
		DataTypeComponent:
		return normalized, nil
	default:
		return "", &UnknownDataTypeError{Value: value}
	}
}

// Valid reports whether the receiver belongs to the supported set.
func (d DataType) Valid() bool {
	_, err := Parse(string(d))
	return err == nil
}

// Label returns the human-friendly label shown by editing UIs.
func (d DataType) Label() string {
	switch d {
	case DataTypeShortText:
		return "Short Text (max 256 chars)"
	case DataTypeText:
		return "Long Text"
	case DataTypeDate:
		return "Date"
	case DataTypeBoolean:
		return "Boolean"
	case DataTypeImage:
		return "Image"
	case DataTypeFile:
		return "File"
	case DataTypeList:
		return "List (array)"
	case DataTypeCollection:
		return "Collection (relation)"
	case DataTypeComponent:
		return "Component (structured)"
	default:
		return ""
	}
}

// Rules returns the validation rule template for the type. The tokens follow
// the `name` or `name:arg` convention consumed by internal/validation.
func (d DataType) Rules() []string {
	switch d {
	case DataTypeShortText:
		return []string{"string", "max:256"}
	case DataTypeText:
		return []string{"string"}
	case DataTypeDate:
		return []string{"date"}
	case DataTypeBoolean:
		return []string{"boolean"}
	case DataTypeImage, DataTypeFile:
		// Media values travel as opaque upload identifiers; storage and
		// thumbnailing live outside this module.
		return []string{"string"}
	case DataTypeList, DataTypeComponent:
		return []string{"array"}
	case DataTypeCollection:
		return []string{"integer"}
	default:
		return nil
	}
}
