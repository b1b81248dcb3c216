package schema

// FieldType is one of the closed set of recognized dataset field types.
// The set is fixed; validation dispatches on it with a single switch rather
// than per-type validator objects.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldBoolean  FieldType = "boolean"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldURL      FieldType = "url"
	FieldJSON     FieldType = "json"
	FieldArray    FieldType = "array"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
)

var fieldTypes = map[FieldType]bool{
	FieldText:     true,
	FieldNumber:   true,
	FieldDate:     true,
	FieldBoolean:  true,
	FieldEmail:    true,
	FieldPhone:    true,
	FieldURL:      true,
	FieldJSON:     true,
	FieldArray:    true,
	FieldTextarea: true,
	FieldSelect:   true,
	FieldRadio:    true,
	FieldCheckbox: true,
}

// Known reports whether t is a recognized field type.
func (t FieldType) Known() bool {
	return fieldTypes[t]
}

// NeedsOptions reports whether fields of this type must declare a non-empty
// options list.
func (t FieldType) NeedsOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}
