package domain

import "strings"

// Field identifies one editable column of a tap assignment. The set is closed:
// edits name a field from this enumeration and anything else is rejected,
// rather than building a write expression from operator input.
type Field string

// Editable fields. Serving-cost fields are constructed per configured volume
// via ServingCostField.
const (
	FieldBrewery     Field = "brewery"
	FieldName        Field = "name"
	FieldStyle       Field = "style"
	FieldPrice       Field = "price_per_liter"
	FieldDescription Field = "description"
)

const servingCostPrefix = "cost:"

// ServingCostField returns the field identifier for one serving volume
// (e.g. ServingCostField("400ml") edits the 400ml pour price).
func ServingCostField(volume string) Field {
	return Field(servingCostPrefix + volume)
}

// ServingVolume returns the volume label if f is a serving-cost field.
func (f Field) ServingVolume() (string, bool) {
	v, ok := strings.CutPrefix(string(f), servingCostPrefix)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Numeric reports whether the field holds a non-negative decimal.
func (f Field) Numeric() bool {
	if _, ok := f.ServingVolume(); ok {
		return true
	}
	return f == FieldPrice
}

// EditableFields returns the full editable field set for the configured
// serving volumes, in prompt order.
func EditableFields(volumes []string) []Field {
	fields := []Field{FieldBrewery, FieldName, FieldStyle, FieldPrice}
	for _, v := range volumes {
		fields = append(fields, ServingCostField(v))
	}
	return append(fields, FieldDescription)
}

// Valid reports whether f belongs to the editable set for the given volumes.
func (f Field) Valid(volumes []string) bool {
	switch f {
	case FieldBrewery, FieldName, FieldStyle, FieldPrice, FieldDescription:
		return true
	}
	if v, ok := f.ServingVolume(); ok {
		for _, volume := range volumes {
			if v == volume {
				return true
			}
		}
	}
	return false
}
