package memory

import "fmt"

// FieldType is the payload type of a filterable metadata field.
type FieldType string

const (
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeBoolean FieldType = "boolean"
)

// ConditionOp is the comparison a filterable field supports in queries.
type ConditionOp string

const (
	OpEq     ConditionOp = "=="
	OpNeq    ConditionOp = "!="
	OpGt     ConditionOp = ">"
	OpGte    ConditionOp = ">="
	OpLt     ConditionOp = "<"
	OpLte    ConditionOp = "<="
	OpAny    ConditionOp = "any"
	OpExcept ConditionOp = "except"
)

// FilterableField declares a metadata field that is payload-indexed by the
// driver and, when Condition is set, accepted as a find filter. A field
// with an empty Condition is indexed but not queryable.
type FilterableField struct {
	// Name is the metadata key, without the "metadata." prefix.
	Name string

	// Description is surfaced to agent runtimes in the tool description.
	Description string

	// Type is the payload type of the field.
	Type FieldType

	// Condition is the comparison applied to filter values. Empty means
	// the field is indexed only.
	Condition ConditionOp

	// Required makes the field mandatory in every filtered find call.
	Required bool
}

// Queryable reports whether the field accepts filter values.
func (f FilterableField) Queryable() bool {
	return f.Condition != ""
}

// FieldCondition is a single validated constraint on a metadata field.
// Value is typed per the field: string, int64, float64, bool, or a
// []string / []int64 slice for the any and except operators.
type FieldCondition struct {
	Field string
	Type  FieldType
	Op    ConditionOp
	Value any
}

// Filter is a conjunction of field conditions applied to a find query.
type Filter []FieldCondition

// ValidateFilterableFields checks a field declaration set for internal
// consistency: known types, known conditions, operators that make sense
// for the field type, and unique names.
func ValidateFilterableFields(fields []FilterableField) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("filterable field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate filterable field %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case FieldTypeKeyword, FieldTypeInteger, FieldTypeFloat, FieldTypeBoolean:
		default:
			return fmt.Errorf("filterable field %q: unsupported type %q", f.Name, f.Type)
		}

		switch f.Condition {
		case "":
		case OpEq, OpNeq:
		case OpGt, OpGte, OpLt, OpLte:
			if f.Type != FieldTypeInteger && f.Type != FieldTypeFloat {
				return fmt.Errorf("filterable field %q: condition %q requires a numeric type, got %q", f.Name, f.Condition, f.Type)
			}
		case OpAny, OpExcept:
			if f.Type != FieldTypeKeyword && f.Type != FieldTypeInteger {
				return fmt.Errorf("filterable field %q: condition %q requires keyword or integer type, got %q", f.Name, f.Condition, f.Type)
			}
		default:
			return fmt.Errorf("filterable field %q: unsupported condition %q", f.Name, f.Condition)
		}

		if f.Required && !f.Queryable() {
			return fmt.Errorf("filterable field %q: required but has no condition", f.Name)
		}
	}
	return nil
}

// BuildFilter validates raw filter values from a tool call against the
// declared fields and produces a Filter. Unknown keys, values for
// index-only fields, missing required fields, and type mismatches all
// fail. Conditions come out in declaration order.
func BuildFilter(fields []FilterableField, values map[string]any) (Filter, error) {
	for name := range values {
		if !hasField(fields, name) {
			return nil, fmt.Errorf("unknown filter field %q", name)
		}
	}

	var filter Filter
	for _, f := range fields {
		raw, ok := values[f.Name]
		if !ok {
			if f.Required {
				return nil, fmt.Errorf("filter field %q is required", f.Name)
			}
			continue
		}
		if !f.Queryable() {
			return nil, fmt.Errorf("filter field %q is index-only and cannot be queried", f.Name)
		}

		value, err := coerceFilterValue(f, raw)
		if err != nil {
			return nil, err
		}

		filter = append(filter, FieldCondition{
			Field: f.Name,
			Type:  f.Type,
			Op:    f.Condition,
			Value: value,
		})
	}
	return filter, nil
}

func hasField(fields []FilterableField, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// coerceFilterValue converts a JSON-decoded value into the field's typed
// form. JSON numbers arrive as float64; integers must be integral.
func coerceFilterValue(f FilterableField, raw any) (any, error) {
	if f.Condition == OpAny || f.Condition == OpExcept {
		return coerceFilterList(f, raw)
	}

	switch f.Type {
	case FieldTypeKeyword:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("filter field %q expects a string, got %T", f.Name, raw)
		}
		return s, nil

	case FieldTypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("filter field %q expects a boolean, got %T", f.Name, raw)
		}
		return b, nil

	case FieldTypeInteger:
		return coerceInteger(f.Name, raw)

	case FieldTypeFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("filter field %q expects a number, got %T", f.Name, raw)
		}
	}
	return nil, fmt.Errorf("filter field %q has unsupported type %q", f.Name, f.Type)
}

// coerceFilterList handles the any and except operators, which take an
// array of the field's scalar type.
func coerceFilterList(f FilterableField, raw any) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("filter field %q with condition %q expects an array, got %T", f.Name, f.Condition, raw)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("filter field %q: empty array", f.Name)
	}

	switch f.Type {
	case FieldTypeKeyword:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("filter field %q expects strings, got %T", f.Name, item)
			}
			out = append(out, s)
		}
		return out, nil

	case FieldTypeInteger:
		out := make([]int64, 0, len(items))
		for _, item := range items {
			n, err := coerceInteger(f.Name, item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("filter field %q: condition %q not supported for type %q", f.Name, f.Condition, f.Type)
}

func coerceInteger(name string, raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		n := int64(v)
		if float64(n) != v {
			return 0, fmt.Errorf("filter field %q expects an integer, got %v", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("filter field %q expects an integer, got %T", name, raw)
	}
}
