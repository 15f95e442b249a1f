// Package schema validates raw tool arguments against a declarative field list.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Kind is the primitive type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
)

// Field describes one named argument.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Optional    bool
	// Default is applied when an optional field is absent. Nil means no default.
	Default any
	// Choices lists the allowed values of a KindEnum field.
	Choices []string
	Min     *float64
	Max     *float64
}

// Schema is an ordered field list. Fields are checked in declaration order.
type Schema []Field

// ValidationError names the offending field and the constraint it broke.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Constraint)
}

// Bound returns a pointer to v, for Field.Min and Field.Max.
func Bound(v float64) *float64 { return &v }

// Validate checks raw against the schema and returns a defaulted record that
// only holds declared fields.
func (s Schema) Validate(raw map[string]any) (Args, error) {
	out := make(Args, len(s))
	for _, f := range s {
		v, present := raw[f.Name]
		if !present {
			if !f.Optional {
				return nil, &ValidationError{Field: f.Name, Constraint: "required"}
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		coerced, err := f.check(v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	return out, nil
}

// ValidateStrings validates string-only arguments, as delivered for prompts.
// Numeric and boolean fields are parsed from their text form.
func (s Schema) ValidateStrings(raw map[string]string) (Args, error) {
	conv := make(map[string]any, len(raw))
	for _, f := range s {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		switch f.Kind {
		case KindNumber, KindInteger:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, &ValidationError{Field: f.Name, Constraint: "expected " + string(f.Kind)}
			}
			conv[f.Name] = n
		case KindBoolean:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, &ValidationError{Field: f.Name, Constraint: "expected boolean"}
			}
			conv[f.Name] = b
		default:
			conv[f.Name] = v
		}
	}
	return s.Validate(conv)
}

func (f Field) check(v any) (any, error) {
	switch f.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, f.mismatch("expected string")
		}
		return str, nil
	case KindEnum:
		str, ok := v.(string)
		if !ok || !slices.Contains(f.Choices, str) {
			return nil, f.mismatch("expected one of [" + strings.Join(f.Choices, ", ") + "]")
		}
		return str, nil
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, f.mismatch("expected boolean")
		}
		return b, nil
	case KindNumber, KindInteger:
		n, ok := toFloat(v)
		if !ok || math.IsNaN(n) {
			return nil, f.mismatch("expected " + string(f.Kind))
		}
		if f.Kind == KindInteger && n != math.Trunc(n) {
			return nil, f.mismatch("expected integer")
		}
		if f.Min != nil && n < *f.Min {
			return nil, f.mismatch("must be >= " + strconv.FormatFloat(*f.Min, 'f', -1, 64))
		}
		if f.Max != nil && n > *f.Max {
			return nil, f.mismatch("must be <= " + strconv.FormatFloat(*f.Max, 'f', -1, 64))
		}
		if f.Kind == KindInteger {
			return int(n), nil
		}
		return n, nil
	default:
		return nil, f.mismatch("unsupported kind " + string(f.Kind))
	}
}

func (f Field) mismatch(constraint string) *ValidationError {
	return &ValidationError{Field: f.Name, Constraint: constraint}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// JSONSchema renders the field list as a JSON Schema object for tool listings.
func (s Schema) JSONSchema() *jsonschema.Schema {
	root := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s)),
	}
	for _, f := range s {
		prop := &jsonschema.Schema{Description: f.Description, Minimum: f.Min, Maximum: f.Max}
		switch f.Kind {
		case KindEnum:
			prop.Type = "string"
			for _, c := range f.Choices {
				prop.Enum = append(prop.Enum, c)
			}
		default:
			prop.Type = string(f.Kind)
		}
		if f.Default != nil {
			if raw, err := json.Marshal(f.Default); err == nil {
				prop.Default = raw
			}
		}
		root.Properties[f.Name] = prop
		if !f.Optional {
			root.Required = append(root.Required, f.Name)
		}
	}
	return root
}
