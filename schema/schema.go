// Package schema generates machine-readable tool descriptors for
// OpenAI-compatible function calling.
//
// Descriptors are built either declaratively, parameter by parameter with
// documented type strings, or by reflecting a typed argument struct.
package schema

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// ErrSchemaGeneration is returned when a tool descriptor cannot be built.
// An incomplete tool catalog is unsafe to expose to the model, so this
// error aborts Toolbox construction.
var ErrSchemaGeneration = errors.New("failed to generate tool schema")

// Definition is an immutable tool descriptor: the name, purpose and
// parameter schema sent to the model.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON schema object with properties in declaration
	// order; Parameters.Required lists every parameter without a default.
	Parameters *jsonschema.Schema
}

// NewDefinition starts a declarative descriptor with no parameters.
func NewDefinition(name, description string) *Definition {
	return &Definition{
		Name:        name,
		Description: description,
		Parameters: &jsonschema.Schema{
			Type:       "object",
			Properties: jsonschema.NewProperties(),
		},
	}
}

// Param declares a required parameter (one without a default value).
// docType is the documented type string, resolved via TypeFromDoc.
func (d *Definition) Param(name, docType, description string) *Definition {
	d.addParam(name, docType, description)
	d.Parameters.Required = append(d.Parameters.Required, name)
	return d
}

// Optional declares a parameter with a default value; it is excluded
// from the required list.
func (d *Definition) Optional(name, docType, description string) *Definition {
	d.addParam(name, docType, description)
	return d
}

func (d *Definition) addParam(name, docType, description string) {
	typ, enum := TypeFromDoc(docType)
	prop := &jsonschema.Schema{
		Type:        typ,
		Description: description,
		Enum:        enum,
	}
	d.Parameters.Properties.Set(name, prop)
}

// Validate reports whether the descriptor is complete enough to expose
// to the model.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.WithMessage(ErrSchemaGeneration, "tool name is required")
	}
	if d.Description == "" {
		return errors.WithMessagef(ErrSchemaGeneration, "tool %s: description is required", d.Name)
	}
	if d.Parameters == nil || d.Parameters.Properties == nil {
		return errors.WithMessagef(ErrSchemaGeneration, "tool %s: parameters schema is required", d.Name)
	}
	return nil
}

// TypeFromDoc resolves a documented parameter type string to a JSON schema
// type and an optional enumeration:
//   - a string containing "optional" is truncated at the first comma;
//   - a brace-delimited literal set (e.g. {'celsius', 'fahrenheit'}) becomes
//     an enumerated string parameter; on parse failure the remaining type
//     string is mapped as-is;
//   - unrecognized type names map to "string".
func TypeFromDoc(doc string) (string, []any) {
	doc = strings.TrimSpace(doc)
	if strings.Contains(doc, "optional") {
		doc, _, _ = strings.Cut(doc, ",")
	} else if strings.Contains(doc, "{") {
		if enum, ok := parseLiteralSet(doc); ok {
			return "string", enum
		}
	}
	return jsonSchemaType(doc), nil
}

// jsonSchemaType maps native type names to the closed JSON schema type set,
// defaulting to "string" when not recognized.
func jsonSchemaType(name string) string {
	switch strings.TrimSpace(name) {
	case "str", "string":
		return "string"
	case "int", "integer":
		return "integer"
	case "float", "float32", "float64", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "list", "slice", "array":
		return "array"
	case "dict", "map", "object":
		return "object"
	case "None", "NoneType", "nil", "null":
		return "null"
	default:
		return "string"
	}
}

// parseLiteralSet parses a brace-delimited set of quoted literals.
func parseLiteralSet(doc string) ([]any, bool) {
	start := strings.Index(doc, "{")
	end := strings.LastIndex(doc, "}")
	if start == -1 || end <= start {
		return nil, false
	}

	parts := strings.Split(doc[start+1:end], ",")
	enum := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) < 2 {
			return nil, false
		}
		quote := part[0]
		if (quote != '\'' && quote != '"') || part[len(part)-1] != quote {
			return nil, false
		}
		enum = append(enum, part[1:len(part)-1])
	}
	if len(enum) == 0 {
		return nil, false
	}
	return enum, true
}

// FromType derives a parameters schema from a typed argument struct,
// using jsonschema struct tags for descriptions and enums.
func FromType(t reflect.Type) (*jsonschema.Schema, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.WithMessagef(ErrSchemaGeneration, "expected a struct type, got %v", t)
	}

	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	s := r.ReflectFromType(t)
	if s == nil || s.Properties == nil {
		return nil, errors.WithMessagef(ErrSchemaGeneration, "type %s has no properties", t.String())
	}

	// keep only the function-calling fields
	return &jsonschema.Schema{
		Type:       "object",
		Properties: s.Properties,
		Required:   s.Required,
	}, nil
}
