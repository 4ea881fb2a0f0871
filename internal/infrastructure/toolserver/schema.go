package toolserver

import (
	"reflect"
	"strconv"
	"strings"
)

// InputSchema is the JSON Schema object published for a tool's arguments.
type InputSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]*PropertySchema `json:"properties"`
	Required   []string                   `json:"required,omitempty"`
}

// PropertySchema describes a single scalar argument.
type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// schemaFor derives the input schema from the tags of an argument struct type.
func schemaFor(t reflect.Type) InputSchema {
	schema := InputSchema{
		Type:       "object",
		Properties: make(map[string]*PropertySchema, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := jsonName(field)
		if name == "" {
			continue
		}

		prop := &PropertySchema{
			Type:        jsonSchemaType(field.Type.Kind()),
			Description: field.Tag.Get("desc"),
		}
		for _, rule := range splitRules(field.Tag.Get("validate")) {
			switch rule.tag {
			case "required":
				schema.Required = append(schema.Required, name)
			case "oneof":
				prop.Enum = strings.Fields(rule.param)
			case "min":
				prop.Minimum = parseBound(rule.param)
			case "max":
				prop.Maximum = parseBound(rule.param)
			}
		}
		if def, ok := field.Tag.Lookup("default"); ok {
			prop.Default = typedDefault(field.Type.Kind(), def)
		}
		schema.Properties[name] = prop
	}
	return schema
}

type rule struct {
	tag   string
	param string
}

func splitRules(tag string) []rule {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	rules := make([]rule, 0, len(parts))
	for _, p := range parts {
		name, param, _ := strings.Cut(p, "=")
		rules = append(rules, rule{tag: name, param: param})
	}
	return rules
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || !field.IsExported() {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func jsonSchemaType(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	default:
		return "string"
	}
}

func parseBound(param string) *float64 {
	v, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return nil
	}
	return &v
}

func typedDefault(kind reflect.Kind, raw string) any {
	switch jsonSchemaType(kind) {
	case "number":
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return raw
}
