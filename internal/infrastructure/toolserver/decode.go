package toolserver

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// Violation is one rejected argument.
type Violation struct {
	Path   string
	Reason string
}

// ArgumentError lists every argument violation of a single call.
type ArgumentError struct {
	Violations []Violation
}

func (e *ArgumentError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Reason)
	}
	return strings.Join(parts, ", ")
}

// decodeArgs fills the struct pointed to by dst from raw call arguments. Absent or
// null properties take their `default` tag; present ones must decode into the field
// type. The result is then checked against the `validate` tags. Unknown properties
// are ignored.
func decodeArgs(raw map[string]any, dst any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()

	order := make(map[string]int, t.NumField())
	mistyped := make(map[string]bool)
	var violations []Violation

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := jsonName(field)
		if name == "" {
			continue
		}
		order[name] = i

		value, present := raw[name]
		if !present || value == nil { // null трактуется как отсутствующее поле
			if def, ok := field.Tag.Lookup("default"); ok {
				if err := setDefault(v.Field(i), def); err != nil {
					return fmt.Errorf("invalid default for %s: %w", name, err)
				}
			}
			continue
		}
		if reason := assign(v.Field(i), value); reason != "" {
			violations = append(violations, Violation{Path: name, Reason: reason})
			mistyped[name] = true
		}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			if mistyped[fe.Field()] {
				continue
			}
			violations = append(violations, Violation{Path: fe.Field(), Reason: describe(fe)})
		}
	}

	if len(violations) == 0 {
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return order[violations[i].Path] < order[violations[j].Path]
	})
	return &ArgumentError{Violations: violations}
}

// assign decodes value into field and returns a reason when the JSON type does not fit.
func assign(field reflect.Value, value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return "Invalid value"
	}
	target := reflect.New(field.Type())
	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return fmt.Sprintf("Expected %s, received %s", expectedType(field.Kind()), receivedType(value))
	}
	field.Set(target.Elem())
	return ""
}

func setDefault(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

func expectedType(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	default:
		return jsonSchemaType(kind)
	}
}

func receivedType(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64, float32, int, int64, jsoniter.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, o := range options {
			options[i] = "'" + o + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(options, " | "), fe.Value())
	case "min":
		return "Number must be greater than or equal to " + fe.Param()
	case "max":
		return "Number must be less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
