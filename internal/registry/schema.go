package registry

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateArgs checks args against schema: every Required property must
// be present and type-match; every property with a Tag gets an
// additional go-playground/validator constraint check via Var. Unknown
// keys in args are allowed through (the tool itself ignores what it
// doesn't read) — the schema is a contract on what's needed, not an
// allow-list on what's tolerated.
func ValidateArgs(schema InputSchema, args map[string]any) error {
	for name, def := range schema.Properties {
		val, present := args[name]
		if !present {
			if def.Required {
				return InvalidInput(fmt.Sprintf("missing required parameter %q", name))
			}
			continue
		}
		if err := checkType(name, def.Type, val); err != nil {
			return err
		}
		if def.Tag != "" {
			if err := validate.Var(val, def.Tag); err != nil {
				return InvalidInput(fmt.Sprintf("parameter %q failed validation %q: %v", name, def.Tag, err))
			}
		}
		if len(def.Enum) > 0 && !inEnum(val, def.Enum) {
			return InvalidInput(fmt.Sprintf("parameter %q must be one of %v", name, def.Enum))
		}
	}
	return nil
}

func checkType(name string, t ParamType, val any) error {
	switch t {
	case ParamTypeString:
		if _, ok := val.(string); !ok {
			return InvalidInput(fmt.Sprintf("parameter %q must be a string", name))
		}
	case ParamTypeBoolean:
		if _, ok := val.(bool); !ok {
			return InvalidInput(fmt.Sprintf("parameter %q must be a boolean", name))
		}
	case ParamTypeInteger:
		if !isWholeNumber(val) {
			return InvalidInput(fmt.Sprintf("parameter %q must be an integer", name))
		}
	case ParamTypeNumber:
		if !isNumber(val) {
			return InvalidInput(fmt.Sprintf("parameter %q must be a number", name))
		}
	case ParamTypeArray:
		if _, ok := val.([]any); !ok {
			return InvalidInput(fmt.Sprintf("parameter %q must be an array", name))
		}
	case ParamTypeObject:
		if _, ok := val.(map[string]any); !ok {
			return InvalidInput(fmt.Sprintf("parameter %q must be an object", name))
		}
	}
	return nil
}

func isNumber(val any) bool {
	switch val.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

func isWholeNumber(val any) bool {
	switch v := val.(type) {
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	default:
		return false
	}
}

func inEnum(val any, enum []any) bool {
	s := fmt.Sprintf("%v", val)
	for _, e := range enum {
		if s == fmt.Sprintf("%v", e) {
			return true
		}
	}
	return false
}

// StringArg reads a required/optional string argument, applying def's
// Default when absent.
func StringArg(args map[string]any, name string, def string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// IntArg reads an integer-ish argument (JSON numbers decode as float64).
func IntArg(args map[string]any, name string, def int) int {
	if v, ok := args[name]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i
			}
		}
	}
	return def
}

// FloatArg reads a numeric argument as float64.
func FloatArg(args map[string]any, name string, def float64) float64 {
	if v, ok := args[name]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// BoolArg reads a boolean argument.
func BoolArg(args map[string]any, name string, def bool) bool {
	if v, ok := args[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
