// Package common provides reference replacement for configuration values.
//
// A config string may reference an environment variable with the {NAME}
// syntax, e.g. api_key = "{ANTHROPIC_API_KEY}". References are resolved once
// at startup after the logger exists. Unknown references stay unchanged and
// are logged as warnings.
package common

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
)

// refPattern matches {NAME} references
var refPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// EnvironmentValues returns the process environment as a lookup map
func EnvironmentValues() map[string]string {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			values[name] = value
		}
	}
	return values
}

// ResolveReferences replaces {NAME} references in every string field of the
// config with values from the environment
func ResolveReferences(config *Config, logger arbor.ILogger) error {
	return ReplaceInStruct(config, EnvironmentValues(), logger)
}

// ReplaceReferences replaces all {NAME} references in input with values from
// the map. Unknown references are left in place.
func ReplaceReferences(input string, values map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return refPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := values[name]; ok {
			return value
		}
		logger.Warn().
			Str("reference", match).
			Msg("Unresolved config reference")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces references in string,
// []string and nested struct fields in place
func ReplaceInStruct(v interface{}, values map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	return replaceInStructValue(val, values, logger)
}

func replaceInStructValue(val reflect.Value, values map[string]string, logger arbor.ILogger) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			old := field.String()
			if updated := ReplaceReferences(old, values, logger); updated != old {
				field.SetString(updated)
				// Values are usually secrets, so only the field name is logged
				logger.Debug().
					Str("field", fieldType.Name).
					Msg("Resolved config reference")
			}

		case reflect.Struct:
			if err := replaceInStructValue(field, values, logger); err != nil {
				return fmt.Errorf("failed to resolve references in field '%s': %w", fieldType.Name, err)
			}

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				if err := replaceInStructValue(field.Elem(), values, logger); err != nil {
					return fmt.Errorf("failed to resolve references in field '%s': %w", fieldType.Name, err)
				}
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				old := elem.String()
				if updated := ReplaceReferences(old, values, logger); updated != old {
					elem.SetString(updated)
				}
			}
		}
	}

	return nil
}
