// Package yamlutil wraps YAML parsing to isolate the external dependency.
// JSON is a subset of YAML, so the same entry points decode the preprocessor
// section mdBook hands over as JSON and the YAML files given with --config.
package yamlutil

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// HostKeys are the keys mdBook itself reads from every preprocessor table.
var HostKeys = []string{"command", "renderers", "before", "after", "optional"}

// MaxInputSize limits input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes YAML or JSON into v, ignoring unknown fields.
// mdBook leaves its HostKeys in every preprocessor table, so the lenient
// form is the one used for book sections.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnknownKeys returns, sorted, the top-level keys of data that neither map
// to a yaml-tagged field of the struct v points to nor belong to HostKeys.
// A book section keeps rendering with such keys; callers report them.
func UnknownKeys(data []byte, v any) ([]string, error) {
	if err := validateInput(data, v); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}

	known := fieldKeys(reflect.TypeOf(v))
	var unknown []string
	for key := range raw {
		if !known[key] && !slices.Contains(HostKeys, key) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown, nil
}

// fieldKeys collects the yaml keys of a struct type's fields.
func fieldKeys(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(map[string]bool)
	if t.Kind() != reflect.Struct {
		return keys
	}
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = strings.ToLower(f.Name)
		}
		keys[name] = true
	}
	return keys
}
