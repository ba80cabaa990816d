package startpage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates a whole config document.
type ConfigValidator interface {
	Validate(cfg DashboardConfig) error
}

// JSONSchemaValidator checks configs against the built-in JSON schema. The
// schema is compiled once on first use.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate ensures cfg satisfies the config schema.
func (v *JSONSchemaValidator) Validate(cfg DashboardConfig) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cfg.Clone())
	if err != nil {
		return fmt.Errorf("startpage: marshal config: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("startpage: normalize config: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("startpage: config failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(configSchema())
		if err != nil {
			v.err = fmt.Errorf("startpage: marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const name = "startpage-config.json"
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("startpage: load schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(name)
		if v.err != nil {
			v.err = fmt.Errorf("startpage: compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

func configSchema() map[string]any {
	str := map[string]any{"type": "string"}
	id := map[string]any{"type": "string", "minLength": 1}
	order := map[string]any{"type": "integer"}
	apiConfig := map[string]any{
		"type":     "object",
		"required": []string{"endpoint"},
		"properties": map[string]any{
			"endpoint":        map[string]any{"type": "string", "minLength": 1},
			"method":          map[string]any{"type": "string", "enum": []string{"GET", "POST"}},
			"headers":         map[string]any{"type": "object", "additionalProperties": str},
			"body":            str,
			"displayField":    str,
			"refreshInterval": map[string]any{"type": "integer", "minimum": 0},
		},
	}
	service := map[string]any{
		"type":     "object",
		"required": []string{"id", "name", "url", "subcategory"},
		"properties": map[string]any{
			"id":          id,
			"name":        str,
			"url":         str,
			"icon":        str,
			"description": str,
			"subcategory": str,
			"order":       order,
			"apiConfig":   apiConfig,
		},
	}
	subcategory := map[string]any{
		"type":     "object",
		"required": []string{"id", "name", "categoryId"},
		"properties": map[string]any{
			"id":         id,
			"name":       str,
			"icon":       str,
			"color":      str,
			"categoryId": str,
			"order":      order,
		},
	}
	category := map[string]any{
		"type":     "object",
		"required": []string{"id", "name"},
		"properties": map[string]any{
			"id":    id,
			"name":  str,
			"icon":  str,
			"color": str,
			"order": order,
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"services", "subcategories", "categories", "searchEngine"},
		"properties": map[string]any{
			"services":        map[string]any{"type": "array", "items": service},
			"subcategories":   map[string]any{"type": "array", "items": subcategory},
			"categories":      map[string]any{"type": "array", "items": category},
			"searchEngine":    map[string]any{"type": "string", "enum": []string{"google", "bing", "duckduckgo", "custom"}},
			"customSearchUrl": str,
			"showWeather":     map[string]any{"type": "boolean"},
			"weatherLocation": str,
			"theme":           map[string]any{"type": "string", "enum": []string{"default", "cartoon", "warm", "aqua-gold"}},
		},
	}
}

type noopConfigValidator struct{}

func (noopConfigValidator) Validate(DashboardConfig) error { return nil }
