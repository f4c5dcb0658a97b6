package reference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// tablesSchema constrains operator-supplied table files before they are parsed
const tablesSchema = `{
	"type": "object",
	"properties": {
		"allergens": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"additives": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"key": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"category": {"type": "string", "minLength": 1},
					"concern": {"type": "string"},
					"short_term_effects": {"type": "string"},
					"long_term_effects": {"type": "string"},
					"regulatory_status": {"type": "string"},
					"daily_limit": {"type": "string"}
				},
				"required": ["key", "description", "category", "concern"],
				"additionalProperties": false
			}
		}
	},
	"required": ["allergens", "additives"],
	"additionalProperties": false
}`

// document is the on-disk layout of a tables file
type document struct {
	Allergens []string        `yaml:"allergens"`
	Additives []AdditiveEntry `yaml:"additives"`
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the tables compiled into the binary
func Default() *Tables {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Parse(defaultTablesYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded reference tables are invalid: %v", defaultErr))
	}
	return defaultTables
}

// Load reads and validates a tables file from disk
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// LoadOrDefault loads path, or returns the embedded tables when path is empty
func LoadOrDefault(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse validates a YAML (or JSON) tables document and builds Tables from it
func Parse(data []byte) (*Tables, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}

	if err := Validate(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}

	return NewTables(doc.Allergens, doc.Additives)
}

// Validate checks a decoded tables document against the tables schema
func Validate(doc interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(tablesSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid tables document: %s", strings.Join(msgs, "; "))
	}
	return nil
}
