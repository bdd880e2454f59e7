package smartspace

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names accepted by schemaRegistry.Validate. A "[]" prefix validates
// a JSON array whose elements match the named schema.
const (
	schemaWorkspace      = "workspace"
	schemaMessageThread  = "message_thread"
	schemaMessageThreads = "message_threads"
	schemaMessage        = "message"
	schemaComment        = "comment"
	schemaNotification   = "notification"
	schemaNotifications  = "notifications"
	schemaFileInfo       = "file_info"
	schemaModel          = "model"
)

const schemaBaseURL = "https://smartspace.ai/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

type schemaRegistry struct {
	schemas map[string]*jsonschema.Schema
}

var (
	defaultSchemasOnce sync.Once
	defaultSchemasSet  *schemaRegistry
)

func defaultSchemas() *schemaRegistry {
	defaultSchemasOnce.Do(func() {
		registry, err := newSchemaRegistry()
		if err != nil {
			// The schemas are embedded at build time
			panic(fmt.Sprintf("smartspace: invalid embedded schemas: %v", err))
		}
		defaultSchemasSet = registry
	})
	return defaultSchemasSet
}

func newSchemaRegistry() (*schemaRegistry, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", entry.Name(), err)
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	registry := &schemaRegistry{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		registry.schemas[name] = schema
	}

	return registry, nil
}

// Validate checks a raw JSON document against the named schema
func (r *schemaRegistry) Validate(name string, document []byte) error {
	var value interface{}
	if err := json.Unmarshal(document, &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return r.ValidateValue(name, value)
}

// ValidateValue checks an already decoded JSON value against the named schema
func (r *schemaRegistry) ValidateValue(name string, value interface{}) error {
	itemName, isArray := strings.CutPrefix(name, "[]")

	schema, ok := r.schemas[itemName]
	if !ok {
		return fmt.Errorf("unknown schema %q", itemName)
	}

	if !isArray {
		return schema.Validate(value)
	}

	items, ok := value.([]interface{})
	if !ok {
		if value == nil {
			return nil
		}
		return fmt.Errorf("expected a JSON array for %s", name)
	}

	for i, item := range items {
		if err := schema.Validate(item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}

	return nil
}
