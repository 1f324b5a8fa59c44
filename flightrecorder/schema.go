package flightrecorder

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaRegistry compiles and caches one JSON schema per EventKind,
// following the teacher's validatePayloadJSONAgainstSchema pattern
// (compile-per-call there; here compiled once at construction and reused,
// since the schema set is fixed at boot rather than per-request).
type SchemaRegistry struct {
	schemas map[EventKind]*jsonschema.Schema
	// permittedKeys holds the exact key set for sensitive kinds; a payload
	// key outside this set is rejected before schema validation even runs.
	permittedKeys map[EventKind]map[string]struct{}
}

// NewSchemaRegistry compiles the per-kind schema documents in defs into a
// SchemaRegistry. defs maps an EventKind to its raw JSON Schema document.
func NewSchemaRegistry(defs map[EventKind]json.RawMessage) (*SchemaRegistry, error) {
	r := &SchemaRegistry{
		schemas:       make(map[EventKind]*jsonschema.Schema, len(defs)),
		permittedKeys: make(map[EventKind]map[string]struct{}, len(defs)),
	}
	for kind, raw := range defs {
		var schemaDoc any
		if err := json.Unmarshal(raw, &schemaDoc); err != nil {
			return nil, NewSchemaViolation(fmt.Sprintf("unmarshal schema for %s", kind), err)
		}
		resource := string(kind) + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(resource, schemaDoc); err != nil {
			return nil, NewSchemaViolation(fmt.Sprintf("add schema resource for %s", kind), err)
		}
		schema, err := c.Compile(resource)
		if err != nil {
			return nil, NewSchemaViolation(fmt.Sprintf("compile schema for %s", kind), err)
		}
		r.schemas[kind] = schema
		if props, ok := schemaDoc.(map[string]any)["properties"].(map[string]any); ok {
			keys := make(map[string]struct{}, len(props))
			for k := range props {
				keys[k] = struct{}{}
			}
			r.permittedKeys[kind] = keys
		}
	}
	return r, nil
}

// Validate checks payload against the schema registered for kind, and for
// a Sensitive kind additionally rejects any top-level key outside the
// schema's declared properties (§4.4: "strict no unknown keys").
func (r *SchemaRegistry) Validate(kind EventKind, payload json.RawMessage) error {
	if len(payload) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return NewSchemaViolation(fmt.Sprintf("unmarshal payload for %s", kind), err)
	}

	if kind.Sensitive() {
		if obj, ok := doc.(map[string]any); ok {
			permitted := r.permittedKeys[kind]
			var unknown []string
			for k := range obj {
				if _, ok := permitted[k]; !ok {
					unknown = append(unknown, k)
				}
			}
			if len(unknown) > 0 {
				sort.Strings(unknown)
				return NewUnknownKeys(kind, unknown)
			}
		}
	}

	schema, ok := r.schemas[kind]
	if !ok {
		return nil
	}
	if err := schema.Validate(doc); err != nil {
		return NewSchemaViolation(fmt.Sprintf("payload for %s", kind), err)
	}
	return nil
}
