package gates

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// SchemaGate enforces §4.3 gate 1: schema_version is exactly "poe-1.0",
// every input is a well-typed ArtifactHandle (guaranteed by
// PlannedOperation's Go types), and params satisfies the operation's
// declared params_schema when the engine catalog names one. It does not
// decide whether the engine or capability exists, or whether determinism
// is within bounds — those are later gates' concerns.
type SchemaGate struct {
	Catalog EngineCatalog
}

// Name implements Gate.
func (SchemaGate) Name() mex.GateName { return mex.GateSchema }

// Check implements Gate.
func (g SchemaGate) Check(_ *corecontext.Context, op *mex.PlannedOperation) error {
	if err := op.Validate(); err != nil {
		return err
	}
	if op.EngineID == "" {
		return mex.NewSchemaViolation("engine_id is required")
	}
	if op.Operation == "" {
		return mex.NewSchemaViolation("operation is required")
	}
	if g.Catalog == nil {
		return nil
	}
	decl, ok := g.Catalog.Lookup(op.EngineID)
	if !ok {
		// Unknown-engine rejection belongs to IntegrityGate; nothing to
		// validate params against here.
		return nil
	}
	raw, ok := decl.ParamsSchemas[op.Operation]
	if !ok || len(raw) == 0 {
		return nil
	}
	return validateParamsSchema(op.Operation, raw, op.Params)
}

// validateParamsSchema compiles schemaDoc and validates params against it,
// following the same compile-then-validate sequence as
// flightrecorder.SchemaRegistry (itself grounded on
// registry/service.go's validatePayloadJSONAgainstSchema).
func validateParamsSchema(operation string, schemaDoc, params json.RawMessage) error {
	var schemaAny any
	if err := json.Unmarshal(schemaDoc, &schemaAny); err != nil {
		return mex.NewSchemaViolation(fmt.Sprintf("unmarshal params_schema for %s: %v", operation, err))
	}
	resource := operation + ".params_schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resource, schemaAny); err != nil {
		return mex.NewSchemaViolation(fmt.Sprintf("add params_schema resource for %s: %v", operation, err))
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return mex.NewSchemaViolation(fmt.Sprintf("compile params_schema for %s: %v", operation, err))
	}

	var doc any = nil
	if len(params) > 0 {
		if err := json.Unmarshal(params, &doc); err != nil {
			return mex.NewSchemaViolation(fmt.Sprintf("unmarshal params for %s: %v", operation, err))
		}
	}
	if err := schema.Validate(doc); err != nil {
		return mex.NewSchemaViolation(fmt.Sprintf("params for %s violates params_schema: %v", operation, err))
	}
	return nil
}
