package conversation

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

const (
	updateRecordToolName = "update_record"
	updateRecordToolDesc = "Generate RFC6902 JSON Patch operations to update the form record based on user input. Only include operations for information explicitly provided by the user."
)

// PatchOperation is one RFC6902 operation against the record.
type PatchOperation struct {
	Op    string `json:"op" jsonschema:"required,enum=add,enum=replace,enum=remove,description=The RFC6902 operation to perform"`
	Path  string `json:"path" jsonschema:"required,description=JSON pointer to the record member to modify"`
	Value any    `json:"value,omitempty" jsonschema:"description=The value to set (omit for remove)"`
}

type updateRecordArgs struct {
	Ops []PatchOperation `json:"ops" jsonschema:"description=Array of RFC6902 JSON Patch operations to apply to the record"`
}

func validatePatchOps(ops []PatchOperation, allowed map[string]bool) error {
	for i, op := range ops {
		if !allowed[op.Path] {
			return fmt.Errorf("operation %d: path %q is not in the allowed paths set", i, op.Path)
		}
	}
	return nil
}

// applyPatch applies ops to a copy of record and returns the result.
// The input record is never mutated.
func applyPatch(record map[string]any, ops []PatchOperation) (map[string]any, error) {
	if len(ops) == 0 {
		return record, nil
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	patched, err := patch.Apply(recordJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(patched, &result); err != nil {
		return nil, fmt.Errorf("patched record is not an object: %w", err)
	}
	return result, nil
}
