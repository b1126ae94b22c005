package conversation

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Unanswered is the marker a freshly created record holds for every field
// until the conversation produces a value.
const Unanswered = "Unanswered"

// FieldInfo describes one record member for prompting purposes.
type FieldInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	MultiSelect bool     `json:"multi_select,omitempty"`
}

// RecordSchema is the dynamic target schema of a guided conversation. It is
// built once per form and regenerates identically from the same field list,
// so persisted engine state can be reloaded against it safely.
type RecordSchema struct {
	raw      map[string]any
	rawJSON  string
	compiled *jsonschema.Schema
	fields   []FieldInfo
	byID     map[string]FieldInfo
	required []string
	pointers []string
}

// NewRecordSchema compiles a raw JSON-Schema document describing the record.
// The required ids are tracked separately from the document so that partially
// filled records still validate structurally.
func NewRecordSchema(raw map[string]any, fields []FieldInfo, required []string, pointers []string) (*RecordSchema, error) {
	// ConfigStd sorts map keys, keeping regeneration byte-identical.
	rawJSON, err := sonic.ConfigStd.MarshalToString(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal record schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(rawJSON))
	if err != nil {
		return nil, fmt.Errorf("parse record schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", doc); err != nil {
		return nil, fmt.Errorf("add record schema resource: %w", err)
	}
	compiled, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}

	byID := make(map[string]FieldInfo, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}

	return &RecordSchema{
		raw:      raw,
		rawJSON:  rawJSON,
		compiled: compiled,
		fields:   fields,
		byID:     byID,
		required: required,
		pointers: pointers,
	}, nil
}

// JSON returns the schema document as JSON text, for embedding in prompts.
func (s *RecordSchema) JSON() string {
	return s.rawJSON
}

func (s *RecordSchema) Fields() []FieldInfo {
	return s.fields
}

// RequiredIDs returns the ids of fields that must hold a value before the
// conversation can finish.
func (s *RecordSchema) RequiredIDs() []string {
	return s.required
}

// AllowedPointers returns the JSON pointers record patches may touch.
func (s *RecordSchema) AllowedPointers() []string {
	return s.pointers
}

// NewRecord returns a record with every field marked Unanswered.
func (s *RecordSchema) NewRecord() map[string]any {
	record := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		record[f.ID] = Unanswered
	}
	return record
}

// Validate checks the answered members of a record against the schema.
// Unanswered members are skipped; they are tracked by MissingRequired.
func (s *RecordSchema) Validate(record map[string]any) error {
	answered := make(map[string]any, len(record))
	for id, value := range record {
		if isUnanswered(value) {
			continue
		}
		answered[id] = value
	}
	if err := s.compiled.Validate(answered); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}
	return nil
}

// MissingRequired returns the required fields that have no value yet, in
// schema field order.
func (s *RecordSchema) MissingRequired(record map[string]any) []FieldInfo {
	var missing []FieldInfo
	for _, f := range s.fields {
		if !f.Required {
			continue
		}
		if isUnanswered(record[f.ID]) {
			missing = append(missing, f)
		}
	}
	return missing
}

func isUnanswered(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == Unanswered || v == "null"
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
