package fillform

import (
	"fmt"

	"github.com/tbxark/fillform/conversation"
)

// BuildRecordSchema converts the form's field list into the dynamic record
// schema the conversation engine fills. The same field list always produces
// an identical schema, so persisted engine state reloads safely.
//
// An unsupported field type or selection mode is a configuration error and
// fails immediately.
func BuildRecordSchema(fields []FormField) (*conversation.RecordSchema, error) {
	properties := make(map[string]any, len(fields))
	infos := make([]conversation.FieldInfo, 0, len(fields))
	var required []string
	var pointers []string

	for _, field := range fields {
		property, multiSelect, err := fieldProperty(field)
		if err != nil {
			return nil, err
		}
		properties[field.ID] = property

		if field.Required {
			required = append(required, field.ID)
		}
		pointers = append(pointers, "/"+field.ID)
		if multiSelect {
			pointers = append(pointers, "/"+field.ID+"/-")
		}
		infos = append(infos, conversation.FieldInfo{
			ID:          field.ID,
			Name:        field.Name,
			Description: field.Description,
			Required:    field.Required,
			Options:     field.Options,
			MultiSelect: multiSelect,
		})
	}

	raw := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	return conversation.NewRecordSchema(raw, infos, required, pointers)
}

func fieldProperty(field FormField) (map[string]any, bool, error) {
	property := map[string]any{}
	if field.Name != "" {
		property["title"] = field.Name
	}
	if field.Description != "" {
		property["description"] = field.Description
	}

	multiSelect := false
	switch field.Type {
	case FieldTypeText, FieldTypeDate, FieldTypeSignature:
		if field.Required {
			property["type"] = "string"
		} else {
			property["type"] = []any{"string", "null"}
		}

	case FieldTypeMultipleChoice:
		options := make([]any, 0, len(field.Options)+1)
		for _, option := range field.Options {
			options = append(options, option)
		}
		switch field.Selections {
		case SelectOne:
			if !field.Required {
				options = append(options, nil)
			}
			property["enum"] = options
		case SelectMany:
			multiSelect = true
			if field.Required {
				property["type"] = "array"
			} else {
				property["type"] = []any{"array", "null"}
			}
			property["items"] = map[string]any{"enum": options}
		default:
			return nil, false, fmt.Errorf("unsupported option selections allowed: %q for field %q", field.Selections, field.ID)
		}

	default:
		return nil, false, fmt.Errorf("unsupported field type: %q for field %q", field.Type, field.ID)
	}

	return property, multiSelect, nil
}
