package fillform

import (
	"fmt"
	"strings"
)

const blankValuePlaceholder = 20

// RenderPopulatedForm produces a markdown rendering of the form with the
// record's current values, wrapped in a fenced code block. Deterministic:
// the same inputs always yield byte-identical output.
//
// "Unanswered" renders as a blank-line placeholder and the literal "null"
// renders as an empty value. A multiple-choice option is checked when it
// appears in the recorded value; the substring match for string values is
// deliberately permissive and can false-positive for options that are
// substrings of other options.
func RenderPopulatedForm(title string, fields []FormField, record map[string]any) (string, error) {
	var parts []string
	for _, field := range fields {
		value := normalizedValue(record[field.ID])
		switch field.Type {
		case FieldTypeText, FieldTypeDate, FieldTypeSignature:
			parts = append(parts, fmt.Sprintf("*%s:*\n\n%s", field.Name, valueText(value)))

		case FieldTypeMultipleChoice:
			parts = append(parts, fmt.Sprintf("*%s:*\n", field.Name))
			for _, option := range field.Options {
				if optionSelected(option, value) {
					parts = append(parts, fmt.Sprintf("- [x] %s\n", option))
					continue
				}
				parts = append(parts, fmt.Sprintf("- [ ] %s\n", option))
			}

		default:
			return "", fmt.Errorf("unsupported field type: %q for field %q", field.Type, field.ID)
		}
	}

	return strings.Join([]string{
		"```markdown",
		fmt.Sprintf("## %s", title),
		"",
		strings.Join(parts, "\n\n"),
		"```",
	}, "\n"), nil
}

// normalizedValue maps the record's raw value to the value used for
// rendering. Empty-ish values collapse to "".
func normalizedValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		switch v {
		case "", "null":
			return ""
		case "Unanswered":
			return strings.Repeat("_", blankValuePlaceholder)
		}
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v
	default:
		return value
	}
}

func valueText(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func optionSelected(option string, value any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, option)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == option {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == option {
				return true
			}
		}
	}
	return false
}
