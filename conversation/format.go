package conversation

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

func formatRulesSection(rules []string) string {
	if len(rules) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Rules you must follow:\n")
	for _, rule := range rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMissingFieldsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing required fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Id", "Description")
	for _, field := range fields {
		_ = table.Append(field.Name, field.ID, field.Description)
	}
	_ = table.Render()
	return strings.TrimRight(buf.String(), "\n")
}

// formatFieldOptionsSection lists the choice options of fields that still
// need a value. Options are numbered so the user can refer to them by number.
func formatFieldOptionsSection(fields []FieldInfo) string {
	var sb strings.Builder
	for _, field := range fields {
		if len(field.Options) == 0 {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString("# Field options:\n")
		}
		mode := "choose exactly one"
		if field.MultiSelect {
			mode = "choose any number"
		}
		sb.WriteString(fmt.Sprintf("%s (%s):\n", field.Name, mode))
		for i, option := range field.Options {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, option))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAllowedPaths(paths []string) string {
	if len(paths) == 0 {
		return "  (all paths allowed)"
	}
	var sb strings.Builder
	for _, path := range paths {
		sb.WriteString("  - ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
