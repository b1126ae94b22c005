package fillform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPopulatedForm(t *testing.T) {
	fields := []FormField{
		{ID: "name", Name: "name", Type: FieldTypeText, Required: true},
		{ID: "color", Name: "color", Type: FieldTypeMultipleChoice, Options: []string{"red", "blue"}, Selections: SelectOne},
	}
	record := map[string]any{"name": "Sam", "color": "blue"}

	got, err := RenderPopulatedForm("My Form", fields, record)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "```markdown\n## My Form\n"))
	assert.True(t, strings.HasSuffix(got, "\n```"))
	assert.Contains(t, got, "*name:*\n\nSam")
	assert.Contains(t, got, "- [x] blue")
	assert.Contains(t, got, "- [ ] red")
}

func TestRenderPopulatedFormIsIdempotent(t *testing.T) {
	fields := testFormFields()
	record := map[string]any{
		"name":     "Sam",
		"color":    "red",
		"toppings": []any{"ham"},
	}

	first, err := RenderPopulatedForm("My Form", fields, record)
	require.NoError(t, err)
	second, err := RenderPopulatedForm("My Form", fields, record)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderValueNormalization(t *testing.T) {
	fields := []FormField{{ID: "name", Name: "name", Type: FieldTypeText}}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"unanswered renders as blank line", "Unanswered", "*name:*\n\n" + strings.Repeat("_", 20)},
		{"null renders empty", "null", "*name:*\n\n"},
		{"missing renders empty", nil, "*name:*\n\n"},
		{"verbatim otherwise", "Sam", "*name:*\n\nSam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := map[string]any{}
			if tt.value != nil {
				record["name"] = tt.value
			}
			got, err := RenderPopulatedForm("F", fields, record)
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestRenderCheckboxMatching(t *testing.T) {
	fields := []FormField{
		{ID: "color", Name: "color", Type: FieldTypeMultipleChoice, Options: []string{"A", "B"}, Selections: SelectOne},
	}

	got, err := RenderPopulatedForm("F", fields, map[string]any{"color": "B"})
	require.NoError(t, err)
	assert.Contains(t, got, "- [ ] A")
	assert.Contains(t, got, "- [x] B")

	// Unanswered choice fields leave every box unchecked.
	got, err = RenderPopulatedForm("F", fields, map[string]any{"color": "Unanswered"})
	require.NoError(t, err)
	assert.NotContains(t, got, "- [x]")
}

func TestRenderMultiSelectMembership(t *testing.T) {
	fields := []FormField{
		{ID: "toppings", Name: "Toppings", Type: FieldTypeMultipleChoice, Options: []string{"cheese", "ham"}, Selections: SelectMany},
	}

	got, err := RenderPopulatedForm("F", fields, map[string]any{"toppings": []any{"ham"}})
	require.NoError(t, err)
	assert.Contains(t, got, "- [ ] cheese")
	assert.Contains(t, got, "- [x] ham")
}

func TestRenderUnknownFieldTypeFails(t *testing.T) {
	fields := []FormField{{ID: "photo", Name: "Photo", Type: FieldType("image")}}

	_, err := RenderPopulatedForm("F", fields, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported field type")
}
