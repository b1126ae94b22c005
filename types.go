// Package fillform implements one step of a multi-step conversational
// assistant: filling out a form through guided conversation, pulling
// candidate values from uploaded documents.
package fillform

import (
	"github.com/tbxark/fillform/session"
)

// FieldType is the kind of value a form field holds.
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeDate           FieldType = "date"
	FieldTypeSignature      FieldType = "signature"
	FieldTypeMultipleChoice FieldType = "multiple_choice"
)

// SelectionMode is how many options a multiple-choice field accepts.
type SelectionMode string

const (
	SelectOne  SelectionMode = "one"
	SelectMany SelectionMode = "many"
)

// FormField describes one field of the form being filled. Fields are
// immutable once the form is parsed upstream.
type FormField struct {
	ID          string    `json:"id" jsonschema:"description=The unique identifier of the field within the form"`
	Name        string    `json:"name" jsonschema:"description=The human readable name of the field"`
	Description string    `json:"description,omitempty" jsonschema:"description=What the field is for"`
	Type        FieldType `json:"type" jsonschema:"description=The type of the field"`
	// Options and Selections apply to multiple_choice fields only.
	Options    []string      `json:"options,omitempty" jsonschema:"description=The options for a multiple choice field"`
	Selections SelectionMode `json:"option_selections_allowed,omitempty" jsonschema:"description=How many options may be selected"`
	Required   bool          `json:"required" jsonschema:"description=Whether the field must be filled for the form to be complete"`
}

// Attachment is one uploaded document: filename plus extracted text content.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// FieldValueCandidate is one hypothesis about a field's value mined from a
// document. A FieldID that does not reference a known form field is tolerated
// as an inert hint.
type FieldValueCandidate struct {
	FieldID     string `json:"field_id" jsonschema:"required,description=The ID of the field that the value is a candidate for"`
	Value       string `json:"value" jsonschema:"required,description=The value from the document for this field"`
	Explanation string `json:"explanation" jsonschema:"required,description=The explanation of why this value is a candidate for the field"`
}

// FieldValueCandidates is the extraction result for one document.
type FieldValueCandidates struct {
	Response string                `json:"response" jsonschema:"required,description=The natural language response to send to the user"`
	Fields   []FieldValueCandidate `json:"fields" jsonschema:"description=The candidate values found in the document"`
}

// Request is the inbound call contract for one step invocation.
type Request struct {
	Session      session.Session
	FormFilename string
	FormTitle    string
	Fields       []FormField
	UserMessage  string
	Attachments  []Attachment
}

// Status discriminates the three terminal outcomes of a step.
type Status string

const (
	// StatusComplete means the form has been fully filled.
	StatusComplete Status = "complete"
	// StatusIncomplete means the conversation needs more turns; Message holds
	// the next assistant question.
	StatusIncomplete Status = "incomplete"
	// StatusError means the conversation engine failed; Message holds a
	// user-visible error description.
	StatusError Status = "error"
)

// Response is the typed result of one step invocation. Record and Markdown
// are only set when Status is StatusComplete.
type Response struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Record   map[string]any `json:"record,omitempty"`
	Markdown string         `json:"markdown,omitempty"`
	Debug    map[string]any `json:"debug,omitempty"`
}

// StepState is the step's own persisted state: the last rendered markdown of
// the populated form, exposed read-only to the inspection surface.
type StepState struct {
	PopulatedFormMarkdown string `json:"populated_form_markdown"`
}
