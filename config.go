package fillform

import (
	"github.com/tbxark/fillform/conversation"
)

// DefaultExtractionInstruction is the default instruction for extracting
// candidate form-field values from an uploaded document. The {{form_fields}}
// placeholder is replaced with a JSON rendering of the field definitions.
const DefaultExtractionInstruction = `Given the field definitions below, extract candidate values for these fields from the user provided
attachment.

Only include values that are in the provided attachment.
It is possible that there are multiple candidates for a single field, in which case you should provide
all the candidates and an explanation for each candidate.

Field definitions:
{{form_fields}}`

// Config bundles the step's static configuration: the extraction instruction
// and the conversation policy. Neither is tunable per call.
type Config struct {
	ExtractionInstruction string                  `json:"extraction_instruction"`
	Definition            conversation.Definition `json:"definition"`
}

func DefaultConfig() Config {
	return Config{
		ExtractionInstruction: DefaultExtractionInstruction,
		Definition:            conversation.DefaultDefinition(),
	}
}
