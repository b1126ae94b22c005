package conversation

// Unit is the unit a resource budget is expressed in.
type Unit string

const (
	UnitTurns Unit = "turns"
)

// Mode is how a resource budget is enforced.
type Mode string

const (
	// ModeMaximum ends the conversation once the budget is spent, or earlier
	// when the record is complete.
	ModeMaximum Mode = "maximum"
	// ModeExact keeps the conversation going until the budget is spent.
	ModeExact Mode = "exact"
)

// ResourceBudget bounds how long an elicitation may continue.
type ResourceBudget struct {
	Quantity int  `json:"quantity"`
	Unit     Unit `json:"unit"`
	Mode     Mode `json:"mode"`
}

// Definition is the static policy of a guided conversation: behavioral rules,
// the phase script the assistant walks through, optional extra context, and
// the resource budget. It is fixed configuration, not tunable per call.
type Definition struct {
	Rules   []string       `json:"rules"`
	Flow    string         `json:"conversation_flow"`
	Context string         `json:"context"`
	Budget  ResourceBudget `json:"resource_constraint"`
}

// DefaultDefinition returns the standard form-filling conversation policy.
func DefaultDefinition() Definition {
	return Definition{
		Rules: []string{
			"When kicking off the conversation, do not greet the user with Hello or other greetings.",
			"For fields that are not in the provided files, collect the data from the user through conversation.",
			"When providing options for a multiple choice field, provide the options in a numbered-list, so the user can refer to them by number.",
			"When listing anything other than options, like document types, provide them in a bulleted list for improved readability.",
			"When updating the agenda, the data-collection for each form field must be in a separate step.",
			"When asking for data to fill the form, always ask for a single piece of information at a time. Never ask for multiple pieces of information in a single prompt, ex: 'Please provide field Y, and additionally, field X'.",
			"Terminate conversation if inappropriate content is requested.",
		},
		Flow: `1. Inform the user that we've received the form and determined the fields in the form.
2. Inform the user that our goal is help them fill out the form.
3. Ask the user to provide one or more files that might contain data relevant to fill out the form. The files can be PDF, TXT, or DOCX.
4. When asking for files, suggest types of documents that might contain the data.
5. For each field in the form, check if the data is available in the provided files.
6. If the data is not available in the files, ask the user for the data.
7. When the form is filled out, inform the user that you will now generate a document containing the filled form.`,
		Context: "",
		Budget: ResourceBudget{
			Quantity: 15,
			Unit:     UnitTurns,
			Mode:     ModeMaximum,
		},
	}
}
