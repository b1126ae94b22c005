package fillform

import (
	"fmt"
	"strings"
)

// candidatesMessagePart renders one document's extracted candidates into a
// delimited text block the conversation engine can read. Pure and
// deterministic; an empty candidate list renders as a header-only block.
func candidatesMessagePart(filename string, candidates *FieldValueCandidates) string {
	header := fmt.Sprintf("===\nFilename: *%s*\n%s\n", filename, candidates.Response)

	parts := make([]string, 0, len(candidates.Fields)+1)
	parts = append(parts, header)
	for _, candidate := range candidates.Fields {
		parts = append(parts, fmt.Sprintf(
			"\nField id: %s:\n    Value: %s\n    Explanation: %s",
			candidate.FieldID, candidate.Value, candidate.Explanation,
		))
	}
	return strings.Join(parts, "\n")
}

// combineMessage joins the raw user input text with the per-attachment
// candidate blocks into the message handed to the conversation engine.
func combineMessage(userMessage string, candidateParts []string) string {
	return strings.Join([]string{userMessage, strings.Join(candidateParts, "\n")}, "\n")
}
