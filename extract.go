package fillform

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/fillform/structured"
)

const (
	extractToolName = "extract_candidate_values"
	extractToolDesc = "Report candidate form-field values found in the provided document, with an explanation for each candidate."

	formFieldsPlaceholder = "{{form_fields}}"
)

type extractInput struct {
	instruction string
	content     string
}

// Extractor mines candidate field values from one document via a structured
// completion. A malformed or non-conforming model response is the chain's
// contract to reject; it propagates with no local recovery.
type Extractor struct {
	chain *structured.Chain[extractInput, FieldValueCandidates]
}

func NewExtractor(chatModel model.ToolCallingChatModel) (*Extractor, error) {
	chain, err := structured.NewChain[extractInput, FieldValueCandidates](
		chatModel,
		buildExtractPrompt,
		extractToolName,
		extractToolDesc,
	)
	if err != nil {
		return nil, fmt.Errorf("create extraction chain: %w", err)
	}
	return &Extractor{chain: chain}, nil
}

// Extract runs one extraction over a document's content. The instruction's
// {{form_fields}} placeholder is replaced with a JSON rendering of the field
// definitions. The returned metadata is opaque diagnostic payload.
func (e *Extractor) Extract(
	ctx context.Context,
	instruction string,
	fields []FormField,
	documentContent string,
) (*FieldValueCandidates, map[string]any, error) {
	fieldsJSON, err := sonic.ConfigStd.MarshalIndent(struct {
		Fields []FormField `json:"fields"`
	}{Fields: fields}, "", "    ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal form fields: %w", err)
	}

	return e.chain.Invoke(ctx, extractInput{
		instruction: strings.ReplaceAll(instruction, formFieldsPlaceholder, string(fieldsJSON)),
		content:     documentContent,
	})
}

func buildExtractPrompt(ctx context.Context, input extractInput) ([]*schema.Message, error) {
	return []*schema.Message{
		schema.SystemMessage(input.instruction),
		schema.UserMessage(input.content),
	}, nil
}
