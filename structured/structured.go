// Package structured turns a chat completion into a typed value by forcing
// the model to call a single tool whose arguments conform to the output type.
package structured

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// PromptBuilder builds the message exchange for one input.
type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// Chain is a reusable structured-completion pipeline. The output schema is
// inferred from TOutput's struct tags and declared as a forced tool call.
// A response without a conforming tool call is an error; there is no local
// retry and no streaming.
type Chain[TInput, TOutput any] struct {
	promptBuilder PromptBuilder[TInput]
	chatModel     model.ToolCallingChatModel
	toolInfo      *schema.ToolInfo
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &Chain[TInput, TOutput]{
		promptBuilder: promptBuilder,
		chatModel:     chatModel,
		toolInfo:      toolInfo,
	}, nil
}

// Invoke runs one completion and parses the forced tool call into TOutput.
// The returned metadata is opaque diagnostic payload (finish reason, token
// usage) suitable for debug reporting.
func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, map[string]any, error) {
	messages, err := s.promptBuilder(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{s.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.toolInfo.Name),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("call model failed: %w", err)
	}
	if len(response.ToolCalls) == 0 {
		return nil, responseMetadata(response), fmt.Errorf("no ToolCall found in model response: %s", response.Content)
	}

	var result TOutput
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &result); err != nil {
		return nil, responseMetadata(response), fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}

	return &result, responseMetadata(response), nil
}

func (s *Chain[TInput, TOutput]) ToolInfo() *schema.ToolInfo {
	return s.toolInfo
}

func responseMetadata(response *schema.Message) map[string]any {
	meta := map[string]any{}
	if response == nil || response.ResponseMeta == nil {
		return meta
	}
	if response.ResponseMeta.FinishReason != "" {
		meta["finish_reason"] = response.ResponseMeta.FinishReason
	}
	if usage := response.ResponseMeta.Usage; usage != nil {
		meta["usage"] = map[string]any{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
		}
	}
	return meta
}
