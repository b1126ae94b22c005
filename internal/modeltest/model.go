// Package modeltest provides a scripted chat model for deterministic tests.
package modeltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Reply is one scripted model response. Err takes precedence; otherwise a
// non-empty ToolName produces a tool-call message with ToolArgs, and Content
// produces a plain assistant message.
type Reply struct {
	Content  string
	ToolName string
	ToolArgs string
	Err      error
}

// Model is a scripted model.ToolCallingChatModel. Each Generate call consumes
// the next Reply and records the request messages for assertions.
type Model struct {
	mu      sync.Mutex
	replies []Reply
	next    int

	// Requests holds the messages of every Generate call, in order.
	Requests [][]*schema.Message
}

func New(replies ...Reply) *Model {
	return &Model{replies: replies}
}

func (m *Model) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, input)
	if m.next >= len(m.replies) {
		return nil, fmt.Errorf("modeltest: no reply scripted for call %d", m.next+1)
	}
	reply := m.replies[m.next]
	m.next++

	if reply.Err != nil {
		return nil, reply.Err
	}
	if reply.ToolName != "" {
		return &schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{
					ID:   fmt.Sprintf("call-%d", m.next),
					Type: "function",
					Function: schema.FunctionCall{
						Name:      reply.ToolName,
						Arguments: reply.ToolArgs,
					},
				},
			},
			ResponseMeta: &schema.ResponseMeta{FinishReason: "tool_calls"},
		}, nil
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      reply.Content,
		ResponseMeta: &schema.ResponseMeta{FinishReason: "stop"},
	}, nil
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *Model) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// Calls returns how many Generate calls have been made.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

var _ model.ToolCallingChatModel = (*Model)(nil)
