package fillform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/fillform/conversation"
	"github.com/tbxark/fillform/internal/modeltest"
	"github.com/tbxark/fillform/session"
)

type stubEngine struct {
	turn    *conversation.TurnResult
	stepErr error
	record  map[string]any

	lastMessage string
	closed      int
}

func (e *stubEngine) Step(ctx context.Context, message string) (*conversation.TurnResult, error) {
	e.lastMessage = message
	if e.stepErr != nil {
		return nil, e.stepErr
	}
	return e.turn, nil
}

func (e *stubEngine) Record() map[string]any {
	return e.record
}

func (e *stubEngine) Snapshot() map[string]any {
	return map[string]any{"stub": true}
}

func (e *stubEngine) Close(ctx context.Context) error {
	e.closed++
	return nil
}

func stubProvider(engine *stubEngine, openErr error) (EngineProvider, *conversation.Options) {
	var captured conversation.Options
	provider := EngineProviderFunc(func(ctx context.Context, opts conversation.Options) (conversation.Engine, error) {
		captured = opts
		if openErr != nil {
			return nil, openErr
		}
		return engine, nil
	})
	return provider, &captured
}

func scenarioFields() []FormField {
	return []FormField{
		{ID: "name", Name: "name", Type: FieldTypeText, Required: true},
		{ID: "color", Name: "color", Type: FieldTypeMultipleChoice, Options: []string{"red", "blue"}, Selections: SelectOne},
	}
}

func newTestStep(t *testing.T, model *modeltest.Model, opts ...Option) *Step {
	t.Helper()
	step, err := NewStep(DefaultConfig(), model, opts...)
	require.NoError(t, err)
	return step
}

func TestExecuteCompleteScenario(t *testing.T) {
	engine := &stubEngine{
		turn:   &conversation.TurnResult{Finished: true},
		record: map[string]any{"name": "Sam", "color": "blue"},
	}
	provider, captured := stubProvider(engine, nil)
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider))

	resp, err := step.Execute(context.Background(), &Request{
		Session:      session.Session{ConversationID: "conv-1"},
		FormFilename: "form.pdf",
		FormTitle:    "My Form",
		Fields:       scenarioFields(),
		UserMessage:  "my name is Sam, color blue",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, resp.Status)
	assert.Contains(t, resp.Markdown, "*name:*\n\nSam")
	assert.Contains(t, resp.Markdown, "- [x] blue")
	assert.Contains(t, resp.Markdown, "- [ ] red")
	assert.Equal(t, resp.Markdown, resp.Message)
	assert.Equal(t, map[string]any{"name": "Sam", "color": "blue"}, resp.Record)
	assert.Equal(t, map[string]any{"stub": true}, resp.Debug["guided-conversation"])

	assert.Equal(t, 1, engine.closed, "engine state must be flushed exactly once")
	assert.True(t, strings.HasPrefix(engine.lastMessage, "my name is Sam, color blue\n"))

	// Budget is 1.5x the field count, rounded down, as a hard maximum.
	assert.Equal(t, 3, captured.Definition.Budget.Quantity)
	assert.Equal(t, conversation.ModeMaximum, captured.Definition.Budget.Mode)
}

func TestExecuteIncompleteReturnsAssistantMessage(t *testing.T) {
	engine := &stubEngine{
		turn:   &conversation.TurnResult{Finished: false, Message: "What is your name?"},
		record: map[string]any{"name": "Unanswered", "color": "Unanswered"},
	}
	provider, _ := stubProvider(engine, nil)
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider))

	resp, err := step.Execute(context.Background(), &Request{
		Session:   session.Session{ConversationID: "conv-1"},
		FormTitle: "My Form",
		Fields:    scenarioFields(),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusIncomplete, resp.Status)
	assert.Equal(t, "What is your name?", resp.Message)
	assert.Empty(t, resp.Markdown)
	assert.Equal(t, 1, engine.closed)
}

func TestExecuteEngineFailureReturnsErrorResult(t *testing.T) {
	engine := &stubEngine{stepErr: errors.New("agenda update failed")}
	provider, _ := stubProvider(engine, nil)
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider))

	resp, err := step.Execute(context.Background(), &Request{
		Session:   session.Session{ConversationID: "conv-1"},
		FormTitle: "My Form",
		Fields:    scenarioFields(),
	})
	require.NoError(t, err, "engine failures must not escape the step boundary")

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Message, "Failed to execute guided conversation")
	assert.Contains(t, resp.Message, "agenda update failed")
	assert.Equal(t, "agenda update failed", resp.Debug["error"])
	assert.Equal(t, 1, engine.closed, "state must be flushed even when the step fails")
}

func TestExecuteEngineConstructionFailurePropagates(t *testing.T) {
	provider, _ := stubProvider(nil, errors.New("state file corrupted"))
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider))

	_, err := step.Execute(context.Background(), &Request{
		Session: session.Session{ConversationID: "conv-1"},
		Fields:  scenarioFields(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state file corrupted")
}

func TestExecutePersistsStepStateWhenIncomplete(t *testing.T) {
	engine := &stubEngine{
		turn:   &conversation.TurnResult{Finished: false, Message: "Next question"},
		record: map[string]any{"name": "Unanswered", "color": "blue"},
	}
	provider, _ := stubProvider(engine, nil)
	states := session.NewMemoryCache[StepState]()
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider), WithStepStates(states))

	sess := session.Session{ConversationID: "conv-1"}
	_, err := step.Execute(context.Background(), &Request{
		Session:   sess,
		FormTitle: "My Form",
		Fields:    scenarioFields(),
	})
	require.NoError(t, err)

	projected, err := step.Inspector().Read(context.Background(), sess, StateIDPopulatedForm)
	require.NoError(t, err)
	markdown, ok := projected.(string)
	require.True(t, ok)
	assert.Contains(t, markdown, strings.Repeat("_", 20), "unanswered text fields render as blanks")
	assert.Contains(t, markdown, "- [x] blue")
}

func TestExecuteSkipsFormAttachment(t *testing.T) {
	model := modeltest.New(modeltest.Reply{
		ToolName: extractToolName,
		ToolArgs: `{"response":"Found values.","fields":[{"field_id":"name","value":"Sam","explanation":"From the letter."}]}`,
	})
	engine := &stubEngine{
		turn:   &conversation.TurnResult{Finished: false, Message: "And your color?"},
		record: map[string]any{"name": "Sam", "color": "Unanswered"},
	}
	provider, _ := stubProvider(engine, nil)
	step := newTestStep(t, model, WithEngineProvider(provider))

	resp, err := step.Execute(context.Background(), &Request{
		Session:      session.Session{ConversationID: "conv-1"},
		FormFilename: "form.pdf",
		FormTitle:    "My Form",
		Fields:       scenarioFields(),
		UserMessage:  "here are my documents",
		Attachments: []Attachment{
			{Filename: "form.pdf", Content: "the blank form itself"},
			{Filename: "letter.txt", Content: "Dear sir, my name is Sam"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, model.Calls(), "the form document itself is never extracted")
	assert.Contains(t, engine.lastMessage, "Filename: *letter.txt*")
	assert.NotContains(t, engine.lastMessage, "Filename: *form.pdf*")
	assert.Contains(t, engine.lastMessage, "Field id: name:")

	debug, ok := resp.Debug["document-extractions"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, debug, "letter.txt")
	assert.NotContains(t, debug, "form.pdf")
}

func TestExecuteExtractionFailureAbortsStep(t *testing.T) {
	model := modeltest.New(modeltest.Reply{Err: errors.New("completion backend down")})
	engine := &stubEngine{turn: &conversation.TurnResult{Finished: false}}
	provider, _ := stubProvider(engine, nil)
	step := newTestStep(t, model, WithEngineProvider(provider))

	_, err := step.Execute(context.Background(), &Request{
		Session:     session.Session{ConversationID: "conv-1"},
		Fields:      scenarioFields(),
		Attachments: []Attachment{{Filename: "letter.txt", Content: "hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letter.txt")
	assert.Equal(t, 0, engine.closed, "the engine is never acquired when extraction fails")
}

func TestExecuteInvalidFieldConfigFailsFast(t *testing.T) {
	provider, _ := stubProvider(&stubEngine{}, nil)
	step := newTestStep(t, modeltest.New(), WithEngineProvider(provider))

	_, err := step.Execute(context.Background(), &Request{
		Session: session.Session{ConversationID: "conv-1"},
		Fields: []FormField{
			{ID: "photo", Name: "Photo", Type: FieldType("image")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported field type")
}
