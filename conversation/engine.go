// Package conversation implements a stateful, resource-bounded guided
// conversation that elicits values for a dynamic record schema one field at a
// time. Engine state persists across turns through a session-scoped store.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/fillform/session"
	"github.com/tbxark/fillform/structured"
)

// TurnResult is the outcome of advancing the conversation by one turn.
// Message is only set when the conversation is not finished.
type TurnResult struct {
	Finished bool
	Message  string
}

// Engine drives one guided conversation. An Engine is acquired with Open,
// exclusively held for the duration of a step invocation, and must be
// released with Close, which flushes state back to the store on every path.
type Engine interface {
	// Step advances the conversation by one turn with the given user message.
	Step(ctx context.Context, message string) (*TurnResult, error)
	// Record returns a copy of the current populated record.
	Record() map[string]any
	// Snapshot returns the engine's serializable state for diagnostics.
	Snapshot() map[string]any
	// Close flushes engine state back to the session store.
	Close(ctx context.Context) error
}

// EngineState is the persisted engine-internal state. Callers treat it as
// opaque beyond load and flush.
type EngineState struct {
	Record       map[string]any `json:"record"`
	TurnsUsed    int            `json:"turns_used"`
	LastQuestion string         `json:"last_question,omitempty"`
	Done         bool           `json:"done"`
}

// Options configures one engine acquisition.
type Options struct {
	Definition Definition
	Schema     *RecordSchema
	Model      model.ToolCallingChatModel
	States     session.Store[EngineState]
	Session    session.Session
}

// Open acquires the engine for opts.Session, loading persisted state when
// present. Construction failures are not recoverable by the caller's step
// logic and propagate as plain errors.
func Open(ctx context.Context, opts Options) (Engine, error) {
	if opts.Schema == nil {
		return nil, fmt.Errorf("conversation: record schema is required")
	}
	if opts.Model == nil {
		return nil, fmt.Errorf("conversation: chat model is required")
	}
	if !opts.States.Ready() {
		return nil, fmt.Errorf("conversation: state store is required")
	}

	e := &engine{
		def:    opts.Definition,
		schema: opts.Schema,
		model:  opts.Model,
		states: opts.States,
		sess:   opts.Session,
	}

	patchChain, err := structured.NewChain[string, updateRecordArgs](
		opts.Model,
		e.buildPatchPrompt,
		updateRecordToolName,
		updateRecordToolDesc,
	)
	if err != nil {
		return nil, fmt.Errorf("conversation: create patch chain: %w", err)
	}
	e.patchChain = patchChain

	state, ok, err := opts.States.Get(ctx, opts.Session)
	if err != nil {
		return nil, fmt.Errorf("conversation: load engine state: %w", err)
	}
	if !ok || state.Record == nil {
		state = EngineState{Record: opts.Schema.NewRecord()}
	}
	e.state = state

	return e, nil
}

type engine struct {
	def        Definition
	schema     *RecordSchema
	model      model.ToolCallingChatModel
	states     session.Store[EngineState]
	sess       session.Session
	patchChain *structured.Chain[string, updateRecordArgs]
	state      EngineState
}

func (e *engine) Step(ctx context.Context, message string) (*TurnResult, error) {
	if e.state.Done {
		return &TurnResult{Finished: true}, nil
	}

	e.state.TurnsUsed++

	args, _, err := e.patchChain.Invoke(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("generate record patch: %w", err)
	}
	if err := e.applyOps(args.Ops); err != nil {
		return nil, err
	}

	missing := e.schema.MissingRequired(e.state.Record)
	if e.finished(missing) {
		e.state.Done = true
		e.state.LastQuestion = ""
		return &TurnResult{Finished: true}, nil
	}

	question, err := e.nextQuestion(ctx, message, missing)
	if err != nil {
		return nil, fmt.Errorf("generate next question: %w", err)
	}
	e.state.LastQuestion = question

	return &TurnResult{Finished: false, Message: question}, nil
}

func (e *engine) applyOps(ops []PatchOperation) error {
	if len(ops) == 0 {
		return nil
	}

	allowed := make(map[string]bool, len(e.schema.AllowedPointers()))
	for _, path := range e.schema.AllowedPointers() {
		allowed[path] = true
	}
	if err := validatePatchOps(ops, allowed); err != nil {
		return fmt.Errorf("generated patches failed validation: %w", err)
	}

	updated, err := applyPatch(e.state.Record, ops)
	if err != nil {
		return fmt.Errorf("apply record patch: %w", err)
	}
	if err := e.schema.Validate(updated); err != nil {
		// Keep the previous record; the next turn re-elicits the field.
		slog.Warn("rejecting record patch", "session", e.sess.ConversationID, "error", err)
		return nil
	}
	e.state.Record = updated
	return nil
}

func (e *engine) finished(missing []FieldInfo) bool {
	exhausted := e.def.Budget.Quantity > 0 && e.state.TurnsUsed >= e.def.Budget.Quantity
	if e.def.Budget.Mode == ModeExact {
		return exhausted
	}
	return len(missing) == 0 || exhausted
}

func (e *engine) Record() map[string]any {
	record := make(map[string]any, len(e.state.Record))
	for k, v := range e.state.Record {
		// Multi-select values are slices; copy them so the snapshot and the
		// persisted state never alias.
		switch s := v.(type) {
		case []any:
			record[k] = append([]any(nil), s...)
		case []string:
			record[k] = append([]string(nil), s...)
		default:
			record[k] = v
		}
	}
	return record
}

func (e *engine) Snapshot() map[string]any {
	return map[string]any{
		"definition": e.def,
		"state":      e.state,
	}
}

func (e *engine) Close(ctx context.Context) error {
	if err := e.states.Set(ctx, e.sess, e.state); err != nil {
		return fmt.Errorf("conversation: flush engine state: %w", err)
	}
	return nil
}

func (e *engine) buildPatchPrompt(ctx context.Context, userMessage string) ([]*schema.Message, error) {
	recordJSON, err := sonic.ConfigStd.MarshalToString(e.state.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are a form-filling assistant. Analyze the user input and call the %s tool to generate RFC6902 JSON Patch operations against the record.

Rules:
- Only extract information explicitly provided by the user or the document hints in their message
- Use "replace" to set a field value, "add" with path "/<field>/-" to append to a multi-select field
- Values must conform to the record schema; choice fields only accept the listed options
- Only use paths from the allowed paths list
- If there is no information to extract, call the tool with an empty ops array`, updateRecordToolName)

	sections := []string{
		fmt.Sprintf("# Record JSON:\n%s", recordJSON),
		fmt.Sprintf("# Record schema JSON:\n```json\n%s\n```", e.schema.JSON()),
		fmt.Sprintf("# Allowed paths:\n%s", formatAllowedPaths(e.schema.AllowedPointers())),
	}
	if s := formatMissingFieldsSection(e.schema.MissingRequired(e.state.Record)); s != "" {
		sections = append(sections, s)
	}
	if e.state.LastQuestion != "" {
		sections = append(sections, fmt.Sprintf("# Assistant question:\n%s", e.state.LastQuestion))
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", userMessage))

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(joinSections(sections)),
	}, nil
}

func (e *engine) nextQuestion(ctx context.Context, userMessage string, missing []FieldInfo) (string, error) {
	messages, err := e.buildDialoguePrompt(userMessage, missing)
	if err != nil {
		return "", err
	}
	response, err := e.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}

func (e *engine) buildDialoguePrompt(userMessage string, missing []FieldInfo) ([]*schema.Message, error) {
	recordJSON, err := sonic.ConfigStd.MarshalToString(e.state.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	var sb []string
	sb = append(sb, "You are guiding the user through filling out a form, one field at a time.")
	if s := formatRulesSection(e.def.Rules); s != "" {
		sb = append(sb, s)
	}
	if e.def.Flow != "" {
		sb = append(sb, "Conversation flow:\n"+e.def.Flow)
	}
	if e.def.Context != "" {
		sb = append(sb, e.def.Context)
	}
	sb = append(sb, "Write the next message to the user, asking for a single missing field.")
	systemPrompt := joinSections(sb)

	sections := []string{
		fmt.Sprintf("# Record JSON:\n%s", recordJSON),
	}
	if s := formatMissingFieldsSection(missing); s != "" {
		sections = append(sections, s)
	}
	if s := formatFieldOptionsSection(missing); s != "" {
		sections = append(sections, s)
	}
	if e.state.LastQuestion != "" {
		sections = append(sections, fmt.Sprintf("# Previous assistant question:\n%s", e.state.LastQuestion))
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", userMessage))

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(joinSections(sections)),
	}, nil
}

func joinSections(sections []string) string {
	return strings.Join(sections, "\n\n")
}
