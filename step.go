package fillform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"

	"github.com/tbxark/fillform/conversation"
	"github.com/tbxark/fillform/session"
)

// StepName scopes persisted state keys for this step.
const StepName = "fill_form"

// Inspection projections exposed by the step.
const (
	StateIDGuidedConversation session.StateID = "fill_form_guided_conversation"
	StateIDPopulatedForm      session.StateID = "fill_form_populated_form"
)

// EngineProvider acquires a conversation engine for one invocation. The step
// only depends on this contract; the default provider is conversation.Open.
type EngineProvider interface {
	Open(ctx context.Context, opts conversation.Options) (conversation.Engine, error)
}

type EngineProviderFunc func(ctx context.Context, opts conversation.Options) (conversation.Engine, error)

func (f EngineProviderFunc) Open(ctx context.Context, opts conversation.Options) (conversation.Engine, error) {
	return f(ctx, opts)
}

// Step executes the fill-form step: extract candidate values from uploaded
// documents, advance the guided conversation one turn, and render the
// populated form. The caller is responsible for serializing invocations per
// session; the step never interleaves engine access internally.
type Step struct {
	config    Config
	model     model.ToolCallingChatModel
	extractor *Extractor
	engines   EngineProvider

	engineStates session.Store[conversation.EngineState]
	stepStates   session.Store[StepState]
	inspector    *session.Inspector
}

type Option func(*Step)

// WithEngineStates sets the storage backend for engine-internal state.
func WithEngineStates(core session.Cache[conversation.EngineState]) Option {
	return func(s *Step) {
		s.engineStates = session.NewStore(core, StepName+":guided_conversation")
	}
}

// WithStepStates sets the storage backend for the step's own state.
func WithStepStates(core session.Cache[StepState]) Option {
	return func(s *Step) {
		s.stepStates = session.NewStore(core, StepName+":state")
	}
}

// WithInspector attaches an external inspection surface.
func WithInspector(inspector *session.Inspector) Option {
	return func(s *Step) {
		s.inspector = inspector
	}
}

// WithEngineProvider overrides how conversation engines are acquired.
func WithEngineProvider(provider EngineProvider) Option {
	return func(s *Step) {
		s.engines = provider
	}
}

// NewStep wires the step with its configuration and model access. Both
// persisted stores default to in-memory backends.
func NewStep(config Config, chatModel model.ToolCallingChatModel, opts ...Option) (*Step, error) {
	extractor, err := NewExtractor(chatModel)
	if err != nil {
		return nil, err
	}

	s := &Step{
		config:       config,
		model:        chatModel,
		extractor:    extractor,
		engines:      EngineProviderFunc(conversation.Open),
		engineStates: session.NewStore[conversation.EngineState](session.NewMemoryCache[conversation.EngineState](), StepName+":guided_conversation"),
		stepStates:   session.NewStore[StepState](session.NewMemoryCache[StepState](), StepName+":state"),
		inspector:    session.NewInspector(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.registerInspectorStates()
	return s, nil
}

// Inspector returns the inspection surface the step publishes its state
// projections on.
func (s *Step) Inspector() *session.Inspector {
	return s.inspector
}

// Execute runs one invocation of the step: document extraction, one guided
// conversation turn, rendering, and state persistence.
//
// Extraction failures and engine construction failures propagate as errors.
// An engine step failure is caught and reported as a StatusError response;
// engine state is still flushed.
func (s *Step) Execute(ctx context.Context, req *Request) (*Response, error) {
	candidateParts, extractDebug, err := s.candidatesFromAttachments(ctx, req)
	if err != nil {
		return nil, err
	}
	message := combineMessage(req.UserMessage, candidateParts)
	debug := map[string]any{"document-extractions": extractDebug}

	recordSchema, err := BuildRecordSchema(req.Fields)
	if err != nil {
		return nil, err
	}

	definition := s.config.Definition
	definition.Budget.Quantity = int(float64(len(req.Fields)) * 1.5)

	engine, err := s.engines.Open(ctx, conversation.Options{
		Definition: definition,
		Schema:     recordSchema,
		Model:      s.model,
		States:     s.engineStates,
		Session:    req.Session,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := engine.Close(ctx); cerr != nil {
			slog.Warn("failed to flush guided conversation state", "session", req.Session.ConversationID, "error", cerr)
			return
		}
		s.inspector.Notify(req.Session, StateIDGuidedConversation)
	}()

	turn, err := engine.Step(ctx, message)
	if err != nil {
		slog.Error("failed to execute guided conversation", "session", req.Session.ConversationID, "error", err)
		return &Response{
			Status:  StatusError,
			Message: fmt.Sprintf("Failed to execute guided conversation: %v", err),
			Debug:   map[string]any{"error": err.Error()},
		}, nil
	}

	debug["guided-conversation"] = engine.Snapshot()
	slog.Info("guided conversation result", "session", req.Session.ConversationID, "finished", turn.Finished)

	record := engine.Record()
	markdown, err := RenderPopulatedForm(req.FormTitle, req.Fields, record)
	if err != nil {
		return nil, err
	}

	if err := s.withStepState(ctx, req.Session, func(state *StepState) {
		state.PopulatedFormMarkdown = markdown
	}); err != nil {
		return nil, err
	}

	if turn.Finished {
		return &Response{
			Status:   StatusComplete,
			Message:  markdown,
			Record:   record,
			Markdown: markdown,
			Debug:    debug,
		}, nil
	}
	return &Response{
		Status:  StatusIncomplete,
		Message: turn.Message,
		Debug:   debug,
	}, nil
}

// candidatesFromAttachments extracts candidate values from every attachment
// except the form document itself, in attachment order.
func (s *Step) candidatesFromAttachments(ctx context.Context, req *Request) ([]string, map[string]any, error) {
	debugPerFile := map[string]any{}
	var parts []string
	for _, attachment := range req.Attachments {
		if attachment.Filename == req.FormFilename {
			continue
		}

		candidates, metadata, err := s.extractor.Extract(ctx, s.config.ExtractionInstruction, req.Fields, attachment.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("extract candidate values from %q: %w", attachment.Filename, err)
		}

		parts = append(parts, candidatesMessagePart(attachment.Filename, candidates))
		debugPerFile[attachment.Filename] = metadata
	}
	return parts, debugPerFile, nil
}
