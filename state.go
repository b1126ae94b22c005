package fillform

import (
	"context"
	"fmt"

	"github.com/tbxark/fillform/session"
)

const populatedFormPlaceholder = "(The form has not yet been provided)"

// withStepState loads the session's step state (or its default), applies the
// mutation, persists the result, and notifies the inspection surface. The
// notification always reflects the fully committed state.
func (s *Step) withStepState(ctx context.Context, sess session.Session, mutate func(*StepState)) error {
	state, ok, err := s.stepStates.Get(ctx, sess)
	if err != nil {
		return fmt.Errorf("load step state: %w", err)
	}
	if !ok {
		state = StepState{PopulatedFormMarkdown: populatedFormPlaceholder}
	}

	mutate(&state)

	if err := s.stepStates.Set(ctx, sess, state); err != nil {
		return fmt.Errorf("persist step state: %w", err)
	}
	s.inspector.Notify(sess, StateIDPopulatedForm)
	return nil
}

func (s *Step) registerInspectorStates() {
	s.inspector.Register(StateIDPopulatedForm, func(ctx context.Context, sess session.Session) (any, error) {
		state, ok, err := s.stepStates.Get(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !ok {
			return populatedFormPlaceholder, nil
		}
		return state.PopulatedFormMarkdown, nil
	})

	s.inspector.Register(StateIDGuidedConversation, func(ctx context.Context, sess session.Session) (any, error) {
		state, ok, err := s.engineStates.Get(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return state, nil
	})
}
