package session

import "errors"

// Session identifies one conversation. All persisted state is scoped by it.
// It is passed explicitly down the call chain; there is no ambient lookup.
type Session struct {
	ConversationID string `json:"conversation_id"`
}

var ErrNoConversationID = errors.New("session has no conversation id")

func (s Session) validate() error {
	if s.ConversationID == "" {
		return ErrNoConversationID
	}
	return nil
}
