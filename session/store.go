package session

import "context"

// Cache is the raw keyed storage backend.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Store scopes a Cache to a namespace and derives keys from a Session.
// Two stores with different namespaces can share the same Cache without
// colliding.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{
		core:      core,
		namespace: namespace,
	}
}

// Ready reports whether the store is backed by a Cache.
func (s Store[S]) Ready() bool {
	return s.core != nil
}

func (s Store[S]) key(sess Session) (string, error) {
	if err := sess.validate(); err != nil {
		return "", err
	}
	return s.namespace + ":" + sess.ConversationID, nil
}

func (s Store[S]) Set(ctx context.Context, sess Session, val S) error {
	key, err := s.key(sess)
	if err != nil {
		return err
	}
	return s.core.Set(ctx, key, val)
}

func (s Store[S]) Get(ctx context.Context, sess Session) (S, bool, error) {
	key, err := s.key(sess)
	if err != nil {
		var zero S
		return zero, false, err
	}
	return s.core.Get(ctx, key)
}

func (s Store[S]) Del(ctx context.Context, sess Session) error {
	key, err := s.key(sess)
	if err != nil {
		return err
	}
	return s.core.Del(ctx, key)
}

func (s Store[S]) Exists(ctx context.Context, sess Session) (bool, error) {
	key, err := s.key(sess)
	if err != nil {
		return false, err
	}
	return s.core.Exists(ctx, key)
}
