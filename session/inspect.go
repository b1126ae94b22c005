package session

import (
	"context"
	"fmt"
	"sync"
)

// StateID names one inspectable projection of session state.
type StateID string

// Projection reads the current value of one projection for a session.
type Projection func(ctx context.Context, sess Session) (any, error)

// Observer is notified after a projection's backing state has been fully
// committed. Notifications never race a partial write.
type Observer interface {
	StateUpdated(sess Session, id StateID)
}

// Inspector exposes named read-only projections of per-session state to an
// external inspection surface, and fans out update notifications.
type Inspector struct {
	mu        sync.RWMutex
	providers map[StateID]Projection
	observers []Observer
}

func NewInspector() *Inspector {
	return &Inspector{
		providers: make(map[StateID]Projection),
	}
}

func (i *Inspector) Register(id StateID, p Projection) {
	i.mu.Lock()
	i.providers[id] = p
	i.mu.Unlock()
}

func (i *Inspector) Observe(o Observer) {
	i.mu.Lock()
	i.observers = append(i.observers, o)
	i.mu.Unlock()
}

// StateIDs returns all registered projection ids.
func (i *Inspector) StateIDs() []StateID {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ids := make([]StateID, 0, len(i.providers))
	for id := range i.providers {
		ids = append(ids, id)
	}
	return ids
}

func (i *Inspector) Read(ctx context.Context, sess Session, id StateID) (any, error) {
	i.mu.RLock()
	p, ok := i.providers[id]
	i.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no projection registered for state %q", id)
	}
	return p(ctx, sess)
}

// Notify tells every observer that the projection has new committed state.
func (i *Inspector) Notify(sess Session, id StateID) {
	i.mu.RLock()
	observers := make([]Observer, len(i.observers))
	copy(observers, i.observers)
	i.mu.RUnlock()

	for _, o := range observers {
		o.StateUpdated(sess, id)
	}
}
