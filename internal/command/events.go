package command

import (
	"slices"
	"sync"
)

// EventKind names an invoker notification.
type EventKind string

const (
	EventUndoStackChanged EventKind = "undoStackChanged"
	EventRedoStackChanged EventKind = "redoStackChanged"
)

// Handler receives the new length of the stack that changed.
type Handler func(length int)

// SubscriptionID identifies a handler for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

type observers struct {
	mu   sync.RWMutex
	seq  SubscriptionID
	subs map[EventKind][]subscription
}

func (o *observers) subscribe(kind EventKind, h Handler) SubscriptionID {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subs == nil {
		o.subs = map[EventKind][]subscription{}
	}
	o.seq++
	o.subs[kind] = append(o.subs[kind], subscription{id: o.seq, handler: h})
	return o.seq
}

func (o *observers) unsubscribe(id SubscriptionID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for kind, subs := range o.subs {
		i := slices.IndexFunc(subs, func(s subscription) bool { return s.id == id })
		if i >= 0 {
			o.subs[kind] = slices.Delete(subs, i, i+1)
			return true
		}
	}
	return false
}

// emit calls handlers outside the lock so they may call back into the invoker.
func (o *observers) emit(kind EventKind, length int) {
	o.mu.RLock()
	subs := slices.Clone(o.subs[kind])
	o.mu.RUnlock()
	for _, s := range subs {
		s.handler(length)
	}
}
