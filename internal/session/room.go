package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inamate/imagedit/internal/editor"
	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/store"
)

// Room is one editing session: an editor shared by every client connected to it.
type Room struct {
	id     string
	editor *editor.Editor
	logger *slog.Logger

	mu       sync.RWMutex
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager

	dirty    atomic.Bool
	lastUsed atomic.Int64 // unix nanoseconds
}

func newRoom(id string, ed *editor.Editor, logger *slog.Logger) *Room {
	r := &Room{
		id:       id,
		editor:   ed,
		logger:   logger.With("session", id),
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
	r.touch()
	historyChanged := func(int) {
		r.broadcast(newMessage(TypeHistoryChanged, ed.History()), "")
	}
	// Both events are known names; On only fails after Destroy.
	_, _ = ed.On(editor.EventUndoStackChanged, historyChanged)
	_, _ = ed.On(editor.EventRedoStackChanged, historyChanged)
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) touch() { r.lastUsed.Store(time.Now().UnixNano()) }

func (r *Room) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, r.lastUsed.Load()))
}

// Editor exposes the room's editor for read-only queries.
func (r *Room) Editor() *editor.Editor { return r.editor }

// Execute runs a registered operation on behalf of userID. On success every other client
// receives the new scene.
func (r *Room) Execute(ctx context.Context, userID, name string, args []any) (any, error) {
	res, err := r.editor.Execute(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	r.changed(userID, "execute", name)
	return res, nil
}

// Undo reverts the last operation of the session, whoever ran it.
func (r *Room) Undo(ctx context.Context, userID string) (string, any, error) {
	name := r.editor.History().UndoName
	res, err := r.editor.Undo(ctx)
	if err != nil {
		return "", nil, err
	}
	r.changed(userID, "undo", name)
	return name, res, nil
}

func (r *Room) Redo(ctx context.Context, userID string) (string, any, error) {
	name := r.editor.History().RedoName
	res, err := r.editor.Redo(ctx)
	if err != nil {
		return "", nil, err
	}
	r.changed(userID, "redo", name)
	return name, res, nil
}

func (r *Room) changed(userID, kind, name string) {
	r.dirty.Store(true)
	r.touch()
	r.logger.Debug("scene changed", "user", userID, "kind", kind, "command", name)
	msg := r.syncMessage()
	msg.UserID = userID
	r.broadcast(msg, "")
}

func (r *Room) syncMessage() *Message {
	return newMessage(TypeSceneSync, SceneSyncPayload{
		Document: r.editor.Snapshot(),
		History:  r.editor.History(),
	})
}

// Load replaces the scene with doc on behalf of userID. The history is discarded and every
// client receives the new scene.
func (r *Room) Load(userID string, doc scene.Document) error {
	if err := r.editor.Restore(doc); err != nil {
		return err
	}
	r.changed(userID, "load", "")
	return nil
}

// Save writes the scene to p if it changed since the last save.
func (r *Room) Save(ctx context.Context, p Persister) error {
	if p == nil || !r.dirty.Swap(false) {
		return nil
	}
	snap, err := p.Save(ctx, r.id, r.editor.Snapshot())
	if err != nil {
		r.dirty.Store(true)
		return fmt.Errorf("save session %s: %w", r.id, err)
	}
	r.logger.Info("session saved", "version", snap.Version)
	return nil
}

func (r *Room) load(ctx context.Context, p Persister) error {
	if p == nil {
		return nil
	}
	snap, err := p.Latest(ctx, r.id)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil
		}
		return err
	}
	r.logger.Info("session loaded", "version", snap.Version)
	return r.editor.Restore(snap.Document)
}

func (r *Room) clientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) addClient(c *Client) {
	r.mu.Lock()
	r.clients[c.ClientID] = c
	r.mu.Unlock()

	c.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: c.ClientID, SessionID: r.id}))
	c.Send(r.presence.StateMessage())
	c.Send(r.syncMessage())

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{UserID: c.UserID, DisplayName: c.DisplayName})
	join.UserID = c.UserID
	r.broadcast(join, c.ClientID)

	r.logger.Info("client joined", "user", c.UserID, "client", c.ClientID)
}

// removeClient reports whether the room is now empty.
func (r *Room) removeClient(c *Client) bool {
	r.mu.Lock()
	if _, ok := r.clients[c.ClientID]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.clients, c.ClientID)
	close(c.send)
	empty := len(r.clients) == 0
	r.mu.Unlock()

	r.presence.Remove(c.UserID)
	leave := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: c.UserID})
	leave.UserID = c.UserID
	r.broadcast(leave, "")

	r.logger.Info("client left", "user", c.UserID, "client", c.ClientID)
	return empty
}

func (r *Room) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	switch msg.Type {
	case TypeCmdExecute:
		var p ExecutePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Name == "" {
			sender.Send(errorMessage(msg.RequestID, fmt.Errorf("%w: execute needs a command name", scene.ErrInvalidParameter)))
			return
		}
		res, err := r.Execute(ctx, sender.UserID, p.Name, p.Args)
		r.reply(sender, msg.RequestID, "execute", p.Name, res, err)
	case TypeCmdUndo:
		name, res, err := r.Undo(ctx, sender.UserID)
		r.reply(sender, msg.RequestID, "undo", name, res, err)
	case TypeCmdRedo:
		name, res, err := r.Redo(ctx, sender.UserID)
		r.reply(sender, msg.RequestID, "redo", name, res, err)
	case TypeSceneGet:
		sync := r.syncMessage()
		sync.RequestID = msg.RequestID
		sender.Send(sync)
	case TypePresenceUpdate:
		r.handlePresenceUpdate(sender, msg)
	default:
		r.logger.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (r *Room) reply(c *Client, requestID, kind, name string, res any, err error) {
	if err != nil {
		r.logger.Debug("command rejected", "user", c.UserID, "kind", kind, "command", name, "error", err)
		c.Send(errorMessage(requestID, err))
		return
	}
	out := newMessage(TypeCmdResult, ResultPayload{Kind: kind, Name: name, Result: res, Hist: r.editor.History()})
	out.RequestID = requestID
	c.Send(out)
}

func (r *Room) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		r.logger.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	r.presence.Update(sender.UserID, &presence)

	out := newMessage(TypePresenceUpdate, presence)
	out.UserID = sender.UserID
	r.broadcast(out, sender.ClientID)
}

// broadcast holds the read lock while sending so a client cannot be closed mid-send.
// Send never blocks.
func (r *Room) broadcast(msg *Message, excludeClientID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}
