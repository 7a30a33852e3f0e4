// Package session hosts live editing sessions. Each session is a Room owning one editor;
// clients join over websocket and every command, undo and redo goes through the room.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inamate/imagedit/internal/editor"
	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/store"
)

// ErrStopped is returned by Register once the hub has stopped.
var ErrStopped = errors.New("session hub stopped")

// Persister loads and saves session snapshots.
type Persister interface {
	Latest(ctx context.Context, sessionID string) (store.Snapshot, error)
	Save(ctx context.Context, sessionID string, doc scene.Document) (store.Snapshot, error)
}

type Option func(*Hub)

// WithPersister enables loading rooms from and saving them to p.
func WithPersister(p Persister) Option {
	return func(h *Hub) { h.persister = p }
}

func WithImageSource(src graphics.ImageSource) Option {
	return func(h *Hub) { h.source = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSaveInterval sets how often changed rooms are saved. Zero disables periodic saves.
func WithSaveInterval(d time.Duration) Option {
	return func(h *Hub) { h.saveInterval = d }
}

// WithIdleTimeout closes rooms that have had no client and no command for d. Zero keeps
// client-less rooms open until Stop.
func WithIdleTimeout(d time.Duration) Option {
	return func(h *Hub) { h.idleTimeout = d }
}

const (
	saveTimeout        = 10 * time.Second
	defaultIdleTimeout = 5 * time.Minute
)

type joinRequest struct {
	client *Client
	done   chan error
}

type Hub struct {
	persister    Persister
	source       graphics.ImageSource
	logger       *slog.Logger
	saveInterval time.Duration
	idleTimeout  time.Duration

	mu    sync.RWMutex
	rooms map[string]*Room // sessionID -> room

	register   chan joinRequest
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	started    atomic.Bool
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		logger:      slog.Default(),
		idleTimeout: defaultIdleTimeout,
		rooms:       make(map[string]*Room),
		register:    make(chan joinRequest),
		unregister:  make(chan *Client),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Room returns the room for sessionID, creating it from the latest snapshot if needed.
func (h *Hub) Room(ctx context.Context, sessionID string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if ok {
		room.touch()
		return room, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[sessionID]; ok {
		room.touch()
		return room, nil
	}
	ed := editor.New(
		editor.WithImageSource(h.source),
		editor.WithLogger(h.logger.With("session", sessionID)),
	)
	room = newRoom(sessionID, ed, h.logger)
	if err := room.load(ctx, h.persister); err != nil {
		ed.Destroy()
		return nil, err
	}
	h.rooms[sessionID] = room
	return room, nil
}

// Rooms returns the ids of the open rooms.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) Run() {
	h.started.Store(true)
	defer close(h.done)

	var tick <-chan time.Time
	if h.persister != nil && h.saveInterval > 0 {
		ticker := time.NewTicker(h.saveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	var sweep <-chan time.Time
	if h.idleTimeout > 0 {
		ticker := time.NewTicker(h.idleTimeout / 2)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case req := <-h.register:
			req.done <- h.join(req.client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-tick:
			h.saveAll()
		case <-sweep:
			h.closeIdle()
		case <-h.stop:
			return
		}
	}
}

// Register joins client to its room and returns once the room has sent the welcome. If the
// room was closed after the client looked it up, the client joins the session's current room.
func (h *Hub) Register(client *Client) error {
	req := joinRequest{client: client, done: make(chan error, 1)}
	select {
	case h.register <- req:
	case <-h.stop:
		return ErrStopped
	case <-h.done:
		return ErrStopped
	}
	return <-req.done
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	case <-h.done:
	}
}

// join runs on the Run goroutine, which is the only one that removes rooms with clients.
func (h *Hub) join(client *Client) error {
	h.mu.RLock()
	current := h.rooms[client.room.id]
	h.mu.RUnlock()

	if current != client.room {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		room, err := h.Room(ctx, client.room.id)
		if err != nil {
			return err
		}
		h.logger.Debug("client joined reopened room", "session", room.id, "client", client.ClientID)
		client.room = room
	}
	client.room.addClient(client)
	return nil
}

func (h *Hub) removeClient(client *Client) {
	room := client.room
	if !room.removeClient(client) {
		return
	}

	h.mu.Lock()
	if room.clientCount() > 0 || h.rooms[room.id] != room {
		h.mu.Unlock()
		return
	}
	delete(h.rooms, room.id)
	h.mu.Unlock()

	h.closeRoom(room)
}

func (h *Hub) closeRoom(room *Room) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := room.Save(ctx, h.persister); err != nil {
		h.logger.Error("save room", "error", err)
	}
	room.editor.Destroy()
}

// closeIdle closes rooms without clients that have not been used for the idle timeout.
func (h *Hub) closeIdle() {
	now := time.Now()
	var idle []*Room
	h.mu.Lock()
	for id, r := range h.rooms {
		if r.clientCount() == 0 && r.idleFor(now) >= h.idleTimeout {
			delete(h.rooms, id)
			idle = append(idle, r)
		}
	}
	h.mu.Unlock()

	for _, r := range idle {
		h.logger.Info("closing idle session", "session", r.id)
		h.closeRoom(r)
	}
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	for _, r := range rooms {
		if err := r.Save(ctx, h.persister); err != nil {
			h.logger.Error("save room", "error", err)
		}
	}
}

// Stop ends Run, saves every changed room and closes them.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		if h.started.Load() {
			<-h.done
		}

		h.mu.Lock()
		rooms := h.rooms
		h.rooms = make(map[string]*Room)
		h.mu.Unlock()

		for _, r := range rooms {
			h.closeRoom(r)
		}
	})
}
