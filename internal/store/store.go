// Package store persists scene snapshots per editing session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/typeid"
)

var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is one saved version of a session's scene.
type Snapshot struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Version   int32          `json:"version"`
	Document  scene.Document `json:"document"`
	CreatedAt time.Time      `json:"createdAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (session_id, version)
)`

// Postgres stores snapshots in a snapshots table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save stores doc as the next version of the session.
func (p *Postgres) Save(ctx context.Context, sessionID string, doc scene.Document) (Snapshot, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal document: %w", err)
	}
	snap := Snapshot{ID: typeid.NewSnapshotID(), SessionID: sessionID, Document: doc}
	err = p.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, session_id, version, document)
		SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3
		FROM snapshots WHERE session_id = $2
		RETURNING version, created_at`,
		snap.ID, sessionID, data,
	).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the newest snapshot of the session.
func (p *Postgres) Latest(ctx context.Context, sessionID string) (Snapshot, error) {
	snap := Snapshot{SessionID: sessionID}
	var data []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, version, document, created_at
		FROM snapshots WHERE session_id = $1
		ORDER BY version DESC LIMIT 1`,
		sessionID,
	).Scan(&snap.ID, &snap.Version, &data, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, fmt.Errorf("%w for session %s", ErrNoSnapshot, sessionID)
		}
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap.Document); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return snap, nil
}

// Memory keeps snapshots in process. The server uses it when no database is configured, so
// sessions survive their room closing but not a restart.
type Memory struct {
	mu    sync.Mutex
	snaps map[string][]Snapshot
}

func NewMemory() *Memory {
	return &Memory{snaps: make(map[string][]Snapshot)}
}

func (m *Memory) Save(_ context.Context, sessionID string, doc scene.Document) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		SessionID: sessionID,
		Version:   int32(len(m.snaps[sessionID]) + 1),
		Document:  doc,
		CreatedAt: time.Now(),
	}
	m.snaps[sessionID] = append(m.snaps[sessionID], snap)
	return snap, nil
}

func (m *Memory) Latest(_ context.Context, sessionID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snaps[sessionID]
	if len(snaps) == 0 {
		return Snapshot{}, fmt.Errorf("%w for session %s", ErrNoSnapshot, sessionID)
	}
	return snaps[len(snaps)-1], nil
}
