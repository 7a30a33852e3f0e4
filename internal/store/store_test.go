package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/typeid"
)

type snapshotter interface {
	Save(ctx context.Context, sessionID string, doc scene.Document) (Snapshot, error)
	Latest(ctx context.Context, sessionID string) (Snapshot, error)
}

func exerciseStore(t *testing.T, s snapshotter) {
	ctx := context.Background()
	session := typeid.NewSessionID()

	_, err := s.Latest(ctx, session)
	require.ErrorIs(t, err, ErrNoSnapshot)

	doc := scene.Document{
		Size:    scene.Dimension{Width: 10, Height: 20},
		MaxSize: scene.Dimension{Width: 1000, Height: 800},
		Objects: []*scene.Object{{ID: "obj_1", Type: scene.ObjectTypeRect, Width: 3, ScaleX: 1, ScaleY: 1, Opacity: 1}},
	}
	first, err := s.Save(ctx, session, doc)
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.Version)

	doc.Size.Width = 30
	second, err := s.Save(ctx, session, doc)
	require.NoError(t, err)
	assert.Equal(t, int32(2), second.Version)

	latest, err := s.Latest(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 30.0, latest.Document.Size.Width)
	require.Len(t, latest.Document.Objects, 1)
	assert.Equal(t, "obj_1", latest.Document.Objects[0].ID)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	p := NewPostgres(pool)
	require.NoError(t, p.EnsureSchema(ctx))
	exerciseStore(t, p)
}
