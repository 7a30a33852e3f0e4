package asset

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/typeid"
)

var ErrNotFound = errors.New("asset not found")

// Info describes a stored asset. Every asset is stored as PNG.
type Info struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Hash   string `json:"hash"`
}

// URL is the path the asset is served under.
func (i Info) URL() string { return "/assets/" + i.ID + ".png" }

// Store keeps decoded uploads on disk as PNG files named by asset id. Identical images are
// stored once: uploads are keyed by the blake2b hash of their PNG encoding.
type Store struct {
	dir string

	mu     sync.RWMutex
	byID   map[string]Info
	byHash map[string]string
}

// NewStore opens dir, creating it if needed, and indexes the assets already in it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	s := &Store{dir: dir, byID: make(map[string]Info), byHash: make(map[string]string)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read asset dir: %w", err)
	}
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".png")
		if e.IsDir() || !ok || typeid.Validate(id, typeid.PrefixAsset) != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("skip unreadable asset", "file", e.Name(), "error", err)
			continue
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			slog.Warn("skip undecodable asset", "file", e.Name(), "error", err)
			continue
		}
		s.index(Info{ID: id, Name: e.Name(), Width: cfg.Width, Height: cfg.Height, Hash: hash(data)})
	}
	return s, nil
}

func (s *Store) index(info Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[info.ID] = info
	s.byHash[info.Hash] = info.ID
}

func hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save decodes r (PNG, JPEG, GIF, BMP, TIFF or WebP), stores it as PNG and returns its info.
// An image already stored returns the existing asset.
func (s *Store) Save(r io.Reader, name string) (Info, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Info{}, fmt.Errorf("encode png: %w", err)
	}
	data := buf.Bytes()
	sum := hash(data)

	s.mu.RLock()
	existing, dup := s.lookupHash(sum)
	s.mu.RUnlock()
	if dup {
		return existing, nil
	}

	bounds := img.Bounds()
	info := Info{
		ID:     typeid.NewAssetID(),
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Hash:   sum,
	}
	if info.Name == "" {
		info.Name = info.ID + ".png"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, dup := s.lookupHash(sum); dup {
		return existing, nil
	}
	if err := os.WriteFile(s.path(info.ID), data, 0o644); err != nil {
		return Info{}, fmt.Errorf("write asset: %w", err)
	}
	s.byID[info.ID] = info
	s.byHash[info.Hash] = info.ID
	return info, nil
}

// lookupHash must be called with mu held.
func (s *Store) lookupHash(sum string) (Info, bool) {
	id, ok := s.byHash[sum]
	if !ok {
		return Info{}, false
	}
	return s.byID[id], true
}

// Get returns the info of a stored asset.
func (s *Store) Get(id string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.byID[id]
	return info, ok
}

// Delete removes an asset from disk and from the index.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	info, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.byID, id)
	delete(s.byHash, info.Hash)
	s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

// Fetch resolves src for the editor. src is an asset id, its file name or its URL.
func (s *Store) Fetch(ctx context.Context, src string) (graphics.ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return graphics.ImageInfo{}, err
	}
	id := strings.TrimPrefix(src, "/assets/")
	id = strings.TrimSuffix(id, ".png")
	info, ok := s.Get(id)
	if !ok {
		return graphics.ImageInfo{}, fmt.Errorf("%w: %w: %s", scene.ErrNotFound, ErrNotFound, src)
	}
	return graphics.ImageInfo{AssetID: info.ID, Name: info.Name, Width: info.Width, Height: info.Height}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".png")
}
