package store

import (
	"context"
	"fmt"

	"github.com/roach88/popstand/internal/poserr"
	"github.com/roach88/popstand/internal/state"
)

// DefaultKey is the blob key a store's root is saved under.
const DefaultKey = "popstand-data"

// Snapshotter saves and loads a state.Root as one JSON blob.
type Snapshotter struct {
	blobs Blobs
	key   string
}

// NewSnapshotter binds a root to key on blobs. An empty key selects DefaultKey.
func NewSnapshotter(blobs Blobs, key string) *Snapshotter {
	if key == "" {
		key = DefaultKey
	}
	return &Snapshotter{blobs: blobs, key: key}
}

// Key returns the blob key in use.
func (s *Snapshotter) Key() string {
	return s.key
}

// Load returns the saved root. found is false when nothing was saved.
// Bytes that do not decode yield an error wrapping state.ErrCorrupt.
func (s *Snapshotter) Load(ctx context.Context) (state.Root, bool, error) {
	data, found, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return state.Root{}, false, poserr.Persistence("load root", err)
	}
	if !found {
		return state.Root{}, false, nil
	}
	root, err := state.Decode(data)
	if err != nil {
		return state.Root{}, false, fmt.Errorf("load root %q: %w", s.key, err)
	}
	return root, true, nil
}

// Save replaces the saved root.
func (s *Snapshotter) Save(ctx context.Context, root state.Root) error {
	data, err := state.Encode(root)
	if err != nil {
		return poserr.Persistence("save root", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return poserr.Persistence("save root", err)
	}
	return nil
}

// Clear deletes the saved root.
func (s *Snapshotter) Clear(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, s.key); err != nil {
		return poserr.Persistence("clear root", err)
	}
	return nil
}
