// Package source manages decoded source images.
//
// The render engine consumes decoded pixel data but performs no I/O of its
// own; the Store is the collaborator that decodes files once and hands out
// immutable in-memory images. A decoded image may be read concurrently by
// any number of renders without locking, so the store never returns a
// mutable view.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"sync"
)

// Entry is one decoded source image. ID is stable for a given file content
// and is what render fingerprints key on, so re-grading the same photo
// across processes hits the same cache entries.
type Entry struct {
	ID     string
	Path   string
	Image  image.Image
	Width  int
	Height int
}

// Store is a thread-safe cache of decoded source images keyed by ID.
// Entries stay resident until evicted; long-running services should evict
// sources whose grading sessions have ended.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*Entry
	pathIDs map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID:    make(map[string]*Entry),
		pathIDs: make(map[string]string),
	}
}

// Load decodes the image at path, or returns the already-decoded entry if
// the path was loaded before. The ID is a digest of the file contents.
func (s *Store) Load(path string) (*Entry, error) {
	s.mu.RLock()
	if id, ok := s.pathIDs[path]; ok {
		e := s.byID[id]
		s.mu.RUnlock()
		return e, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source image: %w", err)
	}
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:16])

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	bounds := img.Bounds()
	e := &Entry{
		ID:     id,
		Path:   path,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	s.mu.Lock()
	s.byID[id] = e
	s.pathIDs[path] = id
	s.mu.Unlock()
	return e, nil
}

// Add registers an already-decoded image under the given ID, for callers
// that decode from memory rather than disk.
func (s *Store) Add(id string, img image.Image) (*Entry, error) {
	if img == nil {
		return nil, fmt.Errorf("add source %q: nil image", id)
	}
	bounds := img.Bounds()
	e := &Entry{
		ID:     id,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	s.mu.Lock()
	s.byID[id] = e
	s.mu.Unlock()
	return e, nil
}

// Get returns the entry for an ID.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	return e, ok
}

// Evict removes an entry, freeing its decoded pixels for collection.
// Renders already holding the image keep it alive until they finish.
func (s *Store) Evict(id string) {
	s.mu.Lock()
	if e, ok := s.byID[id]; ok {
		delete(s.byID, id)
		if e.Path != "" {
			delete(s.pathIDs, e.Path)
		}
	}
	s.mu.Unlock()
}

// Len returns the number of resident entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
