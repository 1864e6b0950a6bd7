package scene

import (
	"context"
	"sync"

	"colabdraw/core/database"
	"colabdraw/core/errors"
)

// memStore is an in-memory database.DocumentStore.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]database.SceneDocument
	gets    int
	creates int
	updates int

	getErr    error
	updateErr error
	// beforeCreate runs inside CreateDocument before the existence check.
	beforeCreate func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]database.SceneDocument)}
}

func (s *memStore) GetDocument(_ context.Context, roomID string) (*database.SceneDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	doc, ok := s.docs[roomID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "scene %s", roomID)
	}
	return &doc, nil
}

func (s *memStore) CreateDocument(_ context.Context, doc *database.SceneDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.beforeCreate != nil {
		hook := s.beforeCreate
		s.beforeCreate = nil
		hook(s)
	}
	if _, ok := s.docs[doc.RoomID]; ok {
		return errors.Wrapf(errors.ErrConflict, "scene %s", doc.RoomID)
	}
	s.docs[doc.RoomID] = *doc
	return nil
}

func (s *memStore) UpdateDocument(_ context.Context, doc *database.SceneDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.docs[doc.RoomID]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "scene %s", doc.RoomID)
	}
	s.docs[doc.RoomID] = *doc
	return nil
}

func (s *memStore) put(doc *database.SceneDocument) {
	s.docs[doc.RoomID] = *doc
}
