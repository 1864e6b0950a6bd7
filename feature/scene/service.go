package scene

import (
	"context"
	"time"

	"colabdraw/core/codec"
	"colabdraw/core/database"
	"colabdraw/core/errors"
	"colabdraw/core/reconcile"
	"colabdraw/core/scene"

	"go.uber.org/zap"
)

// Binding ties a save to a room, its encryption key and the client connection.
type Binding struct {
	RoomID       string
	RoomKey      string
	ConnectionID string
}

func (b Binding) complete() bool {
	return b.RoomID != "" && b.RoomKey != "" && b.ConnectionID != ""
}

// Service persists encrypted scenes and reconciles concurrent edits.
type Service struct {
	store  database.DocumentStore
	cache  *VersionCache
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new scene service.
func NewService(store database.DocumentStore, cache *VersionCache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewVersionCache()
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Cache returns the connection version cache.
func (s *Service) Cache() *VersionCache {
	return s.cache
}

// IsSaved reports whether elements need no save on this binding. An incomplete
// binding has nowhere to save to and counts as saved.
func (s *Service) IsSaved(b Binding, elements []scene.Element) bool {
	if !b.complete() {
		return true
	}
	v, ok := s.cache.Get(b.ConnectionID)
	return ok && v == scene.Version(elements)
}

// Save merges local into the stored scene of the room and writes the result.
// It returns nil without touching the store when the scene is already saved.
// The fetch-reconcile-write sequence is not transactional: a concurrent writer
// between the read and the update is overwritten.
func (s *Service) Save(ctx context.Context, b Binding, local []scene.Element, appState *reconcile.AppState) ([]scene.Element, error) {
	if s.IsSaved(b, local) {
		return nil, nil
	}
	l := s.logger.With(zap.String("room", b.RoomID), zap.String("connection", b.ConnectionID))

	now := s.now()
	local = scene.Syncable(local, now)

	existing, err := s.store.GetDocument(ctx, b.RoomID)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		saved, err := s.create(ctx, b, local)
		if !errors.Is(err, errors.ErrConflict) {
			if err == nil {
				l.Debug("Scene created", zap.Int("elements", len(saved)))
			}
			return saved, err
		}
		l.Info("Scene created concurrently, merging instead")
		existing, err = s.store.GetDocument(ctx, b.RoomID)
		if err != nil {
			return nil, errors.Persistence(err, "refetch scene")
		}
	case err != nil:
		return nil, errors.Persistence(err, "fetch scene")
	}

	saved, report, err := s.merge(ctx, b, existing, local, appState, now)
	if err != nil {
		return nil, err
	}
	l.Debug("Scene updated",
		zap.Int("elements", len(saved)),
		zap.Int("local_wins", report.Summary.LocalWins),
		zap.Int("remote_wins", report.Summary.RemoteWins),
	)
	return saved, nil
}

func (s *Service) create(ctx context.Context, b Binding, elements []scene.Element) ([]scene.Element, error) {
	doc, err := seal(b, elements)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, errors.Persistence(err, "create scene")
	}
	s.cache.Set(b.ConnectionID, elements)
	return elements, nil
}

func (s *Service) merge(ctx context.Context, b Binding, existing *database.SceneDocument, local []scene.Element, appState *reconcile.AppState, now time.Time) ([]scene.Element, *reconcile.Report, error) {
	remote, err := open(existing, b.RoomKey)
	if err != nil {
		return nil, nil, err
	}
	remote = scene.Syncable(scene.Restore(remote, scene.RestoreOptions{}), now)

	report := reconcile.ReconcileWithReport(local, remote, appState)
	merged := scene.Syncable(report.Elements, now)

	doc, err := seal(b, merged)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, nil, errors.Persistence(err, "update scene")
	}
	s.cache.Set(b.ConnectionID, merged)
	return merged, report, nil
}

// Load returns the stored scene of a room, or nil if the room has none. When
// conn is set, the loaded fingerprint is cached for it.
func (s *Service) Load(ctx context.Context, roomID, roomKey, conn string) ([]scene.Element, error) {
	doc, err := s.store.GetDocument(ctx, roomID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence(err, "fetch scene")
	}

	elements, err := open(doc, roomKey)
	if err != nil {
		return nil, err
	}
	elements = scene.Syncable(scene.Restore(elements, scene.RestoreOptions{DeleteInvisible: true}), s.now())

	if conn != "" {
		s.cache.Set(conn, elements)
	}
	return elements, nil
}

// Forget drops the cached fingerprint of a closed connection.
func (s *Service) Forget(conn string) {
	s.cache.Forget(conn)
}

func seal(b Binding, elements []scene.Element) (*database.SceneDocument, error) {
	sealed, err := codec.EncryptElements(b.RoomKey, elements)
	if err != nil {
		return nil, errors.Wrap(err, "encrypt scene")
	}
	iv, ciphertext := sealed.Encode()
	return &database.SceneDocument{
		RoomID:       b.RoomID,
		SceneVersion: scene.Version(elements),
		IV:           iv,
		Ciphertext:   ciphertext,
	}, nil
}

func open(doc *database.SceneDocument, roomKey string) ([]scene.Element, error) {
	sealed, err := codec.DecodeSealed(doc.IV, doc.Ciphertext)
	if err != nil {
		return nil, err
	}
	return codec.DecryptElements(sealed.IV, sealed.Ciphertext, roomKey)
}
