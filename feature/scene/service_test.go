package scene

import (
	"context"
	"testing"
	"time"

	"colabdraw/core/codec"
	"colabdraw/core/database"
	"colabdraw/core/errors"
	"colabdraw/core/reconcile"
	"colabdraw/core/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const roomKey = "room-secret-key"

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store database.DocumentStore) *Service {
	svc := NewService(store, NewVersionCache(), zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func binding(conn string) Binding {
	return Binding{RoomID: "room-1", RoomKey: roomKey, ConnectionID: conn}
}

func ids(elements []scene.Element) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.ID
	}
	return out
}

func storedElements(t *testing.T, store *memStore, roomID string) ([]scene.Element, database.SceneDocument) {
	t.Helper()
	doc, ok := store.docs[roomID]
	require.True(t, ok, "document for %s", roomID)
	sealed, err := codec.DecodeSealed(doc.IV, doc.Ciphertext)
	require.NoError(t, err)
	elements, err := codec.DecryptElements(sealed.IV, sealed.Ciphertext, roomKey)
	require.NoError(t, err)
	return elements, doc
}

func TestService_IsSaved(t *testing.T) {
	svc := newTestService(newMemStore())
	elements := []scene.Element{{ID: "a", Version: 1}}

	tests := []struct {
		name string
		b    Binding
		want bool
	}{
		{"NoRoom", Binding{RoomKey: roomKey, ConnectionID: "c"}, true},
		{"NoKey", Binding{RoomID: "r", ConnectionID: "c"}, true},
		{"NoConnection", Binding{RoomID: "r", RoomKey: roomKey}, true},
		{"NotCached", binding("c"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.IsSaved(tt.b, elements))
		})
	}

	svc.cache.Set("c", elements)
	assert.True(t, svc.IsSaved(binding("c"), elements))
	assert.False(t, svc.IsSaved(binding("c"), []scene.Element{{ID: "a", Version: 2}}))
}

func TestService_SaveCreatesThenSkips(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)
	elements := []scene.Element{{ID: "a", Version: 1}, {ID: "b", Version: 3}}

	saved, err := svc.Save(ctx, binding("conn-1"), elements, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(saved))
	assert.Equal(t, 1, store.creates)

	stored, doc := storedElements(t, store, "room-1")
	assert.Equal(t, []string{"a", "b"}, ids(stored))
	assert.Equal(t, scene.Version(stored), doc.SceneVersion)

	// Same scene through the same connection: nothing happens.
	saved, err = svc.Save(ctx, binding("conn-1"), elements, nil)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 0, store.updates)
}

func TestService_SaveSkipsIncompleteBinding(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	saved, err := svc.Save(context.Background(), Binding{RoomID: "room-1"}, []scene.Element{{ID: "a", Version: 1}}, nil)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, 0, store.gets)
}

func TestService_SaveConverges(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.Save(ctx, binding("alice"), []scene.Element{
		{ID: "shared", Version: 1},
		{ID: "a", Version: 1},
	}, nil)
	require.NoError(t, err)

	saved, err := svc.Save(ctx, binding("bob"), []scene.Element{
		{ID: "shared", Version: 4},
		{ID: "b", Version: 1},
	}, &reconcile.AppState{EditingElementIDs: []string{"shared"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shared", "a", "b"}, ids(saved))
	assert.Equal(t, 1, store.updates)

	stored, doc := storedElements(t, store, "room-1")
	assert.Equal(t, ids(saved), ids(stored))
	assert.Equal(t, scene.Version(saved), doc.SceneVersion)
	for _, el := range stored {
		if el.ID == "shared" {
			assert.Equal(t, int64(4), el.Version)
		}
	}

	// Alice's stale copy does not roll the shared element back.
	saved, err = svc.Save(ctx, binding("alice"), []scene.Element{
		{ID: "shared", Version: 1},
		{ID: "a", Version: 2},
	}, nil)
	require.NoError(t, err)
	versions := map[string]int64{}
	for _, el := range saved {
		versions[el.ID] = el.Version
	}
	assert.Equal(t, map[string]int64{"shared": 4, "a": 2, "b": 1}, versions)

	// Loading yields exactly what was saved.
	loaded, err := svc.Load(ctx, "room-1", roomKey, "carol")
	require.NoError(t, err)
	assert.Equal(t, ids(saved), ids(loaded))
	assert.True(t, svc.IsSaved(binding("carol"), loaded))
}

func TestService_SaveRetriesLostCreateAsUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	other, err := codec.EncryptElements(roomKey, []scene.Element{{ID: "theirs", Version: 1}})
	require.NoError(t, err)
	iv, ciphertext := other.Encode()
	store.beforeCreate = func(s *memStore) {
		s.put(&database.SceneDocument{RoomID: "room-1", IV: iv, Ciphertext: ciphertext})
	}

	saved, err := svc.Save(ctx, binding("conn-1"), []scene.Element{{ID: "mine", Version: 1}}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mine", "theirs"}, ids(saved))
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.updates)
}

func TestService_SaveFiltersUnsyncable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	stale := fixedNow.Add(-48 * time.Hour).UnixMilli()
	recent := fixedNow.Add(-time.Hour).UnixMilli()
	saved, err := svc.Save(context.Background(), binding("conn-1"), []scene.Element{
		{ID: "live", Version: 1},
		{ID: "old-tombstone", Version: 2, IsDeleted: true, Updated: stale},
		{ID: "new-tombstone", Version: 2, IsDeleted: true, Updated: recent},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"live", "new-tombstone"}, ids(saved))
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingRoom", func(t *testing.T) {
		svc := newTestService(newMemStore())
		elements, err := svc.Load(ctx, "nowhere", roomKey, "conn-1")
		require.NoError(t, err)
		assert.Nil(t, elements)
		assert.Equal(t, 0, svc.cache.Len())
	})

	t.Run("WrongKey", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(store)
		_, err := svc.Save(ctx, binding("conn-1"), []scene.Element{{ID: "a", Version: 1}}, nil)
		require.NoError(t, err)

		_, err = svc.Load(ctx, "room-1", "not-the-key", "")
		assert.True(t, errors.Is(err, errors.ErrDecryption))

		_, err = svc.Save(ctx, Binding{RoomID: "room-1", RoomKey: "not-the-key", ConnectionID: "conn-2"}, []scene.Element{{ID: "b", Version: 1}}, nil)
		assert.True(t, errors.Is(err, errors.ErrDecryption))
		assert.Equal(t, 0, store.updates)
	})

	t.Run("DropsInvisible", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(store)
		var tiny scene.Element
		require.NoError(t, tiny.UnmarshalJSON([]byte(`{"id":"tiny","type":"rectangle","version":1,"width":0,"height":0}`)))
		sealed, err := codec.EncryptElements(roomKey, []scene.Element{{ID: "a", Version: 1}, tiny})
		require.NoError(t, err)
		iv, ciphertext := sealed.Encode()
		store.put(&database.SceneDocument{RoomID: "room-1", IV: iv, Ciphertext: ciphertext})

		elements, err := svc.Load(ctx, "room-1", roomKey, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(elements))
		assert.Equal(t, 0, svc.cache.Len())
	})
}

func TestService_PersistenceErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	t.Run("Fetch", func(t *testing.T) {
		store := newMemStore()
		store.getErr = boom
		svc := newTestService(store)

		_, err := svc.Save(ctx, binding("conn-1"), []scene.Element{{ID: "a", Version: 1}}, nil)
		assert.True(t, errors.Is(err, errors.ErrPersistence))
		_, err = svc.Load(ctx, "room-1", roomKey, "")
		assert.True(t, errors.Is(err, errors.ErrPersistence))
		assert.Equal(t, 0, svc.cache.Len())
	})

	t.Run("Update", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(store)
		_, err := svc.Save(ctx, binding("conn-1"), []scene.Element{{ID: "a", Version: 1}}, nil)
		require.NoError(t, err)

		store.updateErr = boom
		_, err = svc.Save(ctx, binding("conn-2"), []scene.Element{{ID: "b", Version: 1}}, nil)
		assert.True(t, errors.Is(err, errors.ErrPersistence))
		_, cached := svc.cache.Get("conn-2")
		assert.False(t, cached)
	})
}

func TestService_Forget(t *testing.T) {
	svc := newTestService(newMemStore())
	svc.cache.Set("conn-1", nil)
	svc.Forget("conn-1")
	assert.Equal(t, 0, svc.cache.Len())
}
