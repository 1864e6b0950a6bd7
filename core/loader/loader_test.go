package loader_test

import (
	"errors"
	"testing"

	"colabdraw/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(app fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	mgr := loader.NewManager()
	scene := &stubFeature{name: "scene", enabled: true}
	disabled := &stubFeature{name: "disabled"}
	assets := &stubFeature{name: "assets", enabled: true}
	mgr.Register(scene)
	mgr.Register(disabled)
	mgr.Register(assets)
	assert.Len(t, mgr.Features(), 3)

	loaded, err := mgr.LoadAll(fiber.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"scene", "assets"}, loaded)
	assert.False(t, disabled.loaded)
}

func TestManager_LoadAllFailure(t *testing.T) {
	mgr := loader.NewManager()
	mgr.Register(&stubFeature{name: "ok", enabled: true})
	mgr.Register(&stubFeature{name: "broken", enabled: true, err: errors.New("boom")})
	last := &stubFeature{name: "last", enabled: true}
	mgr.Register(last)

	loaded, err := mgr.LoadAll(fiber.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"ok"}, loaded)
	assert.False(t, last.loaded)
}
