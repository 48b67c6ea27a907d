package loader

import (
	"errors"
	"testing"

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

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	a := &stubFeature{name: "machines", enabled: true}
	b := &stubFeature{name: "support", enabled: false}
	c := &stubFeature{name: "ips", enabled: true}

	mgr := NewManager()
	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(c)
	assert.Len(t, mgr.Features(), 3)

	loaded, err := mgr.LoadAll(fiber.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"machines", "ips"}, loaded)
	assert.True(t, a.loaded)
	assert.False(t, b.loaded)
	assert.True(t, c.loaded)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a := &stubFeature{name: "machines", enabled: true, err: boom}
	b := &stubFeature{name: "support", enabled: true}

	mgr := NewManager()
	mgr.Register(a)
	mgr.Register(b)

	loaded, err := mgr.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "machines")
	assert.Empty(t, loaded)
	assert.False(t, b.loaded)
}
