package rescache

import (
	"testing"

	"github.com/gekko3d/luma/backend"
	"github.com/stretchr/testify/require"
)

func testKey() TextureKey {
	return TextureKey{Target: backend.Texture2D, Levels: 1, Width: 256, Height: 256, Depth: 1, Samples: 1}
}

func TestCreateDestroyCreateReusesHandle(t *testing.T) {
	driver := backend.NewNullDriver()
	c := NewCache(driver, 4)

	k := testKey()
	h1 := c.CreateTexture(k)
	require.NotEqual(t, backend.InvalidTexture, h1)

	c.DestroyTexture(h1)
	h2 := c.CreateTexture(k)
	require.Equal(t, h1, h2)
}

func TestDestroyWithoutGcNeverHitsBackend(t *testing.T) {
	driver := backend.NewNullDriver()
	c := NewCache(driver, 4)

	k := testKey()
	h := c.CreateTexture(k)
	c.DestroyTexture(h)

	// No Gc call yet: the pooled entry must still be reusable, i.e. the
	// backend never actually destroyed it.
	require.Len(t, c.free[k], 1)
}

func TestGcEvictsAfterMaxAge(t *testing.T) {
	driver := backend.NewNullDriver()
	c := NewCache(driver, 2)

	k := testKey()
	h := c.CreateTexture(k)
	c.DestroyTexture(h)

	for i := 0; i < 5; i++ {
		c.Gc(false, nil)
	}
	require.Empty(t, c.free[k])
}

func TestGcSkippedFramePurgesEntriesAgedOneFrame(t *testing.T) {
	driver := backend.NewNullDriver()
	c := NewCache(driver, 100)

	k := testKey()
	h := c.CreateTexture(k)
	c.DestroyTexture(h)

	c.Gc(false, nil) // age the entry by one real frame first
	c.Gc(true, nil)  // skipping a frame purges anything at least MaxAgeSkippedFrame old
	require.Empty(t, c.free[k])
}

func TestSizeAccountingTracksHighWaterMark(t *testing.T) {
	driver := backend.NewNullDriver()
	c := NewCache(driver, 10)

	k := testKey()
	h := c.CreateTexture(k)
	c.DestroyTexture(h)
	require.Equal(t, k.Size(), c.GcHighWaterMark)
}
