package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullDriverBufferRoundTrip(t *testing.T) {
	d := NewNullDriver()
	h := d.CreateBufferObject(BufferUsageUniform, 64)
	require.NotEqual(t, InvalidBuffer, h)

	d.UpdateBufferObject(h, []byte{1, 2, 3, 4}, 0)
	d.DestroyBufferObject(h)

	// Updating a destroyed handle is a no-op, not a panic (spec.md §7).
	require.NotPanics(t, func() {
		d.UpdateBufferObject(h, []byte{5}, 0)
	})
}

func TestNullDriverDrawRecordsPrimitive(t *testing.T) {
	d := NewNullDriver()
	vb := d.CreateBufferObject(BufferUsageVertex, 128)
	ib := d.CreateBufferObject(BufferUsageIndex, 64)
	rt := d.CreateRenderTarget(InvalidTexture, InvalidTexture)

	d.BeginRenderPass(rt, RenderTargetParams{ShouldClear: true})
	d.Draw(InvalidPipeline, Primitive{VertexBuffer: vb, IndexBuffer: ib, IndexCount: 36})
	d.EndRenderPass()

	require.Len(t, d.Draws, 1)
	require.EqualValues(t, 36, d.Draws[0].IndexCount)
}

func TestNullDriverSyncSignalsImmediately(t *testing.T) {
	d := NewNullDriver()
	s := d.CreateSync()
	require.Equal(t, SyncSignaled, d.GetSyncStatus(s))

	d.DestroySync(s)
	require.Equal(t, SyncNotReady, d.GetSyncStatus(s))
}

func TestNullDriverBindUniformBufferTracksBindingPoint(t *testing.T) {
	d := NewNullDriver()
	h := d.CreateBufferObject(BufferUsageUniform, 256)
	d.BindUniformBufferRange(3, h, 128, 64)
	require.Equal(t, h, d.BoundUniforms[3])
}
