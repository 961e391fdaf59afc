package atmi_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurox-dev/exgo/pkg/atmi"
	"github.com/endurox-dev/exgo/pkg/atmi/atmitest"
)

func TestBufferFreeRunsOnceUnderOwningContext(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	buf, err := c.Alloc("UBF", "", 1024)
	require.NoError(t, err)
	h := buf.NativeHandle()
	require.True(t, h.Bound())
	assert.True(t, buf.Owned())
	assert.Equal(t, []atmi.NativeHandle{h}, c.LiveHandles())

	require.NoError(t, buf.Free())
	assert.Equal(t, 1, n.FreeCount(h))
	assert.Equal(t, c.Token(), n.FreedIn(h))
	assert.Equal(t, 0, n.BoundThreads())
	assert.True(t, buf.Released())
	assert.Empty(t, c.LiveHandles())

	require.NoError(t, buf.Free())
	assert.Equal(t, 1, n.FreeCount(h))
}

func TestBufferHandleThroughRegistry(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	buf, err := c.Alloc("JSON", "", 128)
	require.NoError(t, err)

	h, err := atmi.Acquire(buf)
	require.NoError(t, err)
	assert.Equal(t, buf.NativeHandle(), h)

	ctx, err := atmi.ResolveContext(buf)
	require.NoError(t, err)
	assert.Same(t, c, ctx)
}

func TestAllocErrors(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	_, err := c.Alloc("", "", 1024)
	assert.ErrorIs(t, err, atmi.ErrTPEINVAL)

	_, err = c.Alloc("XML", "", 1024)
	assert.ErrorIs(t, err, atmi.ErrTPENOENT)
	var e *atmi.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Message, "XML")
	assert.Equal(t, 0, n.BoundThreads())
}

func TestBufferRefresh(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	buf, err := c.Alloc("VIEW", "ORDERV", 512)
	require.NoError(t, err)
	buf.Type, buf.Subtype, buf.Size = "", "", 0

	require.NoError(t, buf.Refresh())
	assert.Equal(t, "VIEW/ORDERV(512)", buf.String())

	require.NoError(t, buf.Free())
	assert.ErrorIs(t, buf.Refresh(), atmi.ErrReleased)
}

func TestCompileExpr(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	tree, err := c.CompileExpr("T_STRING_FLD=='ABC' && (T_LONG_FLD > 5)")
	require.NoError(t, err)
	h := tree.NativeHandle()

	require.NoError(t, tree.Free())
	require.NoError(t, tree.Free())
	assert.Equal(t, 1, n.FreeCount(h))

	_, err = c.CompileExpr("(T_LONG_FLD > 5")
	assert.ErrorIs(t, err, atmi.ErrBSYNTAX)
	var e *atmi.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "UbfBSYNTAXException", e.TypeName())
}

func TestCloseFreesLiveHandles(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	a, err := c.Alloc("UBF", "", 1024)
	require.NoError(t, err)
	b, err := c.Alloc("STRING", "", 16)
	require.NoError(t, err)
	tree, err := c.CompileExpr("A==1")
	require.NoError(t, err)

	handles := c.LiveHandles()
	assert.Equal(t, []atmi.NativeHandle{a.NativeHandle(), b.NativeHandle(), tree.NativeHandle()}, handles)

	require.NoError(t, c.Close())
	for _, h := range handles {
		assert.Equal(t, 1, n.FreeCount(h))
	}
	assert.Equal(t, 0, n.LiveBuffers())
	assert.Equal(t, 0, n.LiveContexts())

	// Carriers outliving their context never reach the native free again.
	require.NoError(t, a.Free())
	require.NoError(t, tree.Free())
	assert.Equal(t, 1, n.FreeCount(handles[0]))
	assert.Equal(t, 1, n.FreeCount(handles[2]))
}

func TestCloseCanBeRetriedAfterFailedSweep(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	buf, err := c.Alloc("UBF", "", 1024)
	require.NoError(t, err)
	h := buf.NativeHandle()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	n.Install(0xdead0)
	assert.ErrorIs(t, c.Close(), atmi.ErrContextBusy)
	assert.False(t, c.Closed())
	assert.Equal(t, []atmi.NativeHandle{h}, c.LiveHandles())
	assert.Equal(t, 0, n.FreeCount(h))

	n.Install(atmi.NullContext)
	require.NoError(t, c.Close())
	assert.True(t, c.Closed())
	assert.Equal(t, 1, n.FreeCount(h))
}

func TestFreeUnderForeignContextKeepsBuffer(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	buf, err := c.Alloc("STRING", "", 64)
	require.NoError(t, err)
	h := buf.NativeHandle()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	n.Install(0xdead0)
	assert.ErrorIs(t, buf.Free(), atmi.ErrContextBusy)
	assert.False(t, buf.Released())
	assert.Equal(t, 0, n.FreeCount(h))

	n.Install(atmi.NullContext)
	require.NoError(t, buf.Free())
	assert.True(t, buf.Released())
	assert.Equal(t, 1, n.FreeCount(h))
}
