package atmi_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurox-dev/exgo/pkg/atmi"
	"github.com/endurox-dev/exgo/pkg/atmi/atmitest"
)

func TestMarshalSvcInfoEmptyPayload(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	info, err := c.MarshalSvcInfo(&atmi.RawCallInfo{
		Name:     "ORDER",
		Cd:       3,
		AppKey:   42,
		ClientID: atmi.RawClientID{Data: "/1/12345/1/0"},
		FName:    "proc",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORDER", info.Name)
	assert.Equal(t, "proc", info.FName)
	assert.Equal(t, int64(0), info.Flags)
	assert.Equal(t, int32(3), info.Cd)
	assert.Equal(t, int64(42), info.AppKey)
	assert.Equal(t, "/1/12345/1/0", info.ClientID.Data)
	require.NotNil(t, info.Data)
	assert.True(t, info.Data.Empty())
	assert.Equal(t, atmi.NullBufferType, info.Data.Type)
	assert.Equal(t, int64(0), info.Data.Size)
	assert.Equal(t, 0, n.BoundThreads())

	// An empty inbound payload has no native buffer behind it.
	assert.ErrorIs(t, info.Data.Refresh(), atmi.ErrUnbound)
}

func TestMarshalSvcInfoPreservesSignedFields(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	info, err := c.MarshalSvcInfo(&atmi.RawCallInfo{
		Name:   "NEG",
		Flags:  -1,
		Cd:     math.MinInt32,
		AppKey: math.MinInt64,
		FName:  "svc_neg",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), info.Flags)
	assert.Equal(t, int32(math.MinInt32), info.Cd)
	assert.Equal(t, int64(math.MinInt64), info.AppKey)
	assert.Equal(t, "svc_neg", info.FName)
}

func TestMarshalSvcInfoPayloadIsNotOwned(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)
	h := n.AddBuffer("STRING", "", 32)

	info, err := c.MarshalSvcInfo(&atmi.RawCallInfo{Name: "ECHO", Data: h, Len: 5})
	require.NoError(t, err)
	assert.Equal(t, "STRING", info.Data.Type)
	assert.Equal(t, int64(5), info.Data.Size)
	assert.False(t, info.Data.Owned())
	assert.Empty(t, c.LiveHandles())

	require.NoError(t, info.Data.Free())
	assert.True(t, info.Data.Released())
	assert.Equal(t, 0, n.FreeCount(h))
}

func TestMarshalSvcInfoIsAtomic(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)

	info, err := c.MarshalSvcInfo(&atmi.RawCallInfo{
		Name:     "ORDER",
		ClientID: atmi.RawClientID{Data: strings.Repeat("x", atmi.ClientIDSize)},
	})
	assert.Error(t, err)
	assert.Nil(t, info)
	assert.Equal(t, 0, n.BoundThreads())

	info, err = c.MarshalSvcInfo(&atmi.RawCallInfo{Name: "ORDER", Data: 0xbad00, Len: 10})
	assert.ErrorIs(t, err, atmi.ErrTPEINVAL)
	assert.Nil(t, info)

	info, err = c.MarshalSvcInfo(nil)
	assert.ErrorIs(t, err, atmi.ErrNilCallInfo)
	assert.Nil(t, info)
}

type failingBuffers struct{ err error }

func (f failingBuffers) TranslateBuffer(*atmi.Context, atmi.NativeHandle, int64) (*atmi.Buffer, error) {
	return nil, f.err
}

func TestMarshalSvcInfoBufferTranslatorFailure(t *testing.T) {
	n := atmitest.NewNative()
	errCodec := errors.New("codec unavailable")
	c := newContext(t, n, atmi.WithBufferTranslator(failingBuffers{err: errCodec}))

	info, err := c.MarshalSvcInfo(&atmi.RawCallInfo{Name: "ORDER"})
	assert.ErrorIs(t, err, errCodec)
	assert.Nil(t, info)

	reply, err := c.MarshalReply(7, 0, 0)
	assert.ErrorIs(t, err, errCodec)
	assert.Nil(t, reply)
}

func TestMarshalReply(t *testing.T) {
	n := atmitest.NewNative()
	c := newContext(t, n)
	h := n.AddBuffer("UBF", "", 1024)

	reply, err := c.MarshalReply(7, h, 1024)
	require.NoError(t, err)
	assert.Equal(t, int32(7), reply.Cd)
	assert.Equal(t, "UBF", reply.Data.Type)
	assert.Equal(t, h, reply.Data.NativeHandle())
}
