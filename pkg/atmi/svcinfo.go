package atmi

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ClientIDSize is the size of the native client id field, terminator
// included.
const ClientIDSize = 78

// ErrNilCallInfo reports a marshal request without call information.
var ErrNilCallInfo = errors.New("atmi: nil call info")

// RawClientID is the native CLIENTID structure.
type RawClientID struct {
	Data string
}

// ClientID identifies the caller of a service.
type ClientID struct {
	Data string
}

// RawCallInfo is the native TPSVCINFO handed to a service dispatch. Integer
// fields keep the native widths: C long is 64 bits, the call descriptor is a
// C int.
type RawCallInfo struct {
	Name     string
	Data     NativeHandle
	Len      int64
	Flags    int64
	Cd       int32
	AppKey   int64
	ClientID RawClientID
	FName    string
}

// SvcInfo is the managed view of one inbound service call.
type SvcInfo struct {
	Name     string
	Data     *Buffer
	Flags    int64
	Cd       int32
	AppKey   int64
	ClientID ClientID
	FName    string
}

// GetrplyResult is the reply of an asynchronous call.
type GetrplyResult struct {
	Cd   int32
	Data *Buffer
}

// BufferTranslator turns a raw payload into a Buffer.
type BufferTranslator interface {
	TranslateBuffer(c *Context, data NativeHandle, length int64) (*Buffer, error)
}

// typesTranslator asks the middleware for the buffer type. The resulting
// buffer is not owned.
type typesTranslator struct{}

func (typesTranslator) TranslateBuffer(c *Context, data NativeHandle, length int64) (*Buffer, error) {
	if !data.Bound() {
		return &Buffer{owned: owned{ctx: c, kind: kindBuffer}, Type: NullBufferType, Size: 0}, nil
	}
	bt, err := c.native.Types(data)
	if err != nil {
		return nil, c.raise(err)
	}
	return &Buffer{
		owned:   owned{cptr: data, ctx: c, kind: kindBuffer},
		Type:    bt.Type,
		Subtype: bt.Subtype,
		Size:    length,
	}, nil
}

func translateClientID(raw RawClientID) (ClientID, error) {
	if len(raw.Data) >= ClientIDSize {
		return ClientID{}, fmt.Errorf("atmi: client id is %d bytes, limit %d", len(raw.Data), ClientIDSize-1)
	}
	if !utf8.ValidString(raw.Data) {
		return ClientID{}, errors.New("atmi: client id is not valid UTF-8")
	}
	return ClientID{Data: raw.Data}, nil
}

// svcInfoBuilder collects sub-translations; build commits the composite
// only once all of them succeeded.
type svcInfoBuilder struct {
	raw      *RawCallInfo
	data     *Buffer
	clientID ClientID
}

func (b *svcInfoBuilder) payload(c *Context) error {
	data, err := c.buffers.TranslateBuffer(c, b.raw.Data, b.raw.Len)
	if err != nil {
		return fmt.Errorf("translate payload: %w", err)
	}
	b.data = data
	return nil
}

func (b *svcInfoBuilder) client() error {
	id, err := translateClientID(b.raw.ClientID)
	if err != nil {
		return fmt.Errorf("translate client id: %w", err)
	}
	b.clientID = id
	return nil
}

func (b *svcInfoBuilder) build() *SvcInfo {
	return &SvcInfo{
		Name:     b.raw.Name,
		Data:     b.data,
		Flags:    b.raw.Flags,
		Cd:       b.raw.Cd,
		AppKey:   b.raw.AppKey,
		ClientID: b.clientID,
		FName:    b.raw.FName,
	}
}

// MarshalSvcInfo converts a native service call into an SvcInfo. Any
// sub-translation failure aborts the whole conversion and nothing is
// returned.
func (c *Context) MarshalSvcInfo(raw *RawCallInfo) (*SvcInfo, error) {
	if raw == nil {
		return nil, ErrNilCallInfo
	}
	var out *SvcInfo
	err := c.With(func() error {
		b := &svcInfoBuilder{raw: raw}
		if err := b.payload(c); err != nil {
			return err
		}
		if err := b.client(); err != nil {
			return err
		}
		out = b.build()
		return nil
	})
	if err != nil {
		c.log.Error(context.Background(), "failed to marshal service call", "service", raw.Name, "error", err)
		return nil, err
	}
	c.log.Debug(context.Background(), "service call marshalled", "service", raw.Name, "cd", raw.Cd)
	return out, nil
}

// MarshalReply converts a tpgetrply reply into a GetrplyResult.
func (c *Context) MarshalReply(cd int32, data NativeHandle, length int64) (*GetrplyResult, error) {
	var out *GetrplyResult
	err := c.With(func() error {
		buf, err := c.buffers.TranslateBuffer(c, data, length)
		if err != nil {
			return fmt.Errorf("translate reply: %w", err)
		}
		out = &GetrplyResult{Cd: cd, Data: buf}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
