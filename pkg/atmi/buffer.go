package atmi

import (
	"context"
	"fmt"
)

// NullBufferType is the type reported for an absent payload.
const NullBufferType = "NULL"

// Buffer is a typed ATMI buffer. Buffers allocated through Alloc are owned
// and freed by Free or by closing their Context; buffers received with a
// service call belong to the dispatcher.
type Buffer struct {
	owned
	Type    string
	Subtype string
	Size    int64
}

// Empty reports whether the buffer carries no native payload.
func (b *Buffer) Empty() bool { return !b.cptr.Bound() }

// Free releases the native buffer once. A second call is a no-op.
//
// The free runs with the owning context bound. Called while a different
// context is bound on the thread, Free fails with ErrContextBusy and the
// buffer stays unreleased; call it again outside that binding.
func (b *Buffer) Free() error {
	if b == nil {
		return nil
	}
	return b.release()
}

// Refresh reloads type, subtype and size from the native buffer.
func (b *Buffer) Refresh() error {
	if err := b.live(); err != nil {
		return err
	}
	c := b.ctx
	return c.With(func() error {
		bt, err := c.native.Types(b.cptr)
		if err != nil {
			return c.raise(err)
		}
		b.Type, b.Subtype, b.Size = bt.Type, bt.Subtype, bt.Size
		return nil
	})
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%s/%s(%d)", b.Type, b.Subtype, b.Size)
}

// Alloc allocates a typed buffer (tpalloc). Errors come back as ATMI domain
// catalog errors, for example ErrTPEINVAL for an empty type, or ErrTPENOENT
// for an unknown one.
func (c *Context) Alloc(btype, subtype string, size int64) (*Buffer, error) {
	var h NativeHandle
	err := c.With(func() error {
		var err error
		h, err = c.native.Alloc(btype, subtype, size)
		if err != nil {
			return c.raise(err)
		}
		c.track(h, kindBuffer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug(context.Background(), "buffer allocated", "type", btype, "subtype", subtype, "size", size)
	return &Buffer{
		owned:   owned{cptr: h, ctx: c, kind: kindBuffer, owns: true},
		Type:    btype,
		Subtype: subtype,
		Size:    size,
	}, nil
}

// ExprTree is a compiled UBF boolean expression.
type ExprTree struct {
	owned
	Expr string
}

// Free releases the compiled tree once. A second call is a no-op.
func (t *ExprTree) Free() error {
	if t == nil {
		return nil
	}
	return t.release()
}

// CompileExpr compiles a boolean expression (Bboolco). Syntax errors come
// back as UBF domain catalog errors such as ErrBSYNTAX.
func (c *Context) CompileExpr(expr string) (*ExprTree, error) {
	var h NativeHandle
	err := c.With(func() error {
		var err error
		h, err = c.native.CompileExpr(expr)
		if err != nil {
			return c.raise(err)
		}
		c.track(h, kindExpr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ExprTree{owned: owned{cptr: h, ctx: c, kind: kindExpr, owns: true}, Expr: expr}, nil
}
