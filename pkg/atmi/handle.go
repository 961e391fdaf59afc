package atmi

import (
	"fmt"
	"reflect"
	"sync"
)

// NativeHandle is an opaque pointer to a resource owned by the middleware:
// a typed buffer or a compiled expression tree. Zero means unbound.
type NativeHandle uintptr

// Bound reports whether h refers to a native resource.
func (h NativeHandle) Bound() bool { return h != 0 }

// HandleCarrier is implemented by types that store a native handle directly.
type HandleCarrier interface {
	NativeHandle() NativeHandle
	SetNativeHandle(h NativeHandle)
}

const handleTag = "cptr"

// fieldCache maps a struct type to the index path of its handle field, or to
// a nil slice when the type has none.
var fieldCache sync.Map

// Acquire reads the native handle stored in carrier. The carrier implements
// HandleCarrier or is a pointer to a struct with a 64-bit integer field
// tagged `atmi:"cptr"`. Any other shape fails with a *BindingError.
func Acquire(carrier any) (NativeHandle, error) {
	if hc, ok := carrier.(HandleCarrier); ok {
		return hc.NativeHandle(), nil
	}
	f, err := handleField("acquire", carrier)
	if err != nil {
		return 0, err
	}
	switch f.Kind() {
	case reflect.Int64:
		return NativeHandle(uint64(f.Int())), nil
	default:
		return NativeHandle(f.Uint()), nil
	}
}

// Bind stores h in carrier. The handle's validity on the native side is not
// checked; releasing is where that matters.
func Bind(carrier any, h NativeHandle) error {
	if hc, ok := carrier.(HandleCarrier); ok {
		hc.SetNativeHandle(h)
		return nil
	}
	f, err := handleField("bind", carrier)
	if err != nil {
		return err
	}
	switch f.Kind() {
	case reflect.Int64:
		f.SetInt(int64(h))
	default:
		f.SetUint(uint64(h))
	}
	return nil
}

func handleField(op string, carrier any) (reflect.Value, error) {
	shapeErr := &BindingError{Op: op, Type: fmt.Sprintf("%T", carrier), Field: handleTag}
	v := reflect.ValueOf(carrier)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, shapeErr
	}
	idx := fieldIndex(v.Elem().Type())
	if idx == nil {
		return reflect.Value{}, shapeErr
	}
	f, err := v.Elem().FieldByIndexErr(idx)
	if err != nil || !f.CanSet() {
		return reflect.Value{}, shapeErr
	}
	return f, nil
}

func fieldIndex(t reflect.Type) []int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]int)
	}
	var idx []int
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Tag.Get("atmi") != handleTag {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Uintptr, reflect.Uint64, reflect.Int64:
			idx = f.Index
		}
		break
	}
	fieldCache.Store(t, idx)
	return idx
}

const (
	kindBuffer = "buffer"
	kindExpr   = "expr"
)

// owned is the owning half of a carrier: the handle, the context that
// allocated it, and the one-time release flag.
type owned struct {
	cptr     NativeHandle
	ctx      *Context
	kind     string
	owns     bool
	released bool
}

func (o *owned) NativeHandle() NativeHandle { return o.cptr }

func (o *owned) SetNativeHandle(h NativeHandle) { o.cptr = h }

// AtmiContext returns the context the handle belongs to.
func (o *owned) AtmiContext() *Context { return o.ctx }

// Released reports whether the handle's one-time release has happened.
func (o *owned) Released() bool { return o.released }

// Owned reports whether releasing the carrier frees native memory. Buffers
// received by a service are owned by the dispatcher.
func (o *owned) Owned() bool { return o.owns }

func (o *owned) live() error {
	if o.released {
		return ErrReleased
	}
	if !o.cptr.Bound() {
		return ErrUnbound
	}
	return nil
}

// release frees the native resource once. Later calls are no-ops.
func (o *owned) release() error {
	if o.released {
		return nil
	}
	if !o.owns || !o.cptr.Bound() || o.ctx == nil {
		o.released = true
		return nil
	}
	if err := o.ctx.release(o.cptr, o.kind); err != nil {
		return err
	}
	o.released = true
	o.cptr = 0
	return nil
}
