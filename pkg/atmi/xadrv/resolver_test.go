package xadrv_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurox-dev/exgo/pkg/atmi/atmitest"
	"github.com/endurox-dev/exgo/pkg/atmi/logging"
	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

const (
	libPath      = "/opt/endurox/lib/libndrxxaqdisks.so"
	switchAddr   = uintptr(0x5000)
	hostInit     = uintptr(0x5100)
	embeddedInit = uintptr(0x5200)
)

func driverLibrary() *atmitest.Library {
	return atmitest.NewLibrary(map[string]uintptr{
		xadrv.DefaultSwitchSymbol:       switchAddr,
		xadrv.DefaultHostInitSymbol:     hostInit,
		xadrv.DefaultEmbeddedInitSymbol: embeddedInit,
	})
}

func newResolver(loader *atmitest.Loader, proc *atmitest.Process) *xadrv.Resolver {
	return xadrv.New(xadrv.Config{RMLib: libPath}, loader, proc, xadrv.WithLogger(logging.Nop()))
}

func TestResolveConcurrentCallersShareOneResolution(t *testing.T) {
	loader := atmitest.NewLoader()
	lib := driverLibrary()
	loader.AddLibrary(libPath, lib)
	loader.OpenDelay = 20 * time.Millisecond
	proc := atmitest.NewProcess(false)
	r := newResolver(loader, proc)

	const callers = 16
	var wg sync.WaitGroup
	got := make([]uintptr, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = r.Switch()
		}(i)
	}
	close(start)
	wg.Wait()

	for _, sw := range got {
		assert.Equal(t, switchAddr, sw)
	}
	assert.Equal(t, []string{libPath}, loader.Opens())
	assert.Equal(t, 1, proc.RoleChecks())
	assert.Equal(t, 1, proc.Bootstraps())
	assert.Equal(t, []uintptr{embeddedInit}, loader.Calls())
	assert.Equal(t, 1, proc.SuspendDisabled())
	assert.Equal(t, xadrv.Initialized, r.State())
}

func TestResolveHostRole(t *testing.T) {
	loader := atmitest.NewLoader()
	loader.AddLibrary(libPath, driverLibrary())
	proc := atmitest.NewProcess(true)
	r := newResolver(loader, proc)

	b, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, xadrv.RoleHost, b.Role)
	assert.False(t, b.OwnsRuntime)
	assert.Equal(t, libPath, b.Source)
	assert.Equal(t, []uintptr{hostInit}, loader.Calls())
	assert.Equal(t, 0, proc.Bootstraps())

	require.NoError(t, r.Shutdown())
	assert.Equal(t, 0, proc.Shutdowns())
}

func TestResolveEmbeddedRoleOwnsRuntime(t *testing.T) {
	loader := atmitest.NewLoader()
	loader.AddLibrary(libPath, driverLibrary())
	proc := atmitest.NewProcess(false)
	r := newResolver(loader, proc)

	b, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, xadrv.RoleEmbedded, b.Role)
	assert.True(t, b.OwnsRuntime)
	assert.Equal(t, []uintptr{embeddedInit}, loader.Calls())

	require.NoError(t, r.Shutdown())
	assert.Equal(t, 1, proc.Shutdowns())
}

func TestResolveFindsSwitchInProcessImage(t *testing.T) {
	loader := atmitest.NewLoader()
	loader.SetSelf(driverLibrary())
	proc := atmitest.NewProcess(true)
	r := xadrv.New(xadrv.Config{}, loader, proc, xadrv.WithLogger(logging.Nop()))

	b, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, switchAddr, b.Switch)
	assert.Equal(t, xadrv.SourceProcess, b.Source)
	assert.Empty(t, loader.Opens())
}

func TestResolveWithoutLibraryPath(t *testing.T) {
	loader := atmitest.NewLoader()
	r := xadrv.New(xadrv.Config{}, loader, atmitest.NewProcess(true), xadrv.WithLogger(logging.Nop()))

	assert.Zero(t, r.Switch())
	_, err := r.Resolve()
	assert.ErrorIs(t, err, xadrv.ErrNoLibrary)
	assert.Equal(t, xadrv.LoadFailed, r.State())
	assert.Empty(t, loader.Opens())
}

func TestResolveFailureIsCached(t *testing.T) {
	loader := atmitest.NewLoader()
	proc := atmitest.NewProcess(true)
	r := newResolver(loader, proc)

	assert.Zero(t, r.Switch())
	_, err := r.Resolve()
	var dle *xadrv.DriverLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, libPath, dle.Path)
	assert.Equal(t, xadrv.DefaultSwitchSymbol, dle.Symbol)

	// A library showing up later does not revive the resolver.
	loader.AddLibrary(libPath, driverLibrary())
	assert.Zero(t, r.Switch())
	assert.Len(t, loader.Opens(), 1)
	assert.Equal(t, 0, proc.RoleChecks())
}

func TestResolveMissingSwitchSymbolClosesLibrary(t *testing.T) {
	loader := atmitest.NewLoader()
	lib := atmitest.NewLibrary(map[string]uintptr{xadrv.DefaultHostInitSymbol: hostInit})
	loader.AddLibrary(libPath, lib)
	r := newResolver(loader, atmitest.NewProcess(true))

	assert.Zero(t, r.Switch())
	assert.Equal(t, 1, lib.Closed())
	assert.Empty(t, loader.Calls())
}

func TestResolveInitFailure(t *testing.T) {
	loader := atmitest.NewLoader()
	lib := driverLibrary()
	loader.AddLibrary(libPath, lib)
	loader.SetStatus(embeddedInit, -1)
	proc := atmitest.NewProcess(false)
	r := newResolver(loader, proc)

	b, err := r.Resolve()
	assert.Nil(t, b)
	assert.ErrorIs(t, err, xadrv.ErrInitFailed)
	assert.Zero(t, r.Switch())
	assert.Equal(t, 1, lib.Closed())
	assert.Equal(t, 1, proc.Shutdowns(), "bootstrapped runtime is torn down")
	assert.Equal(t, 0, proc.SuspendDisabled())
	assert.Equal(t, xadrv.LoadFailed, r.State())

	require.NoError(t, r.Shutdown())
	assert.Equal(t, 1, proc.Shutdowns())
}

func TestResolveBootstrapFailure(t *testing.T) {
	loader := atmitest.NewLoader()
	lib := driverLibrary()
	loader.AddLibrary(libPath, lib)
	proc := atmitest.NewProcess(false)
	proc.FailBootstrap()
	r := newResolver(loader, proc)

	_, err := r.Resolve()
	assert.True(t, errors.Is(err, atmitest.ErrBootstrap))
	assert.Equal(t, 1, lib.Closed())
	assert.Empty(t, loader.Calls())
}

func TestStateAndRoleStrings(t *testing.T) {
	assert.Equal(t, "unresolved", xadrv.Unresolved.String())
	assert.Equal(t, "initialized", xadrv.Initialized.String())
	assert.Equal(t, "state(42)", xadrv.State(42).String())
	assert.Equal(t, "embedded", xadrv.RoleEmbedded.String())
	assert.Equal(t, "unknown", xadrv.RoleUnknown.String())
}
