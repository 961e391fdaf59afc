package xadrv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurox-dev/exgo/pkg/atmi/logging"
	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

// The default resolver runs against the real loader. The test binary exports
// no switch and no library is configured, so resolution fails and stays
// failed.
func TestDefaultIsProcessSingleton(t *testing.T) {
	t.Setenv("NDRX_XA_RMLIB", "")

	r := xadrv.Default(xadrv.WithLogger(logging.Nop()))
	require.NotNil(t, r)
	assert.Same(t, r, xadrv.Default())

	assert.Zero(t, xadrv.Switch())
	_, err := r.Resolve()
	assert.ErrorIs(t, err, xadrv.ErrNoLibrary)
	assert.Equal(t, xadrv.LoadFailed, r.State())
	require.NoError(t, r.Shutdown())
}
