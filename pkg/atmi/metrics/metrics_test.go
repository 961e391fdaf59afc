package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurox-dev/exgo/pkg/atmi"
	"github.com/endurox-dev/exgo/pkg/atmi/atmitest"
	"github.com/endurox-dev/exgo/pkg/atmi/logging"
	"github.com/endurox-dev/exgo/pkg/atmi/metrics"
	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

func TestCollectorObservesContext(t *testing.T) {
	col := metrics.NewCollector()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, col.Register(reg))

	n := atmitest.NewNative()
	c, err := atmi.NewContext(atmi.WithNative(n), atmi.WithObserver(col), atmi.WithLogger(logging.Nop()))
	require.NoError(t, err)
	defer c.Close()

	buf, err := c.Alloc("UBF", "", 1024)
	require.NoError(t, err)
	_, err = c.Alloc("", "", 0)
	require.ErrorIs(t, err, atmi.ErrTPEINVAL)
	_, err = c.CompileExpr("A==1")
	require.NoError(t, err)
	require.NoError(t, buf.Free())

	expected := `
# HELP exgo_context_binds_total Outermost context bindings.
# TYPE exgo_context_binds_total counter
exgo_context_binds_total 4
# HELP exgo_contexts_bound ATMI contexts currently installed on an OS thread.
# TYPE exgo_contexts_bound gauge
exgo_contexts_bound 0
# HELP exgo_handles_live Native handles allocated and not yet released.
# TYPE exgo_handles_live gauge
exgo_handles_live{kind="buffer"} 0
exgo_handles_live{kind="expr"} 1
# HELP exgo_errors_translated_total Native errors translated, by type name.
# TYPE exgo_errors_translated_total counter
exgo_errors_translated_total{type="AtmiTPEINVALException"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"exgo_context_binds_total", "exgo_contexts_bound", "exgo_handles_live", "exgo_errors_translated_total"))
}

func TestResolverCollector(t *testing.T) {
	loader := atmitest.NewLoader()
	r := xadrv.New(xadrv.Config{}, loader, atmitest.NewProcess(true), xadrv.WithLogger(logging.Nop()))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(metrics.NewResolverCollector(r)))

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP exgo_xa_switch_available 1 if the XA switch is resolved and initialized, otherwise 0
# TYPE exgo_xa_switch_available gauge
exgo_xa_switch_available 0
`), "exgo_xa_switch_available"))

	assert.Zero(t, r.Switch())
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP exgo_xa_resolver_state Resolution state of the XA switch, labelled by name
# TYPE exgo_xa_resolver_state gauge
exgo_xa_resolver_state{state="load-failed"} 4
`), "exgo_xa_resolver_state"))
}
