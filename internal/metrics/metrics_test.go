package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := New()
	r.Asset("allocated")
	r.Asset("allocated")
	r.Asset("skipped")
	r.Stage("monte_carlo_var", 25*time.Millisecond)
	r.Allocation("AAPL", 0.4, 40_000)
	r.Violation("POSITIVE_HISTORICAL_VAR")
	r.Run(2*time.Second, 100_000)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.assets.WithLabelValues("allocated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.assets.WithLabelValues("skipped")))
	assert.Equal(t, 0.4, testutil.ToFloat64(r.weight.WithLabelValues("AAPL")))
	assert.Equal(t, 40_000.0, testutil.ToFloat64(r.capital.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.violations.WithLabelValues("POSITIVE_HISTORICAL_VAR")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stage))
}

func TestRecorderWriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.Allocation("MSFT", 1, 5000)

	path := filepath.Join(t.TempDir(), "riskparity.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `riskparity_allocation_capital{asset="MSFT"} 5000`)
}

func TestNilRecorder(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.Asset("allocated")
		r.Stage("statistics", time.Millisecond)
		r.Allocation("X", 1, 1)
		r.Violation("X")
		r.Run(time.Second, 1)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
