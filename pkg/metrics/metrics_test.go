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

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.RecordsRead("binary", "reflexive", 3)
	c.RecordsRead("binary", "reflexive", 2)
	c.RecordsWritten("parquet", "non_ip", 7)
	c.BytesWritten("binary", 1024)
	c.RowGroupWritten()
	c.RowGroupWritten()

	assert.Equal(t, 5.0, testutil.ToFloat64(c.recordsRead.WithLabelValues("binary", "reflexive")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.recordsWritten.WithLabelValues("parquet", "non_ip")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.bytesWritten.WithLabelValues("binary")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.rowGroups))
}

func TestSampleProcess(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.SampleProcess())
	assert.Greater(t, testutil.ToFloat64(c.residentMemory), 0.0)
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.ObservePhase("read", 20*time.Millisecond)
	c.RecordsRead("parquet", "non_reflexive", 4)

	path := filepath.Join(t.TempDir(), "ipws.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ipws_records_read_total{format="parquet",tier="non_reflexive"} 4`)
	assert.Contains(t, string(data), `ipws_phase_duration_seconds_count{phase="read"} 1`)
}

func TestTimer(t *testing.T) {
	timer := NewTimer("merge")
	assert.Equal(t, "merge", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}
