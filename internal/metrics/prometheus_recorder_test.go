package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveHookDuration("include_ast", "execute", 150*time.Microsecond)
	pr.IncTransformResult("include_ast", ResultRescan)
	pr.IncRescan(ScopeBubble)
	pr.ObserveStageDuration("transform", 2*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome(OutcomeSuccess)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "astdoc_transform_hook_duration_seconds")
	assert.Contains(t, names, "astdoc_rescans_total")
	assert.Contains(t, names, "astdoc_run_outcomes_total")
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRescan(ScopeLocal)

	path := filepath.Join(t.TempDir(), "astdoc.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `astdoc_rescans_total{scope="local"} 1`))
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "m.prom"), prom.NewRegistry())
	assert.Error(t, err)
}
