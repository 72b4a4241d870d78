package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnsperf-analyzer.io/pkg/capture"
	"dnsperf-analyzer.io/pkg/report"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "analyzer-results", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, report.DefaultThresholds, cfg.Assessment)
	assert.Equal(t, capture.PodOptions{
		Namespace: capture.DefaultNamespace,
		Selector:  capture.DefaultSelector,
		Container: capture.DefaultContainer,
	}, cfg.Cluster.PodOptions())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
outputDir: /tmp/dns
noPlot: true
logLevel: debug
aggregate: true
assessment:
  successExcellent: 99.9
  latencyExcellent: 20ms
indexer:
  type: local
cluster:
  enabled: true
  namespace: perf
  tailLines: 500
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/dns", cfg.OutputDir)
	assert.True(t, cfg.NoPlot)
	assert.False(t, cfg.NoJSON)
	assert.True(t, cfg.Aggregate)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 99.9, cfg.Assessment.SuccessExcellent)
	assert.Equal(t, 95.0, cfg.Assessment.SuccessGood)
	assert.Equal(t, 20*time.Millisecond, cfg.Assessment.LatencyExcellent)
	assert.Equal(t, report.DefaultThresholds.LatencyFair, cfg.Assessment.LatencyFair)
	assert.Equal(t, indexers.LocalIndexer, cfg.Indexer.Type)
	assert.Equal(t, "/tmp/dns", cfg.Indexer.MetricsDirectory)
	assert.True(t, cfg.Cluster.Enabled)
	assert.Equal(t, "perf", cfg.Cluster.Namespace)
	assert.Equal(t, capture.DefaultSelector, cfg.Cluster.Selector)
	assert.Equal(t, int64(500), cfg.Cluster.TailLines)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := LoadBytes([]byte(`{"outputDir": "out", "concurrency": 4}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, report.DefaultThresholds, cfg.Assessment)
}

func TestLoadJSONLatencyThresholds(t *testing.T) {
	cfg, err := LoadBytes([]byte(`{"assessment": {"successExcellent": 99.9, "latencyExcellent": "20ms", "latencyFair": 300000000}}`), "json")
	require.NoError(t, err)
	assert.Equal(t, 99.9, cfg.Assessment.SuccessExcellent)
	assert.Equal(t, 20*time.Millisecond, cfg.Assessment.LatencyExcellent)
	assert.Equal(t, report.DefaultThresholds.LatencyGood, cfg.Assessment.LatencyGood)
	assert.Equal(t, 300*time.Millisecond, cfg.Assessment.LatencyFair)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unsupported format", "outputDir: out", "toml"},
		{"malformed yaml", "outputDir: [", "yaml"},
		{"bad log level", "logLevel: loud", "yaml"},
		{"negative concurrency", "concurrency: -1", "yaml"},
		{"unordered thresholds", "assessment:\n  successFair: 99.5", "yaml"},
		{"unknown indexer", "indexer:\n  type: kafka", "yaml"},
		{"elastic without servers", "indexer:\n  type: elastic", "yaml"},
		{"empty output dir", `{"outputDir": ""}`, "json"},
		{"bad json latency", `{"assessment": {"latencyGood": "fast"}}`, "json"},
		{"cluster without selector", "cluster:\n  enabled: true\n  selector: \"\"", "yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tc.data), tc.format)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
