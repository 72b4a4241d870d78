package benchmark

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnsperf-analyzer.io/pkg/capture"
	"dnsperf-analyzer.io/pkg/dnsperf"
)

var testTime = time.Date(2024, 9, 30, 12, 15, 58, 0, time.UTC)

func newTestAnalyzer() Analyzer {
	a := NewAnalyzer("0b6a3f3e-6a38-4a8e-9f36-6f1d2b1f9d11", 2)
	a.now = func() time.Time { return testTime }
	return a
}

type textSource struct {
	name string
	text string
	err  error
}

func (s textSource) Name() string { return s.name }

func (s textSource) Read(context.Context) (string, error) { return s.text, s.err }

func testdata(name string) string {
	return filepath.Join("..", "dnsperf", "testdata", name)
}

func TestRun(t *testing.T) {
	a := newTestAnalyzer()
	sources := capture.Files(testdata("current.txt"), testdata("legacy.txt"))
	results, err := a.Run(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, testdata("current.txt"), results[0].Source)
	assert.Equal(t, dnsperf.SchemaCurrent, results[0].Metrics.LatencySchema)
	assert.Equal(t, testdata("legacy.txt"), results[1].Source)
	assert.Equal(t, dnsperf.SchemaLegacy, results[1].Metrics.LatencySchema)
	for _, res := range results {
		assert.Equal(t, a.uuid, res.UUID)
		assert.Equal(t, testTime, res.Timestamp)
		assert.Equal(t, 1, res.Captures)
	}
}

func TestRunReadError(t *testing.T) {
	a := newTestAnalyzer()
	readErr := errors.New("connection refused")
	sources := []capture.Source{
		textSource{name: "ok", text: "Queries sent: 1\n"},
		textSource{name: "broken", err: readErr},
	}
	_, err := a.Run(context.Background(), sources)
	assert.ErrorIs(t, err, readErr)

	_, err = a.Run(context.Background(), capture.Files(filepath.Join(t.TempDir(), "missing.txt")))
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	a := newTestAnalyzer()
	results, err := a.Run(context.Background(), capture.Files(testdata("current.txt"), testdata("legacy.txt")))
	require.NoError(t, err)

	agg := a.Aggregate(results)
	m := agg.Metrics
	assert.Equal(t, AggregateSource, agg.Source)
	assert.Equal(t, 2, agg.Captures)
	assert.Equal(t, int64(1500), m.QueriesSent)
	assert.Equal(t, int64(1470), m.QueriesCompleted)
	assert.Equal(t, int64(30), m.QueriesLost)
	assert.InDelta(t, 98.0, m.Rates.SuccessRatePct, 1e-9)
	assert.InDelta(t, 2.0, m.Rates.LossRatePct, 1e-9)
	assert.InDelta(t, 40.998571, m.AchievedQPS, 1e-9)
	assert.InDelta(t, 60.000531, m.RunTime, 1e-9)
	assert.Equal(t, map[string]int64{
		dnsperf.NoError:  1420,
		dnsperf.NXDomain: 35,
		dnsperf.ServFail: 5,
		dnsperf.Refused:  10,
	}, m.ResponseCodes)
	assert.Equal(t, SchemaMixed, m.LatencySchema)
	assert.InDelta(t, 0.0325, m.Latency.Average, 1e-12)
	assert.InDelta(t, 0.001, m.Latency.Minimum, 1e-12)
	assert.InDelta(t, 0.300, m.Latency.Maximum, 1e-12)
	assert.Equal(t, dnsperf.PacketSizes{RequestBytes: 39, ResponseBytes: 86}, m.PacketSizes)
	assert.Empty(t, m.TestConfig)
	require.NotNil(t, m.PercentileStats)
	assert.Equal(t, 4, m.PercentileStats.SampleCount)
}

func TestAggregateSaturatesCounts(t *testing.T) {
	a := newTestAnalyzer()
	text := "Queries sent: 9223372036854775807\nQueries completed: 9223372036854775807\n" +
		"Response codes: NOERROR 9223372036854775807 (100.00%)\n" +
		"Average packet size: request 9223372036854775807, response 9223372036854775806\n"
	agg := a.Aggregate([]Result{a.Analyze("a", text), a.Analyze("b", text)})
	m := agg.Metrics
	assert.Equal(t, int64(math.MaxInt64), m.QueriesSent)
	assert.Equal(t, int64(math.MaxInt64), m.QueriesCompleted)
	assert.Equal(t, int64(math.MaxInt64), m.ResponseCodes[dnsperf.NoError])
	assert.Equal(t, dnsperf.PacketSizes{RequestBytes: math.MaxInt64, ResponseBytes: math.MaxInt64 - 1}, m.PacketSizes)
	assert.InDelta(t, 100.0, m.Rates.SuccessRatePct, 1e-9)
}

func TestMeanCount(t *testing.T) {
	assert.Equal(t, int64(0), meanCount(nil))
	assert.Equal(t, int64(39), meanCount([]int64{37, 41}))
	assert.Equal(t, int64(39), meanCount([]int64{37, 40}))
	assert.Equal(t, int64(38), meanCount([]int64{37, 38, 40}))
}

func TestAggregateKeepsAgreeingConfig(t *testing.T) {
	a := newTestAnalyzer()
	results := []Result{
		a.Analyze("a", "dnsperf -s 10.0.0.1 -l 30 -c 2\n> NOERROR a.example.com A 0.010\n"),
		a.Analyze("b", "dnsperf -s 10.0.0.1 -l 30 -c 4\n> NOERROR b.example.com A 0.030\n"),
	}
	agg := a.Aggregate(results)
	assert.Equal(t, map[string]string{dnsperf.ConfigServer: "10.0.0.1", dnsperf.ConfigDuration: "30"}, agg.Metrics.TestConfig)
	assert.Equal(t, []float64{0.010, 0.030}, agg.Metrics.Latencies)
	require.NotNil(t, agg.Metrics.PercentileStats)
	assert.InDelta(t, 0.020, agg.Metrics.PercentileStats.P50, 1e-12)
	assert.Equal(t, "", agg.Metrics.LatencySchema)
}

func TestAggregateEmpty(t *testing.T) {
	a := newTestAnalyzer()
	agg := a.Aggregate(nil)
	assert.Equal(t, 0, agg.Captures)
	assert.Zero(t, agg.Metrics.QueriesSent)
	assert.Nil(t, agg.Metrics.PercentileStats)
	assert.Len(t, agg.Metrics.ResponseCodes, len(dnsperf.ResponseCodes))
}
