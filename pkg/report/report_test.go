package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnsperf-analyzer.io/pkg/benchmark"
	"dnsperf-analyzer.io/pkg/dnsperf"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		name    string
		success float64
		latency float64
		want    Assessment
	}{
		{"excellent", 99.5, 0.010, Assessment{Excellent, Excellent}},
		{"boundaries are inclusive", 99, 0.050, Assessment{Excellent, Excellent}},
		{"good", 96, 0.080, Assessment{Good, Good}},
		{"fair", 91, 0.150, Assessment{Fair, Fair}},
		{"poor", 50, 0.500, Assessment{Poor, Poor}},
		{"nothing sent", 0, 0, Assessment{Poor, Excellent}},
		{"latency beyond duration range", 100, 1e10, Assessment{Excellent, Poor}},
		{"latency just above fair", 100, 0.2000001, Assessment{Excellent, Poor}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultThresholds.Assess(tc.success, tc.latency))
		})
	}
}

func TestThresholdsUnmarshalJSON(t *testing.T) {
	th := DefaultThresholds
	require.NoError(t, json.Unmarshal([]byte(`{"successGood": 97, "latencyExcellent": "20ms", "latencyGood": 80000000}`), &th))
	assert.Equal(t, 97.0, th.SuccessGood)
	assert.Equal(t, DefaultThresholds.SuccessExcellent, th.SuccessExcellent)
	assert.Equal(t, 20*time.Millisecond, th.LatencyExcellent)
	assert.Equal(t, 80*time.Millisecond, th.LatencyGood)
	assert.Equal(t, DefaultThresholds.LatencyFair, th.LatencyFair)

	for _, bad := range []string{`{"latencyFair": "soon"}`, `{"latencyFair": true}`, `{"latencyFair": 1.5}`} {
		th := DefaultThresholds
		assert.Error(t, json.Unmarshal([]byte(bad), &th), bad)
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds.Validate())

	unordered := DefaultThresholds
	unordered.SuccessGood = 99.5
	assert.Error(t, unordered.Validate())

	outOfRange := DefaultThresholds
	outOfRange.SuccessExcellent = 120
	assert.Error(t, outOfRange.Validate())

	latency := DefaultThresholds
	latency.LatencyGood = 10 * time.Millisecond
	assert.Error(t, latency.Validate())

	zero := DefaultThresholds
	zero.LatencyExcellent = 0
	assert.Error(t, zero.Validate())
}

func TestGradeString(t *testing.T) {
	assert.Equal(t, "Excellent", Excellent.String())
	assert.Equal(t, "Poor", Grade(42).String())
}

func sampleResult(text string) benchmark.Result {
	a := benchmark.NewAnalyzer("uuid", 1)
	res := a.Analyze("run.txt", text)
	res.Timestamp = time.Date(2024, 9, 30, 12, 15, 58, 0, time.UTC)
	return res
}

func TestPrint(t *testing.T) {
	text := "dnsperf -s 10.96.0.10 -l 30 -Q 2000\n" +
		"Queries sent: 1000\nQueries completed: 990\nQueries lost: 10\n" +
		"Response codes: NOERROR 985 (99.49%), NXDOMAIN 5 (0.51%)\n" +
		"Average packet size: request 37, response 82\n" +
		"Queries per second: 1999.5\n" +
		"Average Latency (s): 0.045  (min 0.010, max 0.300)\n" +
		"> NOERROR a.example.com A 0.010\n> NOERROR b.example.com A 0.030\n"
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, sampleResult(text), DefaultThresholds))
	out := buf.String()

	for _, want := range []string{
		"📄 File: run.txt",
		"🕒 Analyzed: 2024-09-30 12:15:58",
		"DNS Server: 10.96.0.10",
		"Duration: 30s",
		"Target QPS: 2000",
		"Queries Sent: 1000",
		"Success Rate: 99.00%",
		"Loss Rate: 1.00%",
		"Achieved QPS: 1999.50",
		"Average Latency: 0.045s",
		"Request Packet Size: 37 bytes",
		"P50 (median): 0.020s",
		"Individual measurements: 2",
		"NOERROR: 985",
		"SERVFAIL: 0",
		"✅ Excellent: >99% success rate",
		"✅ Excellent latency: <50ms",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Concurrent:")
	assert.NotContains(t, out, "Captures:")
}

func TestPrintWithoutSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, sampleResult(""), DefaultThresholds))
	out := buf.String()
	assert.Contains(t, out, "No individual latency measurements found")
	assert.Contains(t, out, "❌ Poor: <90% success rate")
	for _, code := range dnsperf.ResponseCodes {
		assert.Contains(t, out, code+": 0")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestPrintWriteError(t *testing.T) {
	err := Print(failingWriter{}, sampleResult(""), DefaultThresholds)
	assert.EqualError(t, err, "closed pipe")
}
