package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dnsperf-analyzer.io/pkg/benchmark"
	"dnsperf-analyzer.io/pkg/dnsperf"
)

var configLabels = []struct {
	key, label, unit string
}{
	{dnsperf.ConfigServer, "DNS Server", ""},
	{dnsperf.ConfigPort, "Port", ""},
	{dnsperf.ConfigDuration, "Duration", "s"},
	{dnsperf.ConfigTargetQPS, "Target QPS", ""},
	{dnsperf.ConfigConcurrency, "Concurrent", ""},
	{dnsperf.ConfigTimeout, "Timeout", "s"},
}

var successNotes = map[Grade]string{
	Excellent: "✅ Excellent: >%.0f%% success rate",
	Good:      "✅ Good: >%.0f%% success rate",
	Fair:      "⚠️  Fair: >%.0f%% success rate",
	Poor:      "❌ Poor: <%.0f%% success rate",
}

var latencyNotes = map[Grade]string{
	Excellent: "✅ Excellent latency: <%dms",
	Good:      "✅ Good latency: <%dms",
	Fair:      "⚠️  Fair latency: <%dms",
	Poor:      "❌ Poor latency: >%dms",
}

// Print writes a human readable summary of res
func Print(w io.Writer, res benchmark.Result, t Thresholds) error {
	m := res.Metrics
	p := &printer{w: w}

	p.line("")
	p.line("📊 DNS Performance Test Results Summary")
	p.line("📄 File: %s", res.Source)
	if res.Captures > 1 {
		p.line("🧮 Captures: %d", res.Captures)
	}
	p.line("🕒 Analyzed: %s", res.Timestamp.Format("2006-01-02 15:04:05"))
	p.line("%s", strings.Repeat("=", 60))

	p.line("\n🔧 Test Configuration:")
	for _, c := range configLabels {
		if v, ok := m.TestConfig[c.key]; ok {
			p.line("   %s: %s%s", c.label, v, c.unit)
		}
	}

	p.line("\n📈 Query Statistics:")
	p.line("   Queries Sent: %d", m.QueriesSent)
	p.line("   Queries Completed: %d", m.QueriesCompleted)
	p.line("   Queries Lost: %d", m.QueriesLost)
	if m.QueriesInterrupted > 0 {
		p.line("   Queries Interrupted: %d", m.QueriesInterrupted)
	}
	p.line("   Success Rate: %.2f%%", m.Rates.SuccessRatePct)
	p.line("   Loss Rate: %.2f%%", m.Rates.LossRatePct)

	p.line("\n⚡ Performance Metrics:")
	p.line("   Achieved QPS: %.2f", m.AchievedQPS)
	if m.RunTime > 0 {
		p.line("   Run Time: %.3fs", m.RunTime)
	}
	p.line("   Average Latency: %.3fs", m.Latency.Average)
	p.line("   Minimum Latency: %.3fs", m.Latency.Minimum)
	p.line("   Maximum Latency: %.3fs", m.Latency.Maximum)
	p.line("   Request Packet Size: %d bytes", m.PacketSizes.RequestBytes)
	p.line("   Response Packet Size: %d bytes", m.PacketSizes.ResponseBytes)
	if s := m.PercentileStats; s != nil {
		p.line("   Latency Percentiles:")
		p.line("     P50 (median): %.3fs", s.P50)
		p.line("     P95: %.3fs", s.P95)
		p.line("     P99: %.3fs", s.P99)
		p.line("   Latency Std Dev: %.3fs", s.StdDev)
		p.line("   Individual measurements: %d", s.SampleCount)
	} else {
		p.line("   ⚠️  No individual latency measurements found for percentile calculation")
	}

	p.line("\n📋 Response Codes:")
	for _, code := range dnsperf.ResponseCodes {
		p.line("   %s: %d", code, m.ResponseCodes[code])
	}

	a := t.Assess(m.Rates.SuccessRatePct, m.Latency.Average)
	p.line("\n🎯 Performance Assessment:")
	p.line("   "+successNotes[a.Success], t.successBound(a.Success))
	p.line("   "+latencyNotes[a.Latency], t.latencyBound(a.Latency).Milliseconds())
	return p.err
}

func (t Thresholds) successBound(g Grade) float64 {
	switch g {
	case Excellent:
		return t.SuccessExcellent
	case Good:
		return t.SuccessGood
	}
	return t.SuccessFair
}

func (t Thresholds) latencyBound(g Grade) time.Duration {
	switch g {
	case Excellent:
		return t.LatencyExcellent
	case Good:
		return t.LatencyGood
	}
	return t.LatencyFair
}

// printer keeps the first write error so Print can report it once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
