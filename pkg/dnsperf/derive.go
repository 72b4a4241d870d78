package dnsperf

import (
	"maps"
	"slices"

	"github.com/rs/zerolog/log"
)

// Analyze extracts and derives the metrics of a single capture
func Analyze(text string) MetricsRecord {
	return Derive(Extract(text))
}

// Derive computes rates and percentile statistics from raw metrics
func Derive(raw RawMetrics) MetricsRecord {
	return DeriveWith(raw, DefaultStats)
}

// DeriveWith is Derive with an explicit statistics implementation.
// A nil stats leaves PercentileStats unset
func DeriveWith(raw RawMetrics, stats SampleStats) MetricsRecord {
	record := MetricsRecord{
		QueriesSent:           raw.Counts[QueriesSent],
		QueriesCompleted:      raw.Counts[QueriesCompleted],
		QueriesLost:           raw.Counts[QueriesLost],
		QueriesInterrupted:    raw.Counts[QueriesInterrupted],
		AchievedQPS:           raw.Scalars[AchievedQPS],
		RunTime:               raw.Scalars[RunTime],
		ReportedLatencyStdDev: raw.Scalars[ReportedLatencyStdDev],
		ResponseCodes:         make(map[string]int64, len(ResponseCodes)),
		Latency:               raw.Latency,
		LatencySchema:         raw.LatencySchema,
		PacketSizes: PacketSizes{
			RequestBytes:  raw.Counts[RequestPacketSize],
			ResponseBytes: raw.Counts[ResponsePacketSize],
		},
		Latencies:  append([]float64{}, raw.Samples...),
		TestConfig: make(map[string]string, len(raw.Config)),
	}
	for _, code := range ResponseCodes {
		record.ResponseCodes[code] = raw.ResponseCodes[code]
	}
	maps.Copy(record.TestConfig, raw.Config)

	if record.QueriesSent > 0 {
		sent := float64(record.QueriesSent)
		record.Rates.SuccessRatePct = float64(record.QueriesCompleted) / sent * 100
		record.Rates.LossRatePct = float64(record.QueriesLost) / sent * 100
	}

	if len(record.Latencies) == 0 {
		return record
	}
	if stats == nil {
		log.Warn().Msgf("No statistics implementation available, skipping percentiles of %d samples", len(record.Latencies))
		return record
	}
	sorted := slices.Clone(record.Latencies)
	slices.Sort(sorted)
	record.PercentileStats = &PercentileStats{
		P50:         stats.Percentile(sorted, 50),
		P95:         stats.Percentile(sorted, 95),
		P99:         stats.Percentile(sorted, 99),
		StdDev:      stats.StdDev(sorted),
		SampleCount: len(sorted),
	}
	return record
}
