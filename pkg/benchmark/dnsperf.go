package benchmark

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dnsperf-analyzer.io/pkg/capture"
	"dnsperf-analyzer.io/pkg/dnsperf"
)

// NewAnalyzer returns an Analyzer reading at most concurrency captures at once, 0 means no limit
func NewAnalyzer(uuid string, concurrency int) Analyzer {
	return Analyzer{
		uuid:        uuid,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run reads and analyzes every source, results keep the order of sources.
// The first read error aborts the run
func (a *Analyzer) Run(ctx context.Context, sources []capture.Source) ([]Result, error) {
	results := make([]Result, len(sources))
	errGroup, ctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		errGroup.SetLimit(a.concurrency)
	}
	log.Info().Msgf("Analyzing %d capture(s) 🔍", len(sources))
	for i, src := range sources {
		errGroup.Go(func() error {
			text, err := src.Read(ctx)
			if err != nil {
				return err
			}
			results[i] = a.Analyze(src.Name(), text)
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze builds the result of a single capture
func (a *Analyzer) Analyze(source, text string) Result {
	raw := dnsperf.Extract(text)
	log.Debug().Msgf("Parsed %s: %d per-query samples, latency schema %q", source, len(raw.Samples), raw.LatencySchema)
	return Result{
		UUID:      a.uuid,
		Timestamp: a.now(),
		Source:    source,
		Captures:  1,
		Metrics:   dnsperf.Derive(raw),
		raw:       raw,
	}
}

// Aggregate merges several results into one and derives its metrics again, so the
// percentiles come from the union of all per-query samples.
// Counts, throughput and response codes are summed, run time is the longest one,
// latency averages are averaged while min and max keep the extremes
func (a *Analyzer) Aggregate(results []Result) Result {
	merged := dnsperf.RawMetrics{
		Counts:        make(map[dnsperf.Field]int64),
		Scalars:       make(map[dnsperf.Field]float64),
		ResponseCodes: make(map[string]int64),
		Samples:       []float64{},
		Config:        make(map[string]string),
	}
	var sources []string
	var schemas int
	var requestSizes, responseSizes []int64
	for i, res := range results {
		raw := res.raw
		sources = append(sources, res.Source)
		for _, f := range []dnsperf.Field{dnsperf.QueriesSent, dnsperf.QueriesCompleted, dnsperf.QueriesLost, dnsperf.QueriesInterrupted} {
			merged.Counts[f] = addCount(merged.Counts[f], raw.Counts[f])
		}
		merged.Scalars[dnsperf.AchievedQPS] += raw.Scalars[dnsperf.AchievedQPS]
		merged.Scalars[dnsperf.RunTime] = math.Max(merged.Scalars[dnsperf.RunTime], raw.Scalars[dnsperf.RunTime])
		merged.Scalars[dnsperf.ReportedLatencyStdDev] += raw.Scalars[dnsperf.ReportedLatencyStdDev]
		if raw.Counts[dnsperf.RequestPacketSize] > 0 || raw.Counts[dnsperf.ResponsePacketSize] > 0 {
			requestSizes = append(requestSizes, raw.Counts[dnsperf.RequestPacketSize])
			responseSizes = append(responseSizes, raw.Counts[dnsperf.ResponsePacketSize])
		}
		for code, n := range raw.ResponseCodes {
			merged.ResponseCodes[code] = addCount(merged.ResponseCodes[code], n)
		}
		merged.Samples = append(merged.Samples, raw.Samples...)
		if raw.LatencySchema != "" {
			if schemas == 0 {
				merged.Latency = raw.Latency
				merged.LatencySchema = raw.LatencySchema
			} else {
				merged.Latency.Average += raw.Latency.Average
				merged.Latency.Minimum = math.Min(merged.Latency.Minimum, raw.Latency.Minimum)
				merged.Latency.Maximum = math.Max(merged.Latency.Maximum, raw.Latency.Maximum)
				if merged.LatencySchema != raw.LatencySchema {
					merged.LatencySchema = SchemaMixed
				}
			}
			schemas++
		}
		if i == 0 {
			for k, v := range raw.Config {
				merged.Config[k] = v
			}
			continue
		}
		for k, v := range merged.Config {
			if raw.Config[k] != v {
				delete(merged.Config, k)
			}
		}
	}
	if schemas > 0 {
		merged.Latency.Average /= float64(schemas)
	}
	if n := float64(len(results)); n > 0 {
		merged.Scalars[dnsperf.ReportedLatencyStdDev] /= n
	}
	merged.Counts[dnsperf.RequestPacketSize] = meanCount(requestSizes)
	merged.Counts[dnsperf.ResponsePacketSize] = meanCount(responseSizes)
	log.Debug().Msgf("Aggregated %d captures: %s", len(results), strings.Join(sources, ", "))
	return Result{
		UUID:      a.uuid,
		Timestamp: a.now(),
		Source:    AggregateSource,
		Captures:  len(results),
		Metrics:   dnsperf.Derive(merged),
		raw:       merged,
	}
}

// addCount sums two non-negative counts, saturating at math.MaxInt64
func addCount(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// meanCount returns the rounded mean of non-negative counts, without summing them first
func meanCount(values []int64) int64 {
	n := int64(len(values))
	if n == 0 {
		return 0
	}
	var quot, rem int64
	for _, v := range values {
		quot += v / n
		rem += v % n
	}
	return quot + (rem+n/2)/n
}
