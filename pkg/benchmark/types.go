package benchmark

import (
	"time"

	"dnsperf-analyzer.io/pkg/dnsperf"
)

// Analyzer turns dnsperf captures into results tagged with a run uuid
type Analyzer struct {
	uuid        string
	concurrency int
	now         func() time.Time
}

// Represents the analysis of one capture, or of several aggregated captures, with required metadata.
// This is the document written as the JSON artifact and shipped to indexers
type Result struct {
	UUID      string                `json:"uuid"`
	Timestamp time.Time             `json:"timestamp"`
	Source    string                `json:"source_file"`
	Captures  int                   `json:"captures"`
	Metrics   dnsperf.MetricsRecord `json:"metrics"`

	raw dnsperf.RawMetrics
}

// AggregateSource is the source name of a result merged from several captures
const AggregateSource = "aggregate"

// SchemaMixed marks an aggregate built from captures using different latency schemas
const SchemaMixed = "mixed"
