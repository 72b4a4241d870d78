package dnsperf

// Field names a scalar metric recognized in a dnsperf capture
type Field string

const (
	QueriesSent           Field = "queries_sent"
	QueriesCompleted      Field = "queries_completed"
	QueriesLost           Field = "queries_lost"
	QueriesInterrupted    Field = "queries_interrupted"
	AchievedQPS           Field = "qps_achieved"
	RunTime               Field = "run_time_seconds"
	ReportedLatencyStdDev Field = "reported_latency_stddev"
	RequestPacketSize     Field = "request_packet_size"
	ResponsePacketSize    Field = "response_packet_size"
)

// Response codes tracked in every record, in report order
const (
	NoError  = "NOERROR"
	NXDomain = "NXDOMAIN"
	ServFail = "SERVFAIL"
	Refused  = "REFUSED"
)

var ResponseCodes = []string{NoError, NXDomain, ServFail, Refused}

// Configuration echoes taken from the dnsperf command line
const (
	ConfigServer      = "dns_server"
	ConfigPort        = "port"
	ConfigDuration    = "duration"
	ConfigTargetQPS   = "target_qps"
	ConfigConcurrency = "concurrent"
	ConfigTimeout     = "timeout"
)

// Latency schema names
const (
	SchemaCurrent = "current"
	SchemaLegacy  = "legacy"
)

// RawMetrics is what the extractor finds in a capture, before anything is derived.
// Integer fields of the field table live in Counts, the others in Scalars, and
// every response code has an entry
type RawMetrics struct {
	Counts        map[Field]int64
	Scalars       map[Field]float64
	ResponseCodes map[string]int64
	Latency       LatencySummary
	LatencySchema string
	Samples       []float64
	Config        map[string]string
}

type LatencySummary struct {
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

type PacketSizes struct {
	RequestBytes  int64 `json:"request_bytes"`
	ResponseBytes int64 `json:"response_bytes"`
}

// PercentileStats summarizes per-query latency samples
type PercentileStats struct {
	P50         float64 `json:"p50"`
	P95         float64 `json:"p95"`
	P99         float64 `json:"p99"`
	StdDev      float64 `json:"stddev"`
	SampleCount int     `json:"sample_count"`
}

type DerivedRates struct {
	SuccessRatePct float64 `json:"success_rate_pct"`
	LossRatePct    float64 `json:"loss_rate_pct"`
}

// MetricsRecord is the analysis result of one capture.
// PercentileStats is nil when the capture carried no per-query latencies
type MetricsRecord struct {
	QueriesSent           int64             `json:"queries_sent"`
	QueriesCompleted      int64             `json:"queries_completed"`
	QueriesLost           int64             `json:"queries_lost"`
	QueriesInterrupted    int64             `json:"queries_interrupted"`
	AchievedQPS           float64           `json:"qps_achieved"`
	RunTime               float64           `json:"run_time_seconds"`
	ResponseCodes         map[string]int64  `json:"response_code_counts"`
	Latency               LatencySummary    `json:"latency_summary"`
	LatencySchema         string            `json:"latency_schema"`
	ReportedLatencyStdDev float64           `json:"reported_latency_stddev"`
	PacketSizes           PacketSizes       `json:"packet_sizes"`
	Latencies             []float64         `json:"per_query_latencies"`
	PercentileStats       *PercentileStats  `json:"percentile_stats,omitempty"`
	Rates                 DerivedRates      `json:"derived_rates"`
	TestConfig            map[string]string `json:"test_config"`
}
