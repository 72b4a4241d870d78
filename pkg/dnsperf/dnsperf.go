package dnsperf

import (
	"regexp"
	"strconv"
	"strings"
)

type kind int

const (
	kindInt kind = iota
	kindFloat
)

type fieldPattern struct {
	field Field
	re    *regexp.Regexp
	group int
	kind  kind
}

var (
	rePacketSize = regexp.MustCompile(`Average packet size:\s+request\s+(\d+),\s+response\s+(\d+)`)
	// Detail lines look like "> NOERROR www.example.com A 0.000510". Any line of that shape
	// with a trailing number is taken as a sample, including lines that are not latencies
	reSample = regexp.MustCompile(`> \w+ .* ([\d.]+)$`)
)

var scalarFields = []fieldPattern{
	{QueriesSent, regexp.MustCompile(`Queries sent:\s+(\d+)`), 1, kindInt},
	{QueriesCompleted, regexp.MustCompile(`Queries completed:\s+(\d+)`), 1, kindInt},
	{QueriesLost, regexp.MustCompile(`Queries lost:\s+(\d+)`), 1, kindInt},
	{QueriesInterrupted, regexp.MustCompile(`Queries interrupted:\s+(\d+)`), 1, kindInt},
	{AchievedQPS, regexp.MustCompile(`Queries per second:\s+([\d.]+)`), 1, kindFloat},
	{RunTime, regexp.MustCompile(`Run time \(s\):\s+([\d.]+)`), 1, kindFloat},
	{ReportedLatencyStdDev, regexp.MustCompile(`Latency StdDev \(s\):\s+([\d.]+)`), 1, kindFloat},
	{RequestPacketSize, rePacketSize, 1, kindInt},
	{ResponsePacketSize, rePacketSize, 2, kindInt},
}

var responseCodePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(ResponseCodes))
	for _, code := range ResponseCodes {
		patterns[code] = regexp.MustCompile(code + `\s+(\d+)`)
	}
	return patterns
}()

type configPattern struct {
	key string
	re  *regexp.Regexp
}

var configFields = []configPattern{
	{ConfigServer, regexp.MustCompile(`-s\s+([\d.]+)`)},
	{ConfigPort, regexp.MustCompile(`-p\s+(\d+)`)},
	{ConfigDuration, regexp.MustCompile(`-l\s+(\d+)`)},
	{ConfigTargetQPS, regexp.MustCompile(`-Q\s+(\d+)`)},
	{ConfigConcurrency, regexp.MustCompile(`-c\s+(\d+)`)},
	{ConfigTimeout, regexp.MustCompile(`-t\s+(\d+)`)},
}

/*
Extract scans dnsperf output and returns the metrics it recognizes.
Absent or malformed fields take their zero default, extraction never fails

Example output:
$ dnsperf -l 5 -c 10 -d input -s 127.0.0.53 -v
DNS Performance Testing Tool
Version 2.12.0

[Status] Command line: dnsperf -l 5 -c 10 -d input -s 127.0.0.53 -v
[Status] Sending queries (to 127.0.0.53:53)
[Status] Started at: Mon Sep 30 12:15:58 2024
[Status] Stopping after 5.000000 seconds
> NOERROR www.example.com A 0.004510
> NXDOMAIN missing.example.com A 0.009120
[Status] Testing complete (time limit)

Statistics:

	Queries sent:         52083
	Queries completed:    52083 (100.00%)
	Queries lost:         0 (0.00%)

	Response codes:       NOERROR 26042 (50.00%), NXDOMAIN 26041 (50.00%)
	Average packet size:  request 37, response 82
	Run time (s):         5.009131
	Queries per second:   10397.611881

	Average Latency (s):  0.009546 (min 0.004271, max 0.167582)
	Latency StdDev (s):   0.005814
*/
func Extract(text string) RawMetrics {
	raw := RawMetrics{
		Counts:        make(map[Field]int64, len(scalarFields)),
		Scalars:       make(map[Field]float64, len(scalarFields)),
		ResponseCodes: make(map[string]int64, len(ResponseCodes)),
		Samples:       extractSamples(text),
		Config:        make(map[string]string),
	}
	for _, f := range scalarFields {
		if f.kind == kindInt {
			raw.Counts[f.field] = evalInt(f.re, text, f.group)
			continue
		}
		raw.Scalars[f.field] = evalFloat(f.re, text, f.group)
	}
	for _, code := range ResponseCodes {
		raw.ResponseCodes[code] = evalInt(responseCodePatterns[code], text, 1)
	}
	raw.Latency, raw.LatencySchema = extractLatency(text)
	for _, c := range configFields {
		if res := c.re.FindStringSubmatch(text); res != nil {
			raw.Config[c.key] = res[1]
		}
	}
	return raw
}

// evalFloat returns the parsed group of the first match, or 0
func evalFloat(re *regexp.Regexp, text string, group int) float64 {
	res := re.FindStringSubmatch(text)
	if len(res) <= group {
		return 0
	}
	return parseFloat(res[group])
}

// evalInt is evalFloat for counts, values outside int64 read as 0
func evalInt(re *regexp.Regexp, text string, group int) int64 {
	res := re.FindStringSubmatch(text)
	if len(res) <= group {
		return 0
	}
	v, err := strconv.ParseInt(res[group], 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func extractSamples(text string) []float64 {
	samples := []float64{}
	for _, line := range strings.Split(text, "\n") {
		res := reSample.FindStringSubmatch(strings.TrimSpace(line))
		if res == nil {
			continue
		}
		v, err := strconv.ParseFloat(res[1], 64)
		if err != nil {
			continue
		}
		samples = append(samples, v)
	}
	return samples
}
