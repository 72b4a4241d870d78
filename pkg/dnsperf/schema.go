package dnsperf

import "regexp"

// latencySchema reads the average/min/max latency block of one dnsperf output layout.
// match reports false when the layout is not present in the text at all
type latencySchema struct {
	name  string
	match func(text string) (LatencySummary, bool)
}

// Schemas are tried in order and the first match supplies all three values
var latencySchemas = []latencySchema{
	{SchemaCurrent, matchCurrentLatency},
	{SchemaLegacy, matchLegacyLatency},
}

var (
	reCurrentLatency = regexp.MustCompile(`Average Latency \(s\):\s+([\d.]+)\s+\(min\s+([\d.]+),\s+max\s+([\d.]+)\)`)
	reLegacyAverage  = regexp.MustCompile(`Average:\s+([\d.]+)\s+sec`)
	reLegacyMinimum  = regexp.MustCompile(`Minimum:\s+([\d.]+)\s+sec`)
	reLegacyMaximum  = regexp.MustCompile(`Maximum:\s+([\d.]+)\s+sec`)
)

func matchCurrentLatency(text string) (LatencySummary, bool) {
	res := reCurrentLatency.FindStringSubmatch(text)
	if res == nil {
		return LatencySummary{}, false
	}
	return LatencySummary{
		Average: parseFloat(res[1]),
		Minimum: parseFloat(res[2]),
		Maximum: parseFloat(res[3]),
	}, true
}

// Older dnsperf releases print each aggregate on its own line. Any one of
// the three lines is enough to select this layout
func matchLegacyLatency(text string) (LatencySummary, bool) {
	found := false
	field := func(re *regexp.Regexp) float64 {
		res := re.FindStringSubmatch(text)
		if res == nil {
			return 0
		}
		found = true
		return parseFloat(res[1])
	}
	summary := LatencySummary{
		Average: field(reLegacyAverage),
		Minimum: field(reLegacyMinimum),
		Maximum: field(reLegacyMaximum),
	}
	return summary, found
}

func extractLatency(text string) (LatencySummary, string) {
	for _, schema := range latencySchemas {
		if summary, ok := schema.match(text); ok {
			return summary, schema.name
		}
	}
	return LatencySummary{}, ""
}
