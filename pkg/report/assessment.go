package report

import (
	"encoding/json"
	"fmt"
	"time"
)

type Grade int

const (
	Poor Grade = iota
	Fair
	Good
	Excellent
)

func (g Grade) String() string {
	switch g {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Fair:
		return "Fair"
	}
	return "Poor"
}

// Thresholds grade a run by success rate (percent) and average latency
type Thresholds struct {
	SuccessExcellent float64       `yaml:"successExcellent" json:"successExcellent"`
	SuccessGood      float64       `yaml:"successGood" json:"successGood"`
	SuccessFair      float64       `yaml:"successFair" json:"successFair"`
	LatencyExcellent time.Duration `yaml:"latencyExcellent" json:"latencyExcellent"`
	LatencyGood      time.Duration `yaml:"latencyGood" json:"latencyGood"`
	LatencyFair      time.Duration `yaml:"latencyFair" json:"latencyFair"`
}

var DefaultThresholds = Thresholds{
	SuccessExcellent: 99,
	SuccessGood:      95,
	SuccessFair:      90,
	LatencyExcellent: 50 * time.Millisecond,
	LatencyGood:      100 * time.Millisecond,
	LatencyFair:      200 * time.Millisecond,
}

// UnmarshalJSON reads latency thresholds either as duration strings like "50ms"
// or as integer nanoseconds
func (t *Thresholds) UnmarshalJSON(data []byte) error {
	type plain Thresholds
	aux := struct {
		*plain
		LatencyExcellent jsonDuration `json:"latencyExcellent"`
		LatencyGood      jsonDuration `json:"latencyGood"`
		LatencyFair      jsonDuration `json:"latencyFair"`
	}{
		plain:            (*plain)(t),
		LatencyExcellent: jsonDuration(t.LatencyExcellent),
		LatencyGood:      jsonDuration(t.LatencyGood),
		LatencyFair:      jsonDuration(t.LatencyFair),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.LatencyExcellent = time.Duration(aux.LatencyExcellent)
	t.LatencyGood = time.Duration(aux.LatencyGood)
	t.LatencyFair = time.Duration(aux.LatencyFair)
	return nil
}

type jsonDuration time.Duration

func (d *jsonDuration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid latency threshold %q: %w", s, err)
		}
		*d = jsonDuration(v)
		return nil
	}
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("latency threshold must be a duration string or integer nanoseconds, got %s", data)
	}
	*d = jsonDuration(ns)
	return nil
}

func (t Thresholds) Validate() error {
	if t.SuccessFair < 0 || t.SuccessExcellent > 100 {
		return fmt.Errorf("success thresholds must be within [0,100]")
	}
	if !(t.SuccessFair <= t.SuccessGood && t.SuccessGood <= t.SuccessExcellent) {
		return fmt.Errorf("success thresholds must satisfy fair <= good <= excellent")
	}
	if t.LatencyExcellent <= 0 {
		return fmt.Errorf("latency thresholds must be positive")
	}
	if !(t.LatencyExcellent <= t.LatencyGood && t.LatencyGood <= t.LatencyFair) {
		return fmt.Errorf("latency thresholds must satisfy excellent <= good <= fair")
	}
	return nil
}

type Assessment struct {
	Success Grade
	Latency Grade
}

// Assess grades a success rate in percent and an average latency in seconds
func (t Thresholds) Assess(successRatePct, avgLatency float64) Assessment {
	var a Assessment
	switch {
	case successRatePct >= t.SuccessExcellent:
		a.Success = Excellent
	case successRatePct >= t.SuccessGood:
		a.Success = Good
	case successRatePct >= t.SuccessFair:
		a.Success = Fair
	}
	switch {
	case avgLatency <= t.LatencyExcellent.Seconds():
		a.Latency = Excellent
	case avgLatency <= t.LatencyGood.Seconds():
		a.Latency = Good
	case avgLatency <= t.LatencyFair.Seconds():
		a.Latency = Fair
	}
	return a
}
