package loadtest

import (
	"sort"
	"time"
)

// Percentiles are reported only when strictly more than this many
// successful samples exist; below the threshold they stay exactly 0. This
// degenerate-case policy is deliberate and relied upon by consumers.
const (
	p95SampleThreshold = 20
	p99SampleThreshold = 100
)

// Result aggregates the outcomes of one load test run.
type Result struct {
	TotalRequests      int            `json:"total_requests"`
	SuccessfulRequests int            `json:"successful_requests"`
	FailedRequests     int            `json:"failed_requests"`
	SuccessRate        float64        `json:"success_rate"`
	TotalTime          Seconds        `json:"total_time"`
	RequestsPerSecond  float64        `json:"requests_per_second"`
	AvgResponseTime    Seconds        `json:"avg_response_time"`
	MedianResponseTime Seconds        `json:"median_response_time"`
	P95ResponseTime    Seconds        `json:"p95_response_time"`
	P99ResponseTime    Seconds        `json:"p99_response_time"`
	ErrorBreakdown     map[string]int `json:"error_breakdown"`
}

// analyze computes the aggregate result over a full outcome sequence and
// the wall-clock duration of the run. Response-time statistics cover
// successful outcomes only. Degenerate inputs (no outcomes, zero elapsed
// time) produce zero-valued rates rather than errors.
func analyze(outcomes []Outcome, elapsed time.Duration) *Result {
	res := &Result{
		TotalRequests:  len(outcomes),
		TotalTime:      Seconds(elapsed),
		ErrorBreakdown: make(map[string]int),
	}

	times := make([]time.Duration, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success {
			res.SuccessfulRequests++
			times = append(times, o.ResponseTime.Duration())
			continue
		}
		res.FailedRequests++
		errText := o.Error
		if errText == "" {
			errText = "unknown"
		}
		res.ErrorBreakdown[errText]++
	}

	if res.TotalRequests > 0 {
		res.SuccessRate = float64(res.SuccessfulRequests) / float64(res.TotalRequests)
	}
	if elapsed > 0 {
		res.RequestsPerSecond = float64(res.TotalRequests) / elapsed.Seconds()
	}

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	if len(times) > 0 {
		res.AvgResponseTime = Seconds(meanDuration(times))
		res.MedianResponseTime = Seconds(medianDuration(times))
	}
	if len(times) > p95SampleThreshold {
		res.P95ResponseTime = Seconds(quantileExclusive(times, 20, 19))
	}
	if len(times) > p99SampleThreshold {
		res.P99ResponseTime = Seconds(quantileExclusive(times, 100, 99))
	}

	return res
}

func meanDuration(times []time.Duration) time.Duration {
	var total time.Duration
	for _, t := range times {
		total += t
	}
	return total / time.Duration(len(times))
}

// medianDuration expects a sorted slice; even-length input averages the two
// middle samples.
func medianDuration(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quantileExclusive returns the i-th of n-1 exclusive-method cut points
// over sorted samples, linearly interpolating between neighboring ranks.
// With n=20, i=19 this is the 95th percentile; with n=100, i=99 the 99th.
// The rank index clamps to the sample bounds at small sizes, which is the
// approximation consumers expect - not an interpolated-rank estimator.
func quantileExclusive(sorted []time.Duration, n, i int) time.Duration {
	m := len(sorted) + 1
	j := i * m / n
	delta := i*m - j*n
	if j < 1 {
		j = 1
		delta = 0
	} else if j > len(sorted)-1 {
		j = len(sorted) - 1
		delta = n
	}
	lo := float64(sorted[j-1])
	hi := float64(sorted[j])
	return time.Duration((lo*float64(n-delta) + hi*float64(delta)) / float64(n))
}
