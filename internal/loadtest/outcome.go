// Package loadtest drives simulated clients against an HTTP(S) endpoint and
// aggregates their per-request outcomes into latency and throughput
// statistics.
package loadtest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Outcome records the result of one request attempt by one simulated user.
// It is immutable once created: Success is true exactly when the status code
// was 200, Error is set exactly when the attempt failed, and ServerTag is
// set only when a 200 response carried an identifying server header.
type Outcome struct {
	UserID       int     `json:"user_id"`
	RequestIndex int     `json:"request_index"`
	StatusCode   int     `json:"status_code"`
	ResponseTime Seconds `json:"response_time"`
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
	ServerTag    string  `json:"server_tag,omitempty"`
}

// completedOutcome records a request that received a response. Non-200
// responses are failures with the status embedded in the error text. The
// server tag is kept only for successful responses that carried one.
func completedOutcome(userID, index, status int, elapsed time.Duration, serverTag string) Outcome {
	o := Outcome{
		UserID:       userID,
		RequestIndex: index,
		StatusCode:   status,
		ResponseTime: Seconds(elapsed),
		Success:      status == http.StatusOK,
	}
	if o.Success {
		o.ServerTag = serverTag
	} else {
		o.Error = fmt.Sprintf("HTTP %d", status)
	}
	return o
}

// transportOutcome records a request that never completed: connect error,
// timeout, or TLS failure. Status code 0 marks the absence of a response.
func transportOutcome(userID, index int, elapsed time.Duration, err error) Outcome {
	return Outcome{
		UserID:       userID,
		RequestIndex: index,
		StatusCode:   0,
		ResponseTime: Seconds(elapsed),
		Success:      false,
		Error:        err.Error(),
	}
}

// Seconds is a duration that serializes as a floating-point second count at
// native precision, which is what the report consumers expect.
type Seconds time.Duration

// Duration returns the underlying time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s)
}

// Float returns the duration in seconds.
func (s Seconds) Float() float64 {
	return time.Duration(s).Seconds()
}

// MarshalJSON implements json.Marshaler.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, s.Float(), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*s = Seconds(time.Duration(f * float64(time.Second)))
	return nil
}

// String returns the duration formatted as seconds.
func (s Seconds) String() string {
	return strconv.FormatFloat(s.Float(), 'f', 3, 64) + "s"
}
