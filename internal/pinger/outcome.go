package pinger

import "time"

// Outcome is the single-character result of one ping attempt.
type Outcome byte

const (
	OutcomeNone        Outcome = ' ' // no attempt made yet
	OutcomeFast        Outcome = '#' // reply below the slow threshold
	OutcomeSlow        Outcome = '%' // reply at or above the slow threshold
	OutcomeUnreachable Outcome = '-' // ping exited with a "no reply" style code
	OutcomeUnexpected  Outcome = '?' // ping exited with any other nonzero code
	OutcomeKilled      Outcome = '!' // ping died from a signal
)

// DefaultSlowThreshold separates fast from slow replies.
const DefaultSlowThreshold = 1 * time.Second

// unreachableCodes are the ping exit codes that mean the host did not answer.
// iputils ping exits 1 when no reply arrived and 2 on other errors such as an
// unresolvable name; BSD ping uses 2 for "no reply".
var unreachableCodes = map[int]bool{
	1: true,
	2: true,
}

// String returns the outcome character.
func (o Outcome) String() string { return string(rune(o)) }

// IsReply reports whether the outcome means an echo reply came back.
func (o Outcome) IsReply() bool {
	return o == OutcomeFast || o == OutcomeSlow
}

// Describe returns a human readable label, used by the legend.
func (o Outcome) Describe() string {
	switch o {
	case OutcomeFast:
		return "reply"
	case OutcomeSlow:
		return "slow reply"
	case OutcomeUnreachable:
		return "no reply"
	case OutcomeUnexpected:
		return "ping error"
	case OutcomeKilled:
		return "timed out"
	default:
		return "pending"
	}
}

// Outcomes lists every outcome a probe can report, in legend order.
var Outcomes = []Outcome{OutcomeFast, OutcomeSlow, OutcomeUnreachable, OutcomeUnexpected, OutcomeKilled}

// ExitStatus is how the probe program terminated.
type ExitStatus struct {
	Signaled bool
	Signal   int
	Code     int
}

// Classify maps a termination status and the attempt's wall-clock duration to
// an outcome. It has no side effects.
func Classify(status ExitStatus, elapsed, slow time.Duration) Outcome {
	switch {
	case status.Signaled:
		return OutcomeKilled
	case status.Code == 0:
		if elapsed < slow {
			return OutcomeFast
		}
		return OutcomeSlow
	case unreachableCodes[status.Code]:
		return OutcomeUnreachable
	default:
		return OutcomeUnexpected
	}
}
