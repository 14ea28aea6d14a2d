package models

import "time"

// Session is one monitoring run against a single host.
type Session struct {
	ID        int64         `json:"id"`
	Host      string        `json:"host"`
	Interval  time.Duration `json:"interval"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"` // NULL while running or after a crash
	Sent      int           `json:"sent"`
	Received  int           `json:"received"`
	// Outcomes holds one character per attempt, in sequence order.
	Outcomes string `json:"outcomes"`
}

// Loss returns the fraction of attempts without a reply.
func (s *Session) Loss() float64 {
	if s.Sent <= 0 {
		return 0
	}
	return float64(s.Sent-s.Received) / float64(s.Sent)
}

// Duration returns how long the session ran, or has run so far.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
