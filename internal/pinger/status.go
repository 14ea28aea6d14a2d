package pinger

import (
	"sync"
	"time"
)

// Status is the shared record of every attempt made during a run. Probes
// write into it from their own goroutines and the renderer reads it
// concurrently, so every accessor takes the lock.
type Status struct {
	mu       sync.RWMutex
	codes    map[int]Outcome
	sent     int
	received int
	version  uint64
	started  time.Time
}

// StatusSnapshot is a consistent copy of a Status.
type StatusSnapshot struct {
	Sent     int
	Received int
	Version  uint64
	Started  time.Time
	// Codes holds one outcome per sent attempt, indexed by sequence number.
	Codes []Outcome
}

// NewStatus creates an empty store stamped with started.
func NewStatus(started time.Time) *Status {
	return &Status{
		codes:   make(map[int]Outcome),
		started: started,
	}
}

// Get returns the outcome for idx, or OutcomeNone if nothing was written.
func (s *Status) Get(idx int) Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if code, ok := s.codes[idx]; ok {
		return code
	}
	return OutcomeNone
}

// Set records code for idx and bumps the version.
func (s *Status) Set(idx int, code Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.codes[idx]; ok && prev.IsReply() {
		s.received--
	}
	s.codes[idx] = code
	if code.IsReply() {
		s.received++
	}
	s.version++
}

// Next allocates the sequence index for a new attempt and counts it as sent.
func (s *Status) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sent
	s.sent++
	return idx
}

func (s *Status) Sent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sent
}

func (s *Status) Received() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.received
}

// Version increases by one on every Set.
func (s *Status) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Status) Started() time.Time {
	return s.started
}

// Loss returns the fraction of sent attempts without a reply, in [0, 1].
func (s *Status) Loss() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loss(s.sent, s.received)
}

// Snapshot copies the store under a single lock. Codes covers the sent
// attempts only; indices written beyond them remain readable through Get.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]Outcome, s.sent)
	for i := range codes {
		codes[i] = OutcomeNone
	}
	for idx, code := range s.codes {
		if idx >= 0 && idx < len(codes) {
			codes[idx] = code
		}
	}

	return StatusSnapshot{
		Sent:     s.sent,
		Received: s.received,
		Version:  s.version,
		Started:  s.started,
		Codes:    codes,
	}
}

// Loss returns the packet loss fraction of the snapshot.
func (ss StatusSnapshot) Loss() float64 {
	return loss(ss.Sent, ss.Received)
}

// String renders the codes as one line, one character per attempt.
func (ss StatusSnapshot) String() string {
	b := make([]byte, len(ss.Codes))
	for i, c := range ss.Codes {
		b[i] = byte(c)
	}
	return string(b)
}

func loss(sent, received int) float64 {
	if sent <= 0 {
		return 0
	}
	l := float64(sent-received) / float64(sent)
	if l < 0 {
		return 0
	}
	return l
}
