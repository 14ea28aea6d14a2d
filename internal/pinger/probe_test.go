//go:build !windows

package pinger

import (
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// --- fakes ---

type recorder struct {
	mu      sync.Mutex
	results map[int]Outcome
	calls   map[int]int
}

func newRecorder() *recorder {
	return &recorder{results: map[int]Outcome{}, calls: map[int]int{}}
}

func (r *recorder) Set(idx int, code Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[idx] = code
	r.calls[idx]++
}

func (r *recorder) get(idx int) (Outcome, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[idx], r.calls[idx]
}

type fakeHandle struct {
	err     error
	signals []os.Signal
}

func (f *fakeHandle) Signal(sig os.Signal) error {
	f.signals = append(f.signals, sig)
	return f.err
}

func sh(script string) CommandFunc {
	return func(string) *exec.Cmd {
		return exec.Command("sh", "-c", script)
	}
}

func waitDone(t *testing.T, p *Probe) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("probe %d never reported", p.Index())
	}
}

// --- tests ---

func TestProbe_ReportsExitStatus(t *testing.T) {
	tests := []struct {
		script string
		want   Outcome
	}{
		{"exit 0", OutcomeFast},
		{"exit 1", OutcomeUnreachable},
		{"exit 99", OutcomeUnexpected},
		{"kill -9 $$", OutcomeKilled},
	}

	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			rec := newRecorder()
			p := NewProbe(rec, 42, "localhost", WithCommand(sh(tt.script)))
			p.Start()
			waitDone(t, p)

			got, calls := rec.get(42)
			if got != tt.want {
				t.Fatalf("outcome = %q, want %q", got, tt.want)
			}
			if calls != 1 {
				t.Fatalf("Set called %d times, want 1", calls)
			}
			if !p.Reported() {
				t.Fatal("Reported() = false after Done")
			}
		})
	}
}

func TestProbe_SlowReply(t *testing.T) {
	rec := newRecorder()
	p := NewProbe(rec, 0, "localhost",
		WithCommand(sh("exit 0")),
		WithSlowThreshold(time.Nanosecond),
	)
	p.Start()
	p.Join()

	if got, _ := rec.get(0); got != OutcomeSlow {
		t.Fatalf("outcome = %q, want %q", got, OutcomeSlow)
	}
}

func TestProbe_HardTimeoutRightAfterStart(t *testing.T) {
	rec := newRecorder()
	p := NewProbe(rec, 42, "localhost", WithCommand(sh("exec sleep 30")))
	p.Start()
	p.Timeout(true)
	waitDone(t, p)

	got, calls := rec.get(42)
	if calls != 1 {
		t.Fatalf("Set called %d times, want 1", calls)
	}
	if got != OutcomeKilled {
		t.Fatalf("outcome = %q, want %q", got, OutcomeKilled)
	}
}

func TestProbe_SoftTimeoutTerminates(t *testing.T) {
	rec := newRecorder()
	p := NewProbe(rec, 7, "localhost", WithCommand(sh("exec sleep 30")))
	p.Start()
	p.Timeout(false)
	waitDone(t, p)

	if got, _ := rec.get(7); got != OutcomeKilled {
		t.Fatalf("outcome = %q, want %q", got, OutcomeKilled)
	}
}

func TestProbe_TimeoutAfterExit(t *testing.T) {
	rec := newRecorder()
	p := NewProbe(rec, 1, "localhost", WithCommand(sh("exit 0")))
	p.Start()
	p.Join()

	p.Timeout(false)
	p.Timeout(true)

	if _, calls := rec.get(1); calls != 1 {
		t.Fatalf("Set called %d times, want 1", calls)
	}
}

func TestProbe_TimeoutToleratesRaces(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"no such process", unix.ESRCH},
		{"already reaped", os.ErrProcessDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe(newRecorder(), 42, "localhost")
			h := &fakeHandle{err: tt.err}
			p.spawned = true
			p.proc = h

			p.Timeout(false)
			p.Timeout(true)

			if len(h.signals) != 2 {
				t.Fatalf("got %d signals, want 2", len(h.signals))
			}
			if h.signals[0] != unix.SIGTERM || h.signals[1] != unix.SIGKILL {
				t.Fatalf("signals = %v", h.signals)
			}
		})
	}

	t.Run("handle cleared", func(t *testing.T) {
		p := NewProbe(newRecorder(), 42, "localhost")
		p.spawned = true
		p.proc = nil
		p.Timeout(true)
	})
}

func TestProbe_SpawnFailureStillReports(t *testing.T) {
	rec := newRecorder()
	missing := func(string) *exec.Cmd {
		return exec.Command("/nonexistent/multiping-test-binary")
	}
	p := NewProbe(rec, 3, "localhost", WithCommand(missing))
	p.Start()
	waitDone(t, p)

	got, calls := rec.get(3)
	if calls != 1 || got != OutcomeUnexpected {
		t.Fatalf("got %q after %d calls, want one %q", got, calls, OutcomeUnexpected)
	}
}
