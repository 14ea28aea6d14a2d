package pinger

import (
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Reporter receives the outcome of a probe. Both Status and Pinger satisfy it.
type Reporter interface {
	Set(idx int, code Outcome)
}

// processHandle is the part of *os.Process a probe needs to stop it.
type processHandle interface {
	Signal(sig os.Signal) error
}

type killLevel int

const (
	killNone killLevel = iota
	killSoft
	killHard
)

// Probe is one bounded ping attempt. It reports exactly one outcome for its
// index, whether the ping exits on its own, is killed, or never starts.
type Probe struct {
	idx      int
	host     string
	reporter Reporter
	command  CommandFunc
	slow     time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger

	started time.Time
	done    chan struct{}

	mu       sync.Mutex
	proc     processHandle
	spawned  bool
	reported bool
	pending  killLevel
}

// NewProbe creates a probe for sequence number idx against host.
func NewProbe(reporter Reporter, idx int, host string, opts ...ProbeOption) *Probe {
	p := &Probe{
		idx:      idx,
		host:     host,
		reporter: reporter,
		command:  PingCommand("ping", DefaultPingTimeout),
		slow:     DefaultSlowThreshold,
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProbeOption customizes a Probe.
type ProbeOption func(*Probe)

func WithCommand(cmd CommandFunc) ProbeOption { return func(p *Probe) { p.command = cmd } }

func WithSlowThreshold(d time.Duration) ProbeOption { return func(p *Probe) { p.slow = d } }

func WithClock(c clockwork.Clock) ProbeOption { return func(p *Probe) { p.clock = c } }

func WithLogger(l *zap.Logger) ProbeOption { return func(p *Probe) { p.logger = l } }

// Index returns the sequence number this probe reports for.
func (p *Probe) Index() int { return p.idx }

// Started returns when Start was called.
func (p *Probe) Started() time.Time { return p.started }

// Start launches the ping on its own goroutine and returns immediately.
func (p *Probe) Start() {
	p.started = p.clock.Now()
	go p.run()
}

// Done is closed once the outcome has been reported.
func (p *Probe) Done() <-chan struct{} { return p.done }

// Reported reports whether the outcome has been written.
func (p *Probe) Reported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reported
}

// Join blocks until the outcome has been reported.
func (p *Probe) Join() { <-p.done }

func (p *Probe) run() {
	defer close(p.done)

	cmd := p.command(p.host)
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = probeSysProcAttr()
	}

	start := p.clock.Now()
	if err := cmd.Start(); err != nil {
		p.logger.Warn("failed to start probe",
			zap.Int("idx", p.idx),
			zap.String("host", p.host),
			zap.Error(err),
		)
		p.mu.Lock()
		p.spawned = true
		p.mu.Unlock()
		p.report(OutcomeUnexpected)
		return
	}

	p.mu.Lock()
	p.proc = cmd.Process
	p.spawned = true
	pending := p.pending
	p.mu.Unlock()

	// A timeout that arrived before the process existed is applied now.
	if pending != killNone {
		p.Timeout(pending == killHard)
	}

	// A non-nil error here only means a nonzero or signalled exit; the
	// process state carries the details.
	_ = cmd.Wait()
	elapsed := p.clock.Since(start)

	code := OutcomeUnexpected
	if cmd.ProcessState != nil {
		code = Classify(exitStatus(cmd.ProcessState), elapsed, p.slow)
	}
	p.logger.Debug("probe finished",
		zap.Int("idx", p.idx),
		zap.Stringer("outcome", code),
		zap.Duration("elapsed", elapsed),
	)
	p.report(code)
}

func (p *Probe) report(code Outcome) {
	p.reporter.Set(p.idx, code)

	p.mu.Lock()
	p.proc = nil
	p.reported = true
	p.mu.Unlock()
}

// Timeout asks the ping to terminate: SIGTERM when hard is false, SIGKILL
// otherwise. The probe may finish at any moment concurrently, so a process
// that is already gone or a handle that was already cleared is not an error.
func (p *Probe) Timeout(hard bool) {
	level := killSoft
	if hard {
		level = killHard
	}

	p.mu.Lock()
	if !p.spawned {
		if level > p.pending {
			p.pending = level
		}
		p.mu.Unlock()
		return
	}
	proc := p.proc
	p.mu.Unlock()

	if proc == nil {
		return
	}
	if err := proc.Signal(sigFor(hard)); err != nil && !processGone(err) {
		p.logger.Warn("failed to signal probe",
			zap.Int("idx", p.idx),
			zap.Bool("hard", hard),
			zap.Error(err),
		)
	}
}
