package pinger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	pkgerrors "multiping/pkg/errors"
)

const (
	DefaultInterval    = 1 * time.Second
	DefaultSoftTimeout = 5 * time.Second
	// DefaultPingTimeout bounds the ping program itself and stays below the
	// soft timeout so a healthy ping gives up before it is signalled.
	DefaultPingTimeout = 4 * time.Second
)

// HardTimeout returns the age at which a probe is killed outright.
func HardTimeout(soft time.Duration) time.Duration { return 2 * soft }

// Options configures a Pinger. Zero values select the defaults.
type Options struct {
	Interval      time.Duration
	SoftTimeout   time.Duration
	SlowThreshold time.Duration
	// Count stops launching new attempts once this many were sent. Zero
	// means run until Quit.
	Count   int
	Command CommandFunc
	// OnSet is called after every write to the status store.
	OnSet  func(idx int, code Outcome)
	Clock  clockwork.Clock
	Logger *zap.Logger
}

// Pinger launches one probe per interval against a single host and collects
// the outcomes in its Status.
type Pinger struct {
	host   string
	opts   Options
	status *Status
	clock  clockwork.Clock
	logger *zap.Logger

	running  atomic.Bool
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// outstanding is touched only by the Run goroutine.
	outstanding []*Probe
}

// New creates a Pinger for host. It is armed: Run or Start begin pinging
// until Quit is called.
func New(host string, opts Options) *Pinger {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.SoftTimeout <= 0 {
		opts.SoftTimeout = DefaultSoftTimeout
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowThreshold
	}
	if opts.Command == nil {
		opts.Command = PingCommand("ping", DefaultPingTimeout)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := &Pinger{
		host:   host,
		opts:   opts,
		status: NewStatus(opts.Clock.Now()),
		clock:  opts.Clock,
		logger: opts.Logger.With(zap.String("host", host)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	p.running.Store(true)
	return p
}

func (p *Pinger) Host() string { return p.host }

func (p *Pinger) Interval() time.Duration { return p.opts.Interval }

// Status returns the store the probes report into.
func (p *Pinger) Status() *Status { return p.status }

// Set records an outcome and notifies the OnSet observer.
func (p *Pinger) Set(idx int, code Outcome) {
	p.status.Set(idx, code)
	if p.opts.OnSet != nil {
		p.opts.OnSet(idx, code)
	}
}

// Running reports whether the cadence loop has been asked to keep going.
func (p *Pinger) Running() bool { return p.running.Load() }

// Start runs the cadence loop on its own goroutine.
func (p *Pinger) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return pkgerrors.ErrAlreadyStarted
	}
	go func() {
		defer close(p.done)
		p.Run()
	}()
	return nil
}

// Quit asks the loop to stop. It does not wait; see Join.
func (p *Pinger) Quit() {
	p.running.Store(false)
	p.stopOnce.Do(func() { close(p.stop) })
}

// Join waits until a started loop has exited and every probe it launched
// has been reaped.
func (p *Pinger) Join() {
	if !p.started.Load() {
		return
	}
	<-p.done
}

// Done is closed when a started loop has fully stopped.
func (p *Pinger) Done() <-chan struct{} { return p.done }

// Run is the cadence loop. It returns after Quit, or once Count attempts
// were sent and all of them reported.
func (p *Pinger) Run() {
	p.logger.Info("pinger started",
		zap.Duration("interval", p.opts.Interval),
		zap.Duration("soft_timeout", p.opts.SoftTimeout),
		zap.Int("count", p.opts.Count),
	)

	for p.running.Load() {
		if p.opts.Count > 0 && p.status.Sent() >= p.opts.Count {
			if len(p.outstanding) == 0 {
				break
			}
			p.sleep(p.opts.Interval, p.outstanding[0].Done())
		} else {
			p.launch()
			p.sleep(p.opts.Interval, nil)
		}
		p.sweep()
	}

	p.shutdown()
	p.running.Store(false)
}

func (p *Pinger) launch() {
	idx := p.status.Next()
	probe := NewProbe(p, idx, p.host,
		WithCommand(p.opts.Command),
		WithSlowThreshold(p.opts.SlowThreshold),
		WithClock(p.clock),
		WithLogger(p.logger),
	)
	probe.Start()
	p.outstanding = append(p.outstanding, probe)
}

// sleep waits for d, returning early on Quit or when wake fires.
func (p *Pinger) sleep(d time.Duration, wake <-chan struct{}) {
	t := p.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.Chan():
	case <-p.stop:
	case <-wake:
	}
}

// sweep signals probes that outlived their budget and forgets the ones
// that already reported.
func (p *Pinger) sweep() {
	now := p.clock.Now()
	soft := p.opts.SoftTimeout
	hard := HardTimeout(soft)

	live := p.outstanding[:0]
	for _, probe := range p.outstanding {
		if probe.Reported() {
			continue
		}
		age := now.Sub(probe.Started())
		switch {
		case age > hard:
			probe.Timeout(true)
		case age > soft:
			probe.Timeout(false)
		}
		live = append(live, probe)
	}
	for i := len(live); i < len(p.outstanding); i++ {
		p.outstanding[i] = nil
	}
	p.outstanding = live
}

// shutdown kills whatever is still running and waits for every report.
func (p *Pinger) shutdown() {
	for _, probe := range p.outstanding {
		probe.Timeout(true)
	}
	for _, probe := range p.outstanding {
		probe.Join()
	}
	p.outstanding = nil

	p.logger.Info("pinger stopped",
		zap.Int("sent", p.status.Sent()),
		zap.Int("received", p.status.Received()),
	)
}
