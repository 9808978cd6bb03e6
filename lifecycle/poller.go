package lifecycle

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/simpleiot/modemctl/mm"
)

// Finder locates the modem a Poller should drive. It is called when the
// poller starts and again whenever the modem disappears, since ModemManager
// assigns a new object path after a restart or a re-plug.
type Finder func(ctx context.Context) (*mm.Modem, error)

// PollerConfig controls the timing of a Poller
type PollerConfig struct {
	// Interval between steps when there is nothing to do. Defaults to 10s.
	Interval time.Duration
	// Settle is the wait before the next step after a step that made
	// progress, giving ModemManager time to change state. Defaults to 2s.
	Settle time.Duration
	// MaxBackoff caps the wait while ModemManager is unreachable. Defaults
	// to 1m.
	MaxBackoff time.Duration
	// OnResult is called after every step. ctx is canceled when the poller
	// stops.
	OnResult func(ctx context.Context, modem *mm.Modem, res Result)
}

// Poller drives a modem by calling Driver.Step periodically. It owns all
// scheduling: the driver itself never waits.
type Poller struct {
	find     Finder
	config   Config
	pc       PollerConfig
	log      *log.Logger
	stop     chan struct{}
	stopOnce sync.Once
	driver   *Driver
	// state is the last modem state seen, only used for logging changes
	state mm.ModemState
}

// NewPoller creates a poller. Nothing happens until Run is called.
func NewPoller(find Finder, config Config, pc PollerConfig) *Poller {
	if pc.Interval <= 0 {
		pc.Interval = 10 * time.Second
	}
	if pc.Settle <= 0 {
		pc.Settle = 2 * time.Second
	}
	if pc.MaxBackoff <= 0 {
		pc.MaxBackoff = time.Minute
	}

	return &Poller{
		find:   find,
		config: config,
		pc:     pc,
		log:    log.New(os.Stderr, "poller: ", log.LstdFlags|log.Lmsgprefix),
		stop:   make(chan struct{}),
	}
}

// SetLogger sets the logger used by the poller and the drivers it creates
func (p *Poller) SetLogger(l *log.Logger) {
	p.log = l
}

// Run polls until Stop is called. It always returns nil.
func (p *Poller) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-p.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	p.log.Println("Starting modem poller")

	attempts := 0
	for {
		delay := p.tick(ctx, &attempts)

		timer := time.NewTimer(delay)
		select {
		case <-p.stop:
			timer.Stop()
			p.log.Println("Stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Stop ends Run. It may be called more than once.
func (p *Poller) Stop(_ error) {
	p.stopOnce.Do(func() { close(p.stop) })
}

// tick makes one step and returns how long to wait before the next
func (p *Poller) tick(ctx context.Context, attempts *int) time.Duration {
	if p.driver == nil {
		modem, err := p.find(ctx)
		if err != nil {
			return p.retry(err, attempts)
		}
		p.log.Println("Driving modem ", modem)
		p.driver = NewDriver(modem, p.config)
		p.driver.SetLogger(p.log)
		p.state = mm.ModemStateUnknown
	}

	res := p.driver.Step(ctx)
	if res.Err == nil || res.State != mm.ModemStateUnknown {
		p.setState(res.State)
	}
	if p.pc.OnResult != nil {
		p.pc.OnResult(ctx, p.driver.Modem(), res)
	}

	if res.Err != nil {
		if errors.Is(res.Err, mm.ErrServiceUnreachable) ||
			errors.Is(res.Err, mm.ErrInvalidHandle) {
			// look the modem up again on the next tick
			p.driver = nil
		}
		return p.retry(res.Err, attempts)
	}

	*attempts = 0
	if res.Continue {
		return p.pc.Settle
	}
	return p.pc.Interval
}

func (p *Poller) setState(state mm.ModemState) {
	if state != p.state {
		p.log.Printf("Modem state: %v -> %v", p.state, state)
		p.state = state
	}
}

func (p *Poller) retry(err error, attempts *int) time.Duration {
	if errors.Is(err, mm.ErrServiceUnreachable) {
		*attempts++
		d := expBackoff(*attempts, p.pc.MaxBackoff)
		p.log.Printf("ModemManager unreachable, retrying in %v: %v", d.Round(time.Millisecond), err)
		return d
	}

	*attempts = 0
	p.log.Println("Error: ", err)
	return p.pc.Interval
}
