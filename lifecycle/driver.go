package lifecycle

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/simpleiot/modemctl/mm"
)

// Config holds what the driver needs to bring a modem online
type Config struct {
	// PIN unlocks a locked SIM
	PIN string
	// Bearer is used when a bearer must be created
	Bearer mm.BearerConfig
}

// Observation is the status of the data bearer of a connected modem
type Observation struct {
	Connected bool
	Interface string
	IP4       mm.IP4Config
}

// Result describes what one step did
type Result struct {
	State  mm.ModemState
	Action Action
	// Continue is true if stepping again may make further progress
	Continue bool
	// Bearer is the bearer attached or observed, if any
	Bearer          dbus.ObjectPath
	CreatedBearer   bool
	ConnectedBearer bool
	Observation     *Observation
	// Err is a *StepError if the step failed
	Err error
}

// Driver walks one modem through its lifecycle, one call at a time:
//
//	Failed     -> Reset()
//	Locked     -> Sim.SendPin(pin)
//	Disabled   -> Enable(true)
//	Registered -> CreateBearer(config) if there is no bearer,
//	              then Bearer.Connect() if it is not connected
//	Connected  -> read the bearer status
//
// The modem state is read from ModemManager at the start of every step and
// never remembered, so changes made by ModemManager between steps are always
// seen. The driver has no other state and can be stepped from any point.
type Driver struct {
	modem  *mm.Modem
	config Config
	log    *log.Logger
}

// NewDriver returns a driver for modem
func NewDriver(modem *mm.Modem, config Config) *Driver {
	return &Driver{
		modem:  modem,
		config: config,
		log:    log.New(os.Stderr, "lifecycle: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// SetLogger replaces the default logger
func (d *Driver) SetLogger(l *log.Logger) {
	d.log = l
}

// Modem returns the modem this driver manages
func (d *Driver) Modem() *mm.Modem {
	return d.modem
}

// Step performs the action for the current modem state. Any fault aborts
// the step and is returned in Result.Err; the driver never retries.
func (d *Driver) Step(ctx context.Context) Result {
	state, err := d.modem.State(ctx)
	if err != nil {
		return d.fail(Result{State: mm.ModemStateUnknown}, "read state", err)
	}

	res := Result{
		State:    state,
		Action:   Plan(state),
		Continue: false,
	}

	switch res.Action {
	case ActionRecover:
		d.log.Printf("Modem %v: %v, resetting", d.modem, state)
		if err := d.modem.Reset(ctx); err != nil {
			return d.fail(res, "reset", err)
		}

	case ActionUnlock:
		if d.config.PIN == "" {
			return d.fail(res, "unlock", ErrNoPIN)
		}
		sim, err := d.modem.Sim(ctx)
		if err != nil {
			return d.fail(res, "read SIM", err)
		}
		if !sim.Present() {
			return d.fail(res, "read SIM", fmt.Errorf("%w: modem has no SIM", mm.ErrInvalidHandle))
		}
		d.log.Printf("Modem %v: %v, sending PIN", d.modem, state)
		if err := sim.SendPin(ctx, d.config.PIN); err != nil {
			return d.fail(res, "send PIN", err)
		}

	case ActionEnable:
		d.log.Printf("Modem %v: %v, enabling", d.modem, state)
		if err := d.modem.Enable(ctx, true); err != nil {
			return d.fail(res, "enable", err)
		}

	case ActionAttach:
		if err := d.attach(ctx, &res); err != nil {
			return d.fail(res, "attach", err)
		}

	case ActionObserve:
		if err := d.observe(ctx, &res); err != nil {
			return d.fail(res, "observe", err)
		}
	}

	res.Continue = res.Action.Progresses()
	if res.Action == ActionAttach {
		// nothing was called if the bearer was already connected; the
		// modem reports Connected on its own
		res.Continue = res.CreatedBearer || res.ConnectedBearer
	}
	return res
}

// attach makes sure the modem has a connected bearer. An existing bearer is
// reused: only the first one listed by ModemManager is managed here.
func (d *Driver) attach(ctx context.Context, res *Result) error {
	bearers, err := d.modem.Bearers(ctx)
	if err != nil {
		return err
	}

	var bearer *mm.Bearer
	if len(bearers) == 0 {
		d.log.Printf("Modem %v: creating bearer (%v)", d.modem, d.config.Bearer)
		bearer, err = d.modem.CreateBearer(ctx, d.config.Bearer)
		if err != nil {
			return err
		}
		res.CreatedBearer = true
	} else {
		bearer = bearers[0]
	}
	res.Bearer = bearer.Path()

	connected, err := bearer.Connected(ctx)
	if err != nil {
		return err
	}

	if !connected {
		d.log.Printf("Modem %v: connecting %v", d.modem, bearer)
		if err := bearer.Connect(ctx); err != nil {
			return err
		}
		res.ConnectedBearer = true
	}

	return nil
}

// observe reads the status of the first bearer. It makes no method calls.
func (d *Driver) observe(ctx context.Context, res *Result) error {
	bearers, err := d.modem.Bearers(ctx)
	if err != nil {
		return err
	}
	if len(bearers) == 0 {
		return nil
	}

	bearer := bearers[0]
	res.Bearer = bearer.Path()

	var obs Observation
	obs.Connected, err = bearer.Connected(ctx)
	if err != nil {
		return err
	}
	obs.Interface, err = bearer.Interface(ctx)
	if err != nil {
		return err
	}
	obs.IP4, err = bearer.Ip4Config(ctx)
	if err != nil {
		return err
	}

	res.Observation = &obs
	return nil
}

func (d *Driver) fail(res Result, op string, err error) Result {
	res.Continue = false
	res.Err = &StepError{
		Modem: d.modem.Path(),
		State: res.State,
		Op:    op,
		Err:   err,
	}
	d.log.Println("Error: ", res.Err)
	return res
}

// Run steps the modem until a step reports nothing more to do, fails, or
// maxSteps steps have been made. It does not wait between steps, so it is
// only useful when ModemManager completes each transition before the next
// step, i.e. when driven from a CLI. Use a Poller otherwise.
func (d *Driver) Run(ctx context.Context, maxSteps int) []Result {
	var ret []Result
	for i := 0; i < maxSteps; i++ {
		res := d.Step(ctx)
		ret = append(ret, res)
		if !res.Continue {
			break
		}
	}
	return ret
}
