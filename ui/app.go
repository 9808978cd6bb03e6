package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/simpleiot/modemctl/lifecycle"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/status"
)

// App is the interactive modem menu
type App struct {
	term   *Term
	mgr    *mm.Manager
	config lifecycle.Config
	opts   status.Options
	modem  *mm.Modem
	log    *log.Logger
}

// NewApp returns the menu for the modems of mgr. config supplies the default
// PIN and bearer settings.
func NewApp(term *Term, mgr *mm.Manager, config lifecycle.Config, opts status.Options) *App {
	return &App{
		term:   term,
		mgr:    mgr,
		config: config,
		opts:   opts,
		log:    log.New(os.Stderr, "ui: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// SetLogger sets the logger used by the app and the lifecycle driver
func (a *App) SetLogger(l *log.Logger) {
	a.log = l
}

// Modem returns the active modem, nil if none is selected
func (a *App) Modem() *mm.Modem {
	return a.modem
}

// Run selects the first modem, if any, and shows the main screen
func (a *App) Run(ctx context.Context) error {
	modem, err := a.mgr.Modem(ctx, "")
	switch {
	case err == nil:
		a.modem = modem
	case errors.Is(err, mm.ErrInvalidHandle):
		// no modems yet
	default:
		return err
	}

	return a.MainScreen().Show(ctx)
}

// MainScreen returns the top level menu
func (a *App) MainScreen() *Screen {
	return NewScreen(a.term, "ModemManager", a.buildMain)
}

func (a *App) buildMain(ctx context.Context, s *Screen) error {
	version, err := a.mgr.Version(ctx)
	if err != nil {
		return err
	}
	modems, err := a.mgr.ManagedModems(ctx)
	if err != nil {
		return err
	}
	s.Title = fmt.Sprintf("ModemManager %v with %v managed modems", version, len(modems))

	var infoErr error
	var snap status.Snapshot
	if a.modem == nil {
		s.AddRow(0, Bold, "Active modem: None")
	} else {
		s.AddRowf(0, Bold, "Active modem: %v", a.modem)
		snap, infoErr = status.Take(ctx, a.modem, a.opts)
		for _, l := range StatusLines(snap) {
			s.AddRow(1, Normal, l)
		}
		if infoErr != nil {
			s.AddRowf(1, Normal, "Error: %v", infoErr)
		}
	}

	s.AddRow(0, Normal, "")
	s.AddRow(0, Standout, "Select an option from the menu:")
	s.AddRow(0, Normal, "")

	s.AddChoice("Select modem", Normal, func(ctx context.Context) error {
		return a.selectScreen().Show(ctx)
	})

	if a.modem == nil {
		return nil
	}

	s.AddChoice("Unlock SIM", Normal, a.unlock)
	s.AddChoice("Internet", Normal, func(ctx context.Context) error {
		return a.internetScreen().Show(ctx)
	})
	s.AddChoice("Enable active modem", Normal, func(ctx context.Context) error {
		return a.modem.Enable(ctx, true)
	})
	s.AddChoice("Reset active modem", Normal, func(ctx context.Context) error {
		return a.modem.Reset(ctx)
	})

	next := "unknown"
	if infoErr == nil {
		next = lifecycle.Plan(snap.StateCode).String()
	}
	s.AddChoice("Step lifecycle ("+next+")", Normal, func(ctx context.Context) error {
		return a.step(ctx, s)
	})
	s.AddChoice("Refresh", Normal, func(context.Context) error { return nil })

	return nil
}

func (a *App) step(ctx context.Context, s *Screen) error {
	d := lifecycle.NewDriver(a.modem, a.config)
	d.SetLogger(a.log)

	res := d.Step(ctx)
	if res.Err != nil {
		return res.Err
	}

	switch {
	case res.Action == lifecycle.ActionNone:
		s.Notify("Nothing to do in state %v", res.State)
	case res.Observation != nil:
		s.Notify("Connected on %v, %v", res.Observation.Interface, res.Observation.IP4.CIDR())
	default:
		s.Notify("Modem %v: %v done", res.State, res.Action)
	}
	return nil
}

func (a *App) selectScreen() *Screen {
	return NewScreen(a.term, "Select modem", func(ctx context.Context, s *Screen) error {
		modems, err := a.mgr.ManagedModems(ctx)
		if err != nil {
			return err
		}

		attr := Normal
		if a.modem == nil {
			attr = Bold
		}
		s.AddChoice("None", attr, func(context.Context) error {
			a.modem = nil
			s.Close()
			return nil
		})

		for _, m := range modems {
			m := m
			attr := Normal
			if m.Equal(a.modem) {
				attr = Bold
			}
			s.AddChoice(m.String(), attr, func(context.Context) error {
				a.modem = m
				s.Close()
				return nil
			})
		}

		return nil
	})
}

func (a *App) unlock(ctx context.Context) error {
	a.term.Println(0, Bold, "Unlock modem")
	a.term.Println(0, Normal, "")

	pin, err := a.term.Prompt("Enter PIN: ")
	if err != nil {
		return err
	}
	if pin == "" {
		return nil
	}

	sim, err := a.modem.Sim(ctx)
	if err != nil {
		return err
	}

	return sim.SendPin(ctx, pin)
}

func (a *App) internetScreen() *Screen {
	return NewScreen(a.term, "Internet", func(ctx context.Context, s *Screen) error {
		bearers, err := a.modem.Bearers(ctx)
		if err != nil {
			return err
		}
		for _, b := range bearers {
			connected, err := b.Connected(ctx)
			if err != nil {
				return err
			}
			s.AddRowf(1, Normal, "%v connected: %v", b, connected)
		}
		if len(bearers) > 0 {
			s.AddRow(0, Normal, "")
		}

		s.AddChoice("Connect", Normal, func(ctx context.Context) error {
			return a.connect(ctx, s)
		})
		s.AddChoice("Disconnect", Normal, func(ctx context.Context) error {
			return a.modem.Simple().Disconnect(ctx)
		})

		return nil
	})
}

func (a *App) connect(ctx context.Context, s *Screen) error {
	config := a.config.Bearer
	if config.APN == "" {
		apn, err := a.term.Prompt("APN: ")
		if err != nil {
			return err
		}
		if apn == "" {
			return nil
		}
		config.APN = apn
	}

	b, err := a.modem.Simple().Connect(ctx, config)
	if err != nil {
		return err
	}

	s.Notify("Connected %v", b)
	return nil
}
