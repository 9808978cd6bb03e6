// Package daemon keeps a modem connected in the background and publishes
// its status.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/oklog/run"
	"github.com/simpleiot/modemctl/lifecycle"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/status"
)

// Daemon drives one modem with a lifecycle.Poller and publishes a status
// snapshot after every step
type Daemon struct {
	options Options
	mgr     *mm.Manager
	pub     status.Publisher
	opts    status.Options
	poller  *lifecycle.Poller
	log     *log.Logger
}

// New returns a daemon driving a modem reached through a. pub may be nil.
func New(a mm.Accessor, o Options, pub status.Publisher) *Daemon {
	d := &Daemon{
		options: o,
		mgr:     mm.NewManager(a),
		pub:     pub,
		opts:    o.Status(),
		log:     log.New(os.Stderr, "modemctl: ", log.LstdFlags|log.Lmsgprefix),
	}

	d.poller = lifecycle.NewPoller(d.find, o.Lifecycle(), lifecycle.PollerConfig{
		Interval: o.Interval,
		OnResult: d.onResult,
	})

	return d
}

// SetLogger sets the logger of the daemon and its poller
func (d *Daemon) SetLogger(l *log.Logger) {
	d.log = l
	d.poller.SetLogger(l)
}

func (d *Daemon) find(ctx context.Context) (*mm.Modem, error) {
	return d.mgr.Modem(ctx, dbus.ObjectPath(d.options.Modem))
}

func (d *Daemon) onResult(ctx context.Context, modem *mm.Modem, res lifecycle.Result) {
	if res.Err != nil && res.State == mm.ModemStateUnknown {
		// the modem could not be read, there is nothing to publish
		return
	}

	if d.pub == nil {
		return
	}

	s, err := status.Take(ctx, modem, d.opts)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.log.Println("Error reading modem status: ", err)
		}
		return
	}

	if err := d.pub.Publish(s); err != nil {
		d.log.Println("Error publishing modem status: ", err)
	}
}

// Run the daemon until Stop is called
func (d *Daemon) Run() error {
	return d.poller.Run()
}

// Stop the daemon
func (d *Daemon) Stop(err error) {
	d.poller.Stop(err)
}

// Publishers connects to the NATS server and MQTT broker configured in o
func Publishers(o Options) (status.Publishers, error) {
	var ret status.Publishers

	if o.NATS.Server != "" {
		p, err := status.NewNATSPublisher(o.NATS)
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}

	if o.MQTT.Broker != "" {
		p, err := status.NewMQTTPublisher(o.MQTT)
		if err != nil {
			ret.Close()
			return nil, err
		}
		ret = append(ret, p)
	}

	return ret, nil
}

// Start connects to ModemManager and the configured publishers and runs
// the daemon until SIGINT or SIGTERM.
func Start(o Options) error {
	a, err := mm.NewDBusAccessor(context.Background())
	if err != nil {
		return fmt.Errorf("error connecting to ModemManager: %w", err)
	}

	pubs, err := Publishers(o)
	if err != nil {
		return err
	}
	defer pubs.Close()

	var pub status.Publisher
	if len(pubs) > 0 {
		pub = pubs
	}

	g := NewRunGroup("modemctl")
	g.Add(New(a, o, pub))
	g.AddFunc(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	return g.Run()
}
