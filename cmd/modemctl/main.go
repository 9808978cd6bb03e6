package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/simpleiot/modemctl/daemon"
	"github.com/simpleiot/modemctl/lifecycle"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/status"
	"github.com/simpleiot/modemctl/ui"
)

// goreleaser will replace version with Git version. You can also pass version
// into the version into the go build:
//
//	go build -ldflags="-X main.version=1.2.3"
var version = "Development"

func main() {
	// global options
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagVersion := flags.Bool("version", false, "Print app version")
	flags.Usage = func() {
		fmt.Println("usage: modemctl [OPTION]... COMMAND [OPTION]...")
		fmt.Println("Global options:")
		flags.PrintDefaults()
		fmt.Println()
		fmt.Println("Available commands:")
		fmt.Println("  - ui (interactive modem menu, default)")
		fmt.Println("  - list (list managed modems)")
		fmt.Println("  - step (make one lifecycle step, -all to step until done)")
		fmt.Println("  - watch (show live modem status)")
		fmt.Println("  - run (keep the modem connected and publish its status)")
	}

	_ = flags.Parse(os.Args[1:])

	if *flagVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// extract sub command and its arguments
	args := flags.Args()

	if len(args) < 1 {
		args = []string{"ui"}
	}

	var err error
	switch args[0] {
	case "ui":
		err = runUI(args[1:])
	case "list":
		err = runList(args[1:])
	case "step":
		err = runStep(args[1:])
	case "watch":
		err = runWatch(args[1:])
	case "run":
		log.Printf("modemctl %v\n", version)
		err = daemonRun(args[1:])
	default:
		log.Fatal("Unknown command; options: ui, list, step, watch, run")
	}

	if err != nil {
		log.Println("modemctl stopped, reason: ", err)
		os.Exit(-1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func connect(ctx context.Context) (*mm.Manager, error) {
	a, err := mm.NewDBusAccessor(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to ModemManager: %w", err)
	}
	return mm.NewManager(a), nil
}

func runUI(args []string) error {
	o, err := daemon.Args(args, flag.NewFlagSet("ui", flag.ExitOnError))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mgr, err := connect(ctx)
	if err != nil {
		return err
	}

	app := ui.NewApp(ui.NewTerm(os.Stdin, os.Stdout), mgr, o.Lifecycle(), o.Status())
	return app.Run(ctx)
}

func runList(args []string) error {
	if _, err := daemon.Args(args, flag.NewFlagSet("list", flag.ExitOnError)); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mgr, err := connect(ctx)
	if err != nil {
		return err
	}

	v, err := mgr.Version(ctx)
	if err != nil {
		return err
	}

	modems, err := mgr.ManagedModems(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("ModemManager %v with %v managed modems\n", v, len(modems))

	for _, m := range modems {
		s, err := status.Take(ctx, m, status.Options{})
		if err != nil {
			fmt.Printf("%v: error: %v\n", m, err)
			continue
		}
		fmt.Printf("%v: %v %v, %v\n", m, s.Manufacturer, s.Model, s.State)
	}

	return nil
}

func runStep(args []string) error {
	flags := flag.NewFlagSet("step", flag.ExitOnError)
	flagAll := flags.Bool("all", false, "step until there is nothing more to do")
	flagMax := flags.Int("max", 10, "maximum number of steps with -all")

	o, err := daemon.Args(args, flags)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mgr, err := connect(ctx)
	if err != nil {
		return err
	}

	modem, err := mgr.Modem(ctx, dbus.ObjectPath(o.Modem))
	if err != nil {
		return err
	}

	d := lifecycle.NewDriver(modem, o.Lifecycle())

	steps := 1
	if *flagAll {
		steps = *flagMax
	}

	for _, res := range d.Run(ctx, steps) {
		if res.Err != nil {
			return res.Err
		}
		fmt.Printf("%v: %v -> %v\n", modem, res.State, res.Action)
		if res.Observation != nil {
			fmt.Printf("  connected: %v, interface: %v, ip4: %v\n", res.Observation.Connected,
				res.Observation.Interface, res.Observation.IP4.CIDR())
		}
	}

	return nil
}

func runWatch(args []string) error {
	o, err := daemon.Args(args, flag.NewFlagSet("watch", flag.ExitOnError))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mgr, err := connect(ctx)
	if err != nil {
		return err
	}

	opts := o.Status()
	path := dbus.ObjectPath(o.Modem)

	return ui.Watch(ctx, os.Stdout, func(ctx context.Context) (status.Snapshot, error) {
		modem, err := mgr.Modem(ctx, path)
		if err != nil {
			return status.Snapshot{}, err
		}
		return status.Take(ctx, modem, opts)
	}, o.Interval)
}

func daemonRun(args []string) error {
	o, err := daemon.Args(args, flag.NewFlagSet("run", flag.ExitOnError))
	if err != nil {
		return err
	}

	return daemon.Start(o)
}
