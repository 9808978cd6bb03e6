package ui

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/simpleiot/modemctl/lifecycle"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/mm/mmtest"
	"github.com/simpleiot/modemctl/status"
)

func init() {
	color.NoColor = true
}

var testConfig = lifecycle.Config{
	PIN:    "1111",
	Bearer: mm.BearerConfig{APN: "internet"},
}

func runApp(t *testing.T, bus *mmtest.Bus, input string) (*App, string) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(NewTerm(strings.NewReader(input), &out), mm.NewManager(bus), testConfig,
		status.Options{})
	app.SetLogger(log.New(io.Discard, "", 0))

	if err := app.Run(context.Background()); err != nil {
		t.Fatal("app error: ", err)
	}
	return app, out.String()
}

func methods(bus *mmtest.Bus) []string {
	var ret []string
	for _, c := range bus.Calls() {
		ret = append(ret, c.Method)
	}
	return ret
}

func checkMethods(t *testing.T, bus *mmtest.Bus, exp []string) {
	t.Helper()
	if diff := cmp.Diff(exp, methods(bus)); diff != "" {
		t.Error("calls mismatch (-exp +got):\n", diff)
	}
}

func TestMainScreen(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateRegistered)
	bus.AddSim(mmtest.ModemPath(0), mmtest.SimPath(0))

	_, out := runApp(t, bus, "q\n")

	for _, exp := range []string{
		"ModemManager 1.20.0 with 1 managed modems",
		"Active modem: " + string(mmtest.ModemPath(0)),
		"State: Registered",
		"SIM identifier: 8934071100000000000, SIM IMSI: 214070000000000",
		"Select an option from the menu:",
		"(0) - Select modem",
		"(5) - Step lifecycle (attach)",
		"(6) - Refresh",
		"(Q) - Quit / Previous",
	} {
		if !strings.Contains(out, exp) {
			t.Errorf("output does not contain %q:\n%v", exp, out)
		}
	}

	checkMethods(t, bus, nil)
}

func TestMainScreenNoModem(t *testing.T) {
	bus := mmtest.NewBus()

	app, out := runApp(t, bus, "q\n")
	if app.Modem() != nil {
		t.Error("no modem should be active")
	}
	if !strings.Contains(out, "with 0 managed modems") || !strings.Contains(out, "Active modem: None") {
		t.Error("wrong main screen:\n", out)
	}
	if strings.Contains(out, "Unlock SIM") {
		t.Error("modem choices shown without a modem:\n", out)
	}
}

func TestSelectModem(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateDisabled)
	bus.AddModem(mmtest.ModemPath(1), mm.ModemStateDisabled)

	app, _ := runApp(t, bus, "0\n2\nq\n")
	if !app.Modem().Equal(mm.NewModem(bus, mmtest.ModemPath(1))) {
		t.Error("wrong modem selected: ", app.Modem())
	}

	app, _ = runApp(t, bus, "0\n0\nq\n")
	if app.Modem() != nil {
		t.Error("None should clear the active modem, got ", app.Modem())
	}
}

func TestUnlock(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateLocked)
	bus.AddSim(mmtest.ModemPath(0), mmtest.SimPath(0))

	runApp(t, bus, "1\n4271\nq\n")

	calls := bus.Calls()
	if len(calls) != 1 || calls[0].Method != mm.SimSendPin || calls[0].Path != mmtest.SimPath(0) {
		t.Fatal("expected SendPin on the SIM, got ", calls)
	}
	if diff := cmp.Diff([]any{"4271"}, calls[0].Args); diff != "" {
		t.Error("PIN mismatch (-exp +got):\n", diff)
	}
}

func TestUnlockCanceled(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateLocked)
	bus.AddSim(mmtest.ModemPath(0), mmtest.SimPath(0))

	runApp(t, bus, "1\n\nq\n")
	checkMethods(t, bus, nil)
}

func TestInternet(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateRegistered)

	_, out := runApp(t, bus, "2\n0\n1\nq\nq\n")

	checkMethods(t, bus, []string{mm.SimpleConnect, mm.SimpleDisconnect})

	if !strings.Contains(out, "Connected Bearer @ "+string(mmtest.BearerPath(0))) {
		t.Error("connect not reported:\n", out)
	}
}

func TestEnableReset(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateDisabled)

	runApp(t, bus, "3\n4\nq\n")
	checkMethods(t, bus, []string{mm.ModemEnable, mm.ModemReset})
}

func TestStepLifecycle(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateDisabled)

	_, out := runApp(t, bus, "5\nq\n")
	checkMethods(t, bus, []string{mm.ModemEnable})

	if !strings.Contains(out, "Modem Disabled: enable done") {
		t.Error("step not reported:\n", out)
	}
}

func TestChoiceError(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateDisabled)
	bus.Fail(mm.ModemInterface, mm.ModemEnable,
		mmtest.Fault(mmtest.ModemPath(0), mm.ModemInterface, mm.ModemEnable,
			"org.freedesktop.ModemManager1.Error.Core.Unauthorized", "not allowed"))

	_, out := runApp(t, bus, "3\nq\n")
	if !strings.Contains(out, "Error: ") || !strings.Contains(out, "not allowed") {
		t.Error("error not shown:\n", out)
	}
}

func TestScreenIgnoresBadInput(t *testing.T) {
	var out bytes.Buffer
	term := NewTerm(strings.NewReader("x\n7\n0\n"), &out)

	runs := 0
	s := NewScreen(term, "Test", func(_ context.Context, s *Screen) error {
		s.AddChoice("Run", Normal, func(context.Context) error {
			runs++
			return nil
		})
		return nil
	})

	if err := s.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Error("expected one run, got ", runs)
	}
	if diff := cmp.Diff([]string{"Run"}, s.Choices()); diff != "" {
		t.Error("choices mismatch (-exp +got):\n", diff)
	}
}

func TestWatch(t *testing.T) {
	bus := mmtest.NewBus()
	bus.AddModem(mmtest.ModemPath(0), mm.ModemStateConnected)
	bus.AddBearer(mmtest.ModemPath(0), mmtest.BearerPath(0), true)
	modem := mm.NewModem(bus, mmtest.ModemPath(0))

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	take := func(ctx context.Context) (status.Snapshot, error) {
		frames++
		if frames == 2 {
			cancel()
		}
		return status.Take(ctx, modem, status.Options{})
	}

	var out bytes.Buffer
	if err := Watch(ctx, &out, take, time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if frames != 2 {
		t.Error("expected 2 frames, got ", frames)
	}
	if !strings.Contains(out.String(), "State: Connected") ||
		!strings.Contains(out.String(), "10.64.12.7/29") {
		t.Error("wrong watch output:\n", out.String())
	}
}
