package lifecycle

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/mm/mmtest"
)

var testConfig = Config{
	PIN: "1111",
	Bearer: mm.BearerConfig{
		APN:      "telefonica.es",
		User:     "telefonica",
		Password: "telefonica",
	},
}

var modemPath = mmtest.ModemPath(0)

func newTestDriver(t *testing.T, state mm.ModemState) (*Driver, *mmtest.Bus) {
	t.Helper()
	bus := mmtest.NewBus()
	bus.AddModem(modemPath, state)
	d := NewDriver(mm.NewModem(bus, modemPath), testConfig)
	d.SetLogger(log.New(io.Discard, "", 0))
	return d, bus
}

func call(path dbus.ObjectPath, iface, method string, args ...any) mmtest.Invocation {
	return mmtest.Invocation{Path: path, Interface: iface, Method: method, Args: args}
}

func checkCalls(t *testing.T, bus *mmtest.Bus, exp []mmtest.Invocation) {
	t.Helper()
	if diff := cmp.Diff(exp, bus.Calls(), mmtest.VariantValues); diff != "" {
		t.Error("calls mismatch (-exp +got):\n", diff)
	}
}

func TestIdleStates(t *testing.T) {
	for _, state := range []mm.ModemState{
		mm.ModemStateUnknown,
		mm.ModemStateInitializing,
		mm.ModemStateDisabling,
		mm.ModemStateEnabling,
		mm.ModemStateEnabled,
		mm.ModemStateSearching,
		mm.ModemStateDisconnecting,
		mm.ModemStateConnecting,
		mm.ModemState(42),
	} {
		d, bus := newTestDriver(t, state)
		res := d.Step(context.Background())

		if res.Err != nil {
			t.Errorf("%v: unexpected error: %v", state, res.Err)
		}
		if res.Continue {
			t.Errorf("%v: should not continue", state)
		}
		if res.Action != ActionNone {
			t.Errorf("%v: expected no action, got %v", state, res.Action)
		}
		if len(bus.Calls()) != 0 {
			t.Errorf("%v: expected no calls, got %v", state, bus.Calls())
		}
	}
}

func TestRecover(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateFailed)
	res := d.Step(context.Background())

	if res.Err != nil || !res.Continue || res.Action != ActionRecover {
		t.Errorf("unexpected result: %+v", res)
	}

	checkCalls(t, bus, []mmtest.Invocation{
		call(modemPath, mm.ModemInterface, mm.ModemReset),
	})
}

func TestUnlock(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateLocked)
	bus.AddSim(modemPath, mmtest.SimPath(0))

	res := d.Step(context.Background())

	if res.Err != nil || !res.Continue || res.Action != ActionUnlock {
		t.Errorf("unexpected result: %+v", res)
	}

	checkCalls(t, bus, []mmtest.Invocation{
		call(mmtest.SimPath(0), mm.SimInterface, mm.SimSendPin, "1111"),
	})
}

func TestUnlockNoPIN(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateLocked)
	bus.AddSim(modemPath, mmtest.SimPath(0))
	d.config.PIN = ""

	res := d.Step(context.Background())

	if !errors.Is(res.Err, ErrNoPIN) {
		t.Error("expected ErrNoPIN, got ", res.Err)
	}
	if res.Continue {
		t.Error("should not continue after an error")
	}
	checkCalls(t, bus, nil)
}

func TestUnlockNoSim(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateLocked)

	res := d.Step(context.Background())

	if !errors.Is(res.Err, mm.ErrInvalidHandle) {
		t.Error("expected invalid handle, got ", res.Err)
	}
	checkCalls(t, bus, nil)
}

func TestEnable(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateDisabled)
	res := d.Step(context.Background())

	if res.Err != nil || !res.Continue || res.Action != ActionEnable {
		t.Errorf("unexpected result: %+v", res)
	}

	checkCalls(t, bus, []mmtest.Invocation{
		call(modemPath, mm.ModemInterface, mm.ModemEnable, true),
	})
}

func TestAttachCreatesBearer(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateRegistered)
	res := d.Step(context.Background())

	if res.Err != nil || !res.Continue || res.Action != ActionAttach {
		t.Errorf("unexpected result: %+v", res)
	}
	if !res.CreatedBearer || !res.ConnectedBearer {
		t.Errorf("bearer should be created and connected: %+v", res)
	}

	checkCalls(t, bus, []mmtest.Invocation{
		call(modemPath, mm.ModemInterface, mm.ModemCreateBearer, map[string]dbus.Variant{
			"apn":      dbus.MakeVariant("telefonica.es"),
			"user":     dbus.MakeVariant("telefonica"),
			"password": dbus.MakeVariant("telefonica"),
		}),
		call(mmtest.BearerPath(0), mm.BearerInterface, mm.BearerConnect),
	})
}

func TestAttachReusesBearer(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateRegistered)
	bus.AddBearer(modemPath, mmtest.BearerPath(5), false)
	bus.AddBearer(modemPath, mmtest.BearerPath(6), false)

	res := d.Step(context.Background())

	if res.Err != nil || res.CreatedBearer || !res.ConnectedBearer {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Bearer != mmtest.BearerPath(5) {
		t.Error("the first bearer should be used, got ", res.Bearer)
	}

	checkCalls(t, bus, []mmtest.Invocation{
		call(mmtest.BearerPath(5), mm.BearerInterface, mm.BearerConnect),
	})
}

func TestAttachConnectedBearer(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateRegistered)
	bus.AddBearer(modemPath, mmtest.BearerPath(0), true)

	res := d.Step(context.Background())

	if res.Err != nil || res.CreatedBearer || res.ConnectedBearer || res.Continue {
		t.Errorf("unexpected result: %+v", res)
	}
	checkCalls(t, bus, nil)
}

func TestObserveIdempotent(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateConnected)
	bus.AddBearer(modemPath, mmtest.BearerPath(0), true)

	for i := 0; i < 2; i++ {
		res := d.Step(context.Background())
		if res.Err != nil || res.Continue || res.Action != ActionObserve {
			t.Fatalf("step %v: unexpected result: %+v", i, res)
		}
		if res.Observation == nil {
			t.Fatal("expected an observation")
		}
		if !res.Observation.Connected || res.Observation.Interface != "wwan0" ||
			!res.Observation.IP4.Valid() {
			t.Errorf("unexpected observation: %+v", res.Observation)
		}
	}

	checkCalls(t, bus, nil)
}

func TestStateNotCached(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateDisabled)
	d.Step(context.Background())

	bus.SetState(modemPath, mm.ModemStateFailed)
	res := d.Step(context.Background())

	if res.State != mm.ModemStateFailed || res.Action != ActionRecover {
		t.Errorf("second step should see the new state: %+v", res)
	}
}

func TestFaultPropagation(t *testing.T) {
	fault := mmtest.Fault(modemPath, mm.ModemInterface, mm.ModemCreateBearer,
		"org.freedesktop.ModemManager1.Error.Core.WrongState", "not registered")

	d, bus := newTestDriver(t, mm.ModemStateRegistered)
	bus.Fail(mm.ModemInterface, mm.ModemCreateBearer, fault)

	res := d.Step(context.Background())

	var se *StepError
	if !errors.As(res.Err, &se) {
		t.Fatalf("expected StepError, got %v", res.Err)
	}
	if se.State != mm.ModemStateRegistered {
		t.Error("fault should be tagged with the state, got ", se.State)
	}
	var rf *mm.RemoteFault
	if !errors.As(res.Err, &rf) || rf != fault {
		t.Error("remote fault should be passed through unchanged")
	}
	if res.Continue {
		t.Error("should not continue after a fault")
	}

	// Connect must not be attempted after CreateBearer failed
	checkCalls(t, bus, []mmtest.Invocation{
		call(modemPath, mm.ModemInterface, mm.ModemCreateBearer, testConfig.Bearer.Properties()),
	})
}

func TestFaultReadingState(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateDisabled)
	bus.Unreachable = true

	res := d.Step(context.Background())
	if !errors.Is(res.Err, mm.ErrServiceUnreachable) {
		t.Error("expected unreachable, got ", res.Err)
	}
	if res.Continue {
		t.Error("should not continue")
	}
	checkCalls(t, bus, nil)
}

func TestRemovedModem(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateDisabled)
	bus.RemoveObject(modemPath)

	res := d.Step(context.Background())
	if !errors.Is(res.Err, mm.ErrInvalidHandle) {
		t.Error("removed modem should be an invalid handle, got ", res.Err)
	}
	if res.State != mm.ModemStateUnknown || res.Continue {
		t.Error("wrong result: ", res)
	}
	checkCalls(t, bus, nil)
}

func TestFaultEachState(t *testing.T) {
	tests := []struct {
		state  mm.ModemState
		iface  string
		member string
	}{
		{mm.ModemStateFailed, mm.ModemInterface, mm.ModemReset},
		{mm.ModemStateLocked, mm.SimInterface, mm.SimSendPin},
		{mm.ModemStateDisabled, mm.ModemInterface, mm.ModemEnable},
		{mm.ModemStateRegistered, mm.BearerInterface, mm.BearerConnect},
		{mm.ModemStateConnected, mm.BearerInterface, mm.BearerPropertyIp4Config},
	}

	for _, test := range tests {
		d, bus := newTestDriver(t, test.state)
		bus.AddSim(modemPath, mmtest.SimPath(0))
		if test.state == mm.ModemStateConnected {
			bus.AddBearer(modemPath, mmtest.BearerPath(0), true)
		}
		fault := errors.New("boom")
		bus.Fail(test.iface, test.member, fault)

		res := d.Step(context.Background())

		var se *StepError
		if !errors.As(res.Err, &se) || !errors.Is(res.Err, fault) {
			t.Errorf("%v: expected step error wrapping fault, got %v", test.state, res.Err)
			continue
		}
		if se.State != test.state {
			t.Errorf("%v: tagged with wrong state %v", test.state, se.State)
		}
		if res.Continue {
			t.Errorf("%v: should not continue", test.state)
		}
		if res.Observation != nil {
			t.Errorf("%v: failed step should not carry an observation", test.state)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	d, bus := newTestDriver(t, mm.ModemStateDisabled)

	var cont []bool
	var calls [][]mmtest.Invocation

	step := func() {
		bus.ClearCalls()
		res := d.Step(ctx)
		if res.Err != nil {
			t.Fatal("unexpected error: ", res.Err)
		}
		cont = append(cont, res.Continue)
		calls = append(calls, bus.Calls())
	}

	step()
	bus.SetState(modemPath, mm.ModemStateRegistered)
	step()
	// the bearer created and connected above is still the only one
	step()

	expCalls := [][]mmtest.Invocation{
		{call(modemPath, mm.ModemInterface, mm.ModemEnable, true)},
		{
			call(modemPath, mm.ModemInterface, mm.ModemCreateBearer, testConfig.Bearer.Properties()),
			call(mmtest.BearerPath(0), mm.BearerInterface, mm.BearerConnect),
		},
		nil,
	}
	if diff := cmp.Diff(expCalls, calls, mmtest.VariantValues); diff != "" {
		t.Error("calls mismatch (-exp +got):\n", diff)
	}

	if diff := cmp.Diff([]bool{true, true, false}, cont); diff != "" {
		t.Error("continue mismatch (-exp +got):\n", diff)
	}

	bus.SetState(modemPath, mm.ModemStateConnected)
	bus.ClearCalls()
	res := d.Step(ctx)
	if res.Continue || len(bus.Calls()) != 0 {
		t.Errorf("connected modem should only be observed: %+v %v", res, bus.Calls())
	}
}

func TestRun(t *testing.T) {
	d, bus := newTestDriver(t, mm.ModemStateRegistered)

	// ModemManager reports Connected once the bearer is up
	bus.Handle(mm.BearerInterface, mm.BearerConnect,
		func(b *mmtest.Bus, path dbus.ObjectPath, _ []any) ([]any, error) {
			b.SetPropertyLocked(path, mm.BearerInterface, mm.BearerPropertyConnected, true)
			b.SetPropertyLocked(modemPath, mm.ModemInterface, mm.ModemPropertyState,
				int32(mm.ModemStateConnected))
			return nil, nil
		})

	results := d.Run(context.Background(), 10)

	var actions []Action
	for _, r := range results {
		actions = append(actions, r.Action)
	}

	if diff := cmp.Diff([]Action{ActionAttach, ActionObserve}, actions); diff != "" {
		t.Error("actions mismatch (-exp +got):\n", diff)
	}
}

func TestRunMaxSteps(t *testing.T) {
	d, _ := newTestDriver(t, mm.ModemStateFailed)

	results := d.Run(context.Background(), 3)
	if len(results) != 3 {
		t.Error("expected 3 steps, got ", len(results))
	}
}

func TestPlan(t *testing.T) {
	exp := map[mm.ModemState]Action{
		mm.ModemStateFailed:     ActionRecover,
		mm.ModemStateLocked:     ActionUnlock,
		mm.ModemStateDisabled:   ActionEnable,
		mm.ModemStateRegistered: ActionAttach,
		mm.ModemStateConnected:  ActionObserve,
		mm.ModemStateSearching:  ActionNone,
	}

	for s, a := range exp {
		if Plan(s) != a {
			t.Errorf("%v: expected %v, got %v", s, a, Plan(s))
		}
	}
}
