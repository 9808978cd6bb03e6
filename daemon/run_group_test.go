package daemon

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

var errMemberStopped = errors.New("member stopped")

type testMember struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func newTestMember() *testMember {
	return &testMember{stop: make(chan struct{})}
}

func (m *testMember) Run() error {
	<-m.stop
	return errMemberStopped
}

func (m *testMember) Stop(_ error) {
	m.stopOnce.Do(func() { close(m.stop) })
}

func runGroup(t *testing.T, g *RunGroup) <-chan error {
	t.Helper()
	ret := make(chan error, 1)
	go func() {
		ret <- g.Run()
	}()
	return ret
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for group")
	}
	return nil
}

func TestRunGroupMemberReturns(t *testing.T) {
	var buf bytes.Buffer
	g := NewRunGroup("test")
	g.SetLogger(log.New(&buf, "", 0))

	a, b := newTestMember(), newTestMember()
	g.Add(a)
	g.Add(b)

	done := runGroup(t, g)
	a.Stop(nil)

	if err := wait(t, done); err != errMemberStopped {
		t.Error("expected the member error, got ", err)
	}

	select {
	case <-b.stop:
	default:
		t.Error("other members should be stopped")
	}

	if !strings.Contains(buf.String(), "Stopped, reason: member stopped") {
		t.Error("stop reason not logged: ", buf.String())
	}
}

func TestRunGroupStop(t *testing.T) {
	g := NewRunGroup("test")
	g.SetLogger(log.New(&bytes.Buffer{}, "", 0))

	m := newTestMember()
	g.Add(m)

	done := runGroup(t, g)
	g.Stop(nil)
	g.Stop(nil)

	// the group's own actor returns first, with no error
	if err := wait(t, done); err != nil {
		t.Error("expected no error, got ", err)
	}

	select {
	case <-m.stop:
	default:
		t.Error("member should be stopped")
	}
}
