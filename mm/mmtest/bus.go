// Package mmtest provides an in-memory ModemManager for tests. It
// implements mm.Accessor and records every method call made through it.
package mmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/simpleiot/modemctl/mm"
)

// Invocation is one method call seen by the Bus
type Invocation struct {
	Path      dbus.ObjectPath
	Interface string
	Method    string
	Args      []any
}

func (i Invocation) String() string {
	return fmt.Sprintf("%v %v.%v%v", i.Path, i.Interface, i.Method, i.Args)
}

// Handler implements a method on the fake bus. The bus lock is held while
// it runs, so it may use the Bus *Locked helpers but nothing else.
type Handler func(b *Bus, path dbus.ObjectPath, args []any) ([]any, error)

// Bus is a fake ModemManager. The zero value is not usable, use NewBus.
type Bus struct {
	lock     sync.Mutex
	objects  map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	handlers map[string]Handler
	faults   map[string]error
	calls    []Invocation
	reads    int
	bearerID int

	// Unreachable makes every access fail as if ModemManager were not running
	Unreachable bool
}

// NewBus returns a bus with the root manager object and handlers for the
// methods the lifecycle uses. Handlers only change what a real modem would
// change synchronously: CreateBearer adds a bearer, Bearer.Connect sets
// Connected and SendPin/Enable/Reset do nothing.
func NewBus() *Bus {
	b := &Bus{
		objects:  make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant),
		handlers: make(map[string]Handler),
		faults:   make(map[string]error),
	}

	b.AddObject(mm.RootPath, mm.ManagerInterface, map[string]any{
		mm.ManagerPropertyVersion: "1.20.0",
	})

	b.Handle(mm.ModemInterface, mm.ModemCreateBearer, createBearer)
	b.Handle(mm.SimpleInterface, mm.SimpleConnect, createBearerConnected)
	b.Handle(mm.BearerInterface, mm.BearerConnect, setConnected(true))
	b.Handle(mm.BearerInterface, mm.BearerDisconnect, setConnected(false))

	return b
}

func key(iface, member string) string {
	return iface + "." + member
}

// AddObject adds an object with one interface. Values are wrapped in
// variants as they are.
func (b *Bus) AddObject(path dbus.ObjectPath, iface string, props map[string]any) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.addObjectLocked(path, iface, props)
}

func (b *Bus) addObjectLocked(path dbus.ObjectPath, iface string, props map[string]any) {
	ifaces, ok := b.objects[path]
	if !ok {
		ifaces = make(map[string]map[string]dbus.Variant)
		b.objects[path] = ifaces
	}
	p, ok := ifaces[iface]
	if !ok {
		p = make(map[string]dbus.Variant)
		ifaces[iface] = p
	}
	for k, v := range props {
		p[k] = dbus.MakeVariant(v)
	}
}

// RemoveObject removes an object so later accesses fail with UnknownMethod
func (b *Bus) RemoveObject(path dbus.ObjectPath) {
	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.objects, path)
}

// SetProperty sets a property of an existing or new object
func (b *Bus) SetProperty(path dbus.ObjectPath, iface, name string, value any) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.SetPropertyLocked(path, iface, name, value)
}

// SetPropertyLocked is SetProperty for use inside a Handler
func (b *Bus) SetPropertyLocked(path dbus.ObjectPath, iface, name string, value any) {
	b.addObjectLocked(path, iface, map[string]any{name: value})
}

// PropertyLocked returns a property value for use inside a Handler
func (b *Bus) PropertyLocked(path dbus.ObjectPath, iface, name string) (any, bool) {
	v, ok := b.objects[path][iface][name]
	return v.Value(), ok
}

// Handle installs a method handler, replacing any previous one
func (b *Bus) Handle(iface, method string, h Handler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers[key(iface, method)] = h
}

// Fail makes every access to iface.member (a property name or a method)
// return err. A nil err clears the failure.
func (b *Bus) Fail(iface, member string, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err == nil {
		delete(b.faults, key(iface, member))
		return
	}
	b.faults[key(iface, member)] = err
}

// Calls returns the method invocations made so far. Property reads are not
// included.
func (b *Bus) Calls() []Invocation {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]Invocation(nil), b.calls...)
}

// Reads returns the number of property reads made so far
func (b *Bus) Reads() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.reads
}

// ClearCalls forgets the recorded invocations
func (b *Bus) ClearCalls() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = nil
	b.reads = 0
}

func (b *Bus) check(path dbus.ObjectPath, iface, member string) error {
	if b.Unreachable {
		return fmt.Errorf("%w: fake bus down", mm.ErrServiceUnreachable)
	}
	if err, ok := b.faults[key(iface, member)]; ok {
		return err
	}
	if _, ok := b.objects[path]; !ok {
		// what GDBus, and so ModemManager, answers for a removed object
		return Fault(path, iface, member, "org.freedesktop.DBus.Error.UnknownMethod",
			fmt.Sprintf("No such interface %q on object at path %v", iface, path))
	}
	if _, ok := b.objects[path][iface]; !ok {
		return Fault(path, iface, member, "org.freedesktop.DBus.Error.UnknownInterface",
			"no such interface")
	}
	return nil
}

// GetProperty implements mm.Accessor
func (b *Bus) GetProperty(_ context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.reads++

	if err := b.check(path, iface, name); err != nil {
		return dbus.Variant{}, err
	}
	v, ok := b.objects[path][iface][name]
	if !ok {
		return dbus.Variant{}, Fault(path, iface, name,
			"org.freedesktop.DBus.Error.UnknownProperty", "no such property")
	}
	return v, nil
}

// GetAllProperties implements mm.Accessor
func (b *Bus) GetAllProperties(_ context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.reads++

	if err := b.check(path, iface, "GetAll"); err != nil {
		return nil, err
	}
	ret := make(map[string]dbus.Variant)
	for k, v := range b.objects[path][iface] {
		ret[k] = v
	}
	return ret, nil
}

// Call implements mm.Accessor
func (b *Bus) Call(_ context.Context, path dbus.ObjectPath, iface, method string, args ...any) ([]any, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.calls = append(b.calls, Invocation{
		Path:      path,
		Interface: iface,
		Method:    method,
		Args:      args,
	})

	if err := b.check(path, iface, method); err != nil {
		return nil, err
	}

	h, ok := b.handlers[key(iface, method)]
	if !ok {
		return nil, nil
	}
	return h(b, path, args)
}

// ManagedObjects implements mm.Accessor
func (b *Bus) ManagedObjects(_ context.Context, root dbus.ObjectPath) (mm.ManagedObjects, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if err := b.check(root, mm.ManagerInterface, "GetManagedObjects"); err != nil {
		return nil, err
	}

	ret := make(mm.ManagedObjects)
	for path, ifaces := range b.objects {
		if _, ok := ifaces[mm.ModemInterface]; !ok {
			continue
		}
		ret[path] = ifaces
	}
	return ret, nil
}

// Fault returns the error the real bus would give for a D-Bus error reply
func Fault(path dbus.ObjectPath, iface, member, name, msg string) *mm.RemoteFault {
	return &mm.RemoteFault{
		Path:      path,
		Interface: iface,
		Member:    member,
		Name:      name,
		Message:   msg,
	}
}

// VariantValues is a cmp option that compares variants by value
var VariantValues = cmp.Transformer("VariantValue", func(v dbus.Variant) any {
	return v.Value()
})
