package mm

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// ManagedObjects maps object paths to the interfaces and properties each
// object exposes, as returned by org.freedesktop.DBus.ObjectManager.
type ManagedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Accessor is the minimal capability needed to talk to ModemManager. It is
// implemented by DBusAccessor for the real system bus and by mmtest.Bus for
// tests.
//
// Implementations block until the service replies or the context is done.
// They never retry.
type Accessor interface {
	GetProperty(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error)
	GetAllProperties(ctx context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error)
	Call(ctx context.Context, path dbus.ObjectPath, iface, method string, args ...any) ([]any, error)
	ManagedObjects(ctx context.Context, root dbus.ObjectPath) (ManagedObjects, error)
}

// property reads a property and checks it holds a T
func property[T any](ctx context.Context, a Accessor, path dbus.ObjectPath, iface, name string) (T, error) {
	var ret T
	if path == "" || path == EmptyPath {
		return ret, ErrInvalidHandle
	}

	v, err := a.GetProperty(ctx, path, iface, name)
	if err != nil {
		return ret, err
	}

	ret, ok := v.Value().(T)
	if !ok {
		return ret, &typeError{path: path, iface: iface, name: name, sig: v.Signature().String()}
	}

	return ret, nil
}

// call invokes a method and returns its first output argument, if any
func call(ctx context.Context, a Accessor, path dbus.ObjectPath, iface, method string, args ...any) (any, error) {
	if path == "" || path == EmptyPath {
		return nil, ErrInvalidHandle
	}

	out, err := a.Call(ctx, path, iface, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

type typeError struct {
	path  dbus.ObjectPath
	iface string
	name  string
	sig   string
}

func (e *typeError) Error() string {
	return "property " + e.iface + "." + e.name + " on " + string(e.path) +
		" has signature " + e.sig
}

func (e *typeError) Unwrap() error {
	return ErrUnexpectedType
}
