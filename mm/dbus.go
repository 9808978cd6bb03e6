package mm

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// DBusAccessor talks to ModemManager on the system bus
type DBusAccessor struct {
	conn *dbus.Conn
	dest string
}

// NewDBusAccessor connects to the system bus and checks that ModemManager
// answers. If it does not, the returned error wraps ErrServiceUnreachable.
func NewDBusAccessor(ctx context.Context) (*DBusAccessor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: error connecting to system bus: %v",
			ErrServiceUnreachable, err)
	}

	return NewDBusAccessorConn(ctx, conn, BusName)
}

// NewDBusAccessorConn uses an existing connection and bus name. This is
// useful for talking to a ModemManager instance on a private bus.
func NewDBusAccessorConn(ctx context.Context, conn *dbus.Conn, dest string) (*DBusAccessor, error) {
	a := &DBusAccessor{conn: conn, dest: dest}

	err := a.object(RootPath).CallWithContext(ctx, peerPing, 0).Err
	if err != nil {
		// any error here, including a remote one, means the name has no
		// owner we can talk to
		return nil, fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}

	return a, nil
}

func (a *DBusAccessor) object(path dbus.ObjectPath) dbus.BusObject {
	return a.conn.Object(a.dest, path)
}

// GetProperty reads one property through org.freedesktop.DBus.Properties
func (a *DBusAccessor) GetProperty(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := a.object(path).CallWithContext(ctx, propertiesGet, 0, iface, name).Store(&v)
	if err != nil {
		return v, fault(err, path, iface, name)
	}
	return v, nil
}

// GetAllProperties reads all properties of an interface
func (a *DBusAccessor) GetAllProperties(ctx context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	props := make(map[string]dbus.Variant)
	err := a.object(path).CallWithContext(ctx, propertiesGetAll, 0, iface).Store(&props)
	if err != nil {
		return nil, fault(err, path, iface, "GetAll")
	}
	return props, nil
}

// Call invokes iface.method on the object at path
func (a *DBusAccessor) Call(ctx context.Context, path dbus.ObjectPath, iface, method string, args ...any) ([]any, error) {
	c := a.object(path).CallWithContext(ctx, iface+"."+method, 0, args...)
	if c.Err != nil {
		return nil, fault(c.Err, path, iface, method)
	}
	return c.Body, nil
}

// ManagedObjects enumerates the objects below root
func (a *DBusAccessor) ManagedObjects(ctx context.Context, root dbus.ObjectPath) (ManagedObjects, error) {
	var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := a.object(root).CallWithContext(ctx, getManagedObjects, 0).Store(&objs)
	if err != nil {
		return nil, fault(err, root, objectManagerIface, "GetManagedObjects")
	}
	return ManagedObjects(objs), nil
}
