package mm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

// ErrServiceUnreachable is returned when ModemManager is not running or not
// reachable on the system bus.
var ErrServiceUnreachable = errors.New("ModemManager service unreachable")

// ErrInvalidHandle is returned when an object path no longer resolves to a
// ModemManager object, or resolves to the empty path.
var ErrInvalidHandle = errors.New("invalid object handle")

// ErrUnexpectedType is returned when a property holds a value of a type
// other than the one the ModemManager API documents.
var ErrUnexpectedType = errors.New("unexpected property type")

// RemoteFault is an error returned by ModemManager (or the bus daemon on its
// behalf) for a property read or a method call.
type RemoteFault struct {
	Path      dbus.ObjectPath
	Interface string
	Member    string
	// Name is the D-Bus error name, i.e.
	// org.freedesktop.ModemManager1.Error.Core.WrongState
	Name    string
	Message string
}

func (f *RemoteFault) Error() string {
	msg := fmt.Sprintf("%v %v.%v: %v", f.Path, f.Interface, f.Member, f.Name)
	if f.Message != "" {
		msg += ": " + f.Message
	}
	return msg
}

// Short returns the error name without the well known prefixes, i.e.
// "AccessDenied" or "Core.WrongState".
func (f *RemoteFault) Short() string {
	s := strings.TrimPrefix(f.Name, dbusErrorPrefix)
	return strings.TrimPrefix(s, modemManagerErrorPfx)
}

// Is lets errors.Is match a RemoteFault against the sentinel errors of this
// package.
func (f *RemoteFault) Is(target error) bool {
	switch target {
	case ErrServiceUnreachable:
		switch f.Short() {
		case "ServiceUnknown", "NameHasNoOwner", "NoReply", "Disconnected":
			return true
		}
	case ErrInvalidHandle:
		switch f.Short() {
		case "UnknownObject", "UnknownInterface", "UnknownMethod":
			// GDBus services answer calls on removed objects with
			// UnknownMethod
			return true
		}
	}
	return false
}

// Denied returns true if the bus or the service refused the operation
func (f *RemoteFault) Denied() bool {
	switch f.Short() {
	case "AccessDenied", "AuthFailed", "Core.Unauthorized":
		return true
	}
	return false
}

// NoSuchProperty returns true if the property does not exist on the object
func (f *RemoteFault) NoSuchProperty() bool {
	switch f.Short() {
	case "UnknownProperty", "InvalidArgs":
		return true
	}
	return false
}

// fault converts an error returned by godbus into the fault taxonomy of this
// package. Errors that did not come from the remote side are wrapped with
// ErrServiceUnreachable since the connection itself failed.
func fault(err error, path dbus.ObjectPath, iface, member string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v.%v on %v: %w", iface, member, path, err)
	}

	var name string
	var body []any

	var de dbus.Error
	var dep *dbus.Error
	switch {
	case errors.As(err, &dep) && dep != nil:
		name, body = dep.Name, dep.Body
	case errors.As(err, &de):
		name, body = de.Name, de.Body
	default:
		return fmt.Errorf("%w: %v.%v on %v: %v", ErrServiceUnreachable,
			iface, member, path, err)
	}

	f := &RemoteFault{
		Path:      path,
		Interface: iface,
		Member:    member,
		Name:      name,
	}
	if len(body) > 0 {
		if msg, ok := body[0].(string); ok {
			f.Message = msg
		}
	}
	return f
}
