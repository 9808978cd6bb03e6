package mm

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ModemSimple is the Modem.Simple interface which connects a modem in one
// call, enabling, registering and creating a bearer as needed.
type ModemSimple struct {
	a    Accessor
	path dbus.ObjectPath
}

// Connect the modem using config and return the connected bearer
func (s *ModemSimple) Connect(ctx context.Context, config BearerConfig) (*Bearer, error) {
	out, err := call(ctx, s.a, s.path, SimpleInterface, SimpleConnect, config.Properties())
	if err != nil {
		return nil, err
	}

	p, ok := out.(dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("%w: Simple.Connect returned %T", ErrUnexpectedType, out)
	}
	return NewBearer(s.a, p), nil
}

// Disconnect all bearers of the modem
func (s *ModemSimple) Disconnect(ctx context.Context) error {
	_, err := call(ctx, s.a, s.path, SimpleInterface, SimpleDisconnect, EmptyPath)
	return err
}

// GetStatus returns the simple status dictionary (state,
// signal-quality, access-technologies, m3gpp-operator-name, ...).
func (s *ModemSimple) GetStatus(ctx context.Context) (map[string]dbus.Variant, error) {
	out, err := call(ctx, s.a, s.path, SimpleInterface, SimpleGetStatus)
	if err != nil {
		return nil, err
	}

	if out == nil {
		return map[string]dbus.Variant{}, nil
	}

	ret, ok := out.(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: Simple.GetStatus returned %T", ErrUnexpectedType, out)
	}
	return ret, nil
}
