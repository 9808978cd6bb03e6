package mm

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// Bearer is a packet data bearer of a modem
type Bearer struct {
	a    Accessor
	path dbus.ObjectPath
}

// NewBearer returns the bearer at path
func NewBearer(a Accessor, path dbus.ObjectPath) *Bearer {
	return &Bearer{a: a, path: path}
}

// Path returns the object path of the bearer
func (b *Bearer) Path() dbus.ObjectPath {
	return b.path
}

func (b *Bearer) String() string {
	return "Bearer @ " + string(b.path)
}

// Connected returns true if the bearer is connected
func (b *Bearer) Connected(ctx context.Context) (bool, error) {
	return property[bool](ctx, b.a, b.path, BearerInterface, BearerPropertyConnected)
}

// Interface is the network interface (i.e. wwan0) of a connected bearer
func (b *Bearer) Interface(ctx context.Context) (string, error) {
	return property[string](ctx, b.a, b.path, BearerInterface, BearerPropertyInterface)
}

// Ip4Config returns the IPv4 configuration of a connected bearer
func (b *Bearer) Ip4Config(ctx context.Context) (IP4Config, error) {
	settings, err := property[map[string]dbus.Variant](ctx, b.a, b.path, BearerInterface, BearerPropertyIp4Config)
	if err != nil {
		return IP4Config{}, err
	}
	return ResolveIP4Config(settings), nil
}

// Connect the bearer
func (b *Bearer) Connect(ctx context.Context) error {
	_, err := call(ctx, b.a, b.path, BearerInterface, BearerConnect)
	return err
}

// Disconnect the bearer
func (b *Bearer) Disconnect(ctx context.Context) error {
	_, err := call(ctx, b.a, b.path, BearerInterface, BearerDisconnect)
	return err
}
