package mm

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Modem is a modem managed by ModemManager. It only holds the object path;
// every accessor reads the current value from the service.
type Modem struct {
	a    Accessor
	path dbus.ObjectPath
}

// NewModem returns the modem at path
func NewModem(a Accessor, path dbus.ObjectPath) *Modem {
	return &Modem{a: a, path: path}
}

// Path returns the object path of the modem
func (m *Modem) Path() dbus.ObjectPath {
	return m.path
}

func (m *Modem) String() string {
	return string(m.path)
}

// Equal returns true if both refer to the same modem object
func (m *Modem) Equal(o *Modem) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.path == o.path
}

func (m *Modem) str(ctx context.Context, name string) (string, error) {
	return property[string](ctx, m.a, m.path, ModemInterface, name)
}

// Manufacturer of the modem
func (m *Modem) Manufacturer(ctx context.Context) (string, error) {
	return m.str(ctx, ModemPropertyManufacturer)
}

// Model of the modem
func (m *Modem) Model(ctx context.Context) (string, error) {
	return m.str(ctx, ModemPropertyModel)
}

// Revision is the firmware revision
func (m *Modem) Revision(ctx context.Context) (string, error) {
	return m.str(ctx, ModemPropertyRevision)
}

// CarrierConfiguration is the name of the carrier configuration loaded in
// the modem.
func (m *Modem) CarrierConfiguration(ctx context.Context) (string, error) {
	return m.str(ctx, ModemPropertyCarrierConfiguration)
}

// EquipmentIdentifier is the IMEI, MEID or ESN of the modem
func (m *Modem) EquipmentIdentifier(ctx context.Context) (string, error) {
	return m.str(ctx, ModemPropertyEquipmentIdentifier)
}

// Drivers lists the kernel drivers handling the modem ports
func (m *Modem) Drivers(ctx context.Context) ([]string, error) {
	return property[[]string](ctx, m.a, m.path, ModemInterface, ModemPropertyDrivers)
}

// SignalQuality describes the signal quality in percent. Recent is false if
// the value was cached by ModemManager for a while.
type SignalQuality struct {
	Percent uint32 `json:"percent"`
	Recent  bool   `json:"recent"`
}

// SignalQuality reads the (ub) SignalQuality property
func (m *Modem) SignalQuality(ctx context.Context) (SignalQuality, error) {
	v, err := m.a.GetProperty(ctx, m.path, ModemInterface, ModemPropertySignalQuality)
	if err != nil {
		return SignalQuality{}, err
	}

	// godbus decodes structs inside variants as []any
	fields, ok := v.Value().([]any)
	if !ok || len(fields) != 2 {
		return SignalQuality{}, &typeError{path: m.path, iface: ModemInterface,
			name: ModemPropertySignalQuality, sig: v.Signature().String()}
	}

	percent, okPercent := fields[0].(uint32)
	recent, okRecent := fields[1].(bool)
	if !okPercent || !okRecent {
		return SignalQuality{}, &typeError{path: m.path, iface: ModemInterface,
			name: ModemPropertySignalQuality, sig: v.Signature().String()}
	}

	return SignalQuality{Percent: percent, Recent: recent}, nil
}

// AccessTechnologies currently in use
func (m *Modem) AccessTechnologies(ctx context.Context) (AccessTechnology, error) {
	v, err := property[uint32](ctx, m.a, m.path, ModemInterface, ModemPropertyAccessTechnologies)
	return AccessTechnology(v), err
}

// State returns the current modem state
func (m *Modem) State(ctx context.Context) (ModemState, error) {
	v, err := property[int32](ctx, m.a, m.path, ModemInterface, ModemPropertyState)
	return ModemState(v), err
}

// Sim returns the SIM of the modem. If the modem has no SIM the returned
// Sim has the empty path and every call on it fails with ErrInvalidHandle.
func (m *Modem) Sim(ctx context.Context) (*Sim, error) {
	p, err := property[dbus.ObjectPath](ctx, m.a, m.path, ModemInterface, ModemPropertySim)
	if err != nil {
		return nil, err
	}
	return NewSim(m.a, p), nil
}

// Bearers returns the bearers of the modem in the order ModemManager lists
// them.
func (m *Modem) Bearers(ctx context.Context) ([]*Bearer, error) {
	paths, err := property[[]dbus.ObjectPath](ctx, m.a, m.path, ModemInterface, ModemPropertyBearers)
	if err != nil {
		return nil, err
	}

	ret := make([]*Bearer, 0, len(paths))
	for _, p := range paths {
		ret = append(ret, NewBearer(m.a, p))
	}
	return ret, nil
}

// AllProperties of the modem interface
func (m *Modem) AllProperties(ctx context.Context) (map[string]dbus.Variant, error) {
	if m.path == "" || m.path == EmptyPath {
		return nil, ErrInvalidHandle
	}
	return m.a.GetAllProperties(ctx, m.path, ModemInterface)
}

// Reset clears non-persistent configuration and state, and returns the
// device to a newly-powered-on state.
func (m *Modem) Reset(ctx context.Context) error {
	_, err := call(ctx, m.a, m.path, ModemInterface, ModemReset)
	return err
}

// Enable or disable the modem
func (m *Modem) Enable(ctx context.Context, enable bool) error {
	_, err := call(ctx, m.a, m.path, ModemInterface, ModemEnable, enable)
	return err
}

// CreateBearer creates a new packet data bearer. The bearer is not
// connected.
func (m *Modem) CreateBearer(ctx context.Context, config BearerConfig) (*Bearer, error) {
	out, err := call(ctx, m.a, m.path, ModemInterface, ModemCreateBearer, config.Properties())
	if err != nil {
		return nil, err
	}

	p, ok := out.(dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("%w: CreateBearer returned %T", ErrUnexpectedType, out)
	}
	return NewBearer(m.a, p), nil
}

// DeleteBearer disconnects and removes a bearer
func (m *Modem) DeleteBearer(ctx context.Context, b *Bearer) error {
	_, err := call(ctx, m.a, m.path, ModemInterface, ModemDeleteBearer, b.Path())
	return err
}

// Simple returns the Modem.Simple interface of this modem
func (m *Modem) Simple() *ModemSimple {
	return &ModemSimple{a: m.a, path: m.path}
}
