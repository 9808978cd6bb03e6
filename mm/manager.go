package mm

import (
	"context"
	"fmt"
	"sort"

	"github.com/blang/semver/v4"
	"github.com/godbus/dbus/v5"
)

// Manager is the root ModemManager object. It is used to discover modems.
type Manager struct {
	a Accessor
}

// NewManager returns the root ModemManager object
func NewManager(a Accessor) *Manager {
	return &Manager{a: a}
}

func (m *Manager) String() string {
	return "ModemManager"
}

// Accessor returns the accessor the manager was created with
func (m *Manager) Accessor() Accessor {
	return m.a
}

// Version returns the ModemManager daemon version. Versions such as "1.20"
// or "1.23.4-dev" are accepted.
func (m *Manager) Version(ctx context.Context) (semver.Version, error) {
	v, err := property[string](ctx, m.a, RootPath, ManagerInterface, ManagerPropertyVersion)
	if err != nil {
		return semver.Version{}, err
	}

	ret, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, fmt.Errorf("error parsing ModemManager version %q: %w", v, err)
	}
	return ret, nil
}

// AllProperties returns all properties of the manager interface
func (m *Manager) AllProperties(ctx context.Context) (map[string]dbus.Variant, error) {
	return m.a.GetAllProperties(ctx, RootPath, ManagerInterface)
}

// ScanDevices asks ModemManager to look for new modems
func (m *Manager) ScanDevices(ctx context.Context) error {
	_, err := call(ctx, m.a, RootPath, ManagerInterface, ManagerScanDevices)
	return err
}

// ManagedModems returns the modems currently managed by ModemManager,
// ordered by object path.
func (m *Manager) ManagedModems(ctx context.Context) ([]*Modem, error) {
	objs, err := m.a.ManagedObjects(ctx, RootPath)
	if err != nil {
		return nil, err
	}

	var ret []*Modem
	for path, ifaces := range objs {
		if _, ok := ifaces[ModemInterface]; !ok {
			continue
		}
		ret = append(ret, NewModem(m.a, path))
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Path() < ret[j].Path()
	})

	return ret, nil
}

// Modem returns the managed modem at path, or ErrInvalidHandle if there is
// none. An empty path selects the first managed modem.
func (m *Manager) Modem(ctx context.Context, path dbus.ObjectPath) (*Modem, error) {
	modems, err := m.ManagedModems(ctx)
	if err != nil {
		return nil, err
	}

	for _, modem := range modems {
		if path == "" || modem.Path() == path {
			return modem, nil
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w: no managed modems", ErrInvalidHandle)
	}
	return nil, fmt.Errorf("%w: modem %v is not managed", ErrInvalidHandle, path)
}
