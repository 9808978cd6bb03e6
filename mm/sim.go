package mm

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// Sim is the SIM card of a modem
type Sim struct {
	a    Accessor
	path dbus.ObjectPath
}

// NewSim returns the SIM at path
func NewSim(a Accessor, path dbus.ObjectPath) *Sim {
	return &Sim{a: a, path: path}
}

// Path returns the object path of the SIM
func (s *Sim) Path() dbus.ObjectPath {
	return s.path
}

// Present returns false for an empty SIM slot
func (s *Sim) Present() bool {
	return s.path != "" && s.path != EmptyPath
}

func (s *Sim) String() string {
	return "Sim @ " + string(s.path)
}

func (s *Sim) str(ctx context.Context, name string) (string, error) {
	return property[string](ctx, s.a, s.path, SimInterface, name)
}

// SimIdentifier is the ICCID of the SIM
func (s *Sim) SimIdentifier(ctx context.Context) (string, error) {
	return s.str(ctx, SimPropertySimIdentifier)
}

// Imsi of the SIM
func (s *Sim) Imsi(ctx context.Context) (string, error) {
	return s.str(ctx, SimPropertyImsi)
}

// OperatorIdentifier is the MCC/MNC of the network operator that issued the SIM
func (s *Sim) OperatorIdentifier(ctx context.Context) (string, error) {
	return s.str(ctx, SimPropertyOperatorIdentifier)
}

// OperatorName of the operator that issued the SIM
func (s *Sim) OperatorName(ctx context.Context) (string, error) {
	return s.str(ctx, SimPropertyOperatorName)
}

// SendPin unlocks the SIM
func (s *Sim) SendPin(ctx context.Context, pin string) error {
	_, err := call(ctx, s.a, s.path, SimInterface, SimSendPin, pin)
	return err
}
