package lifecycle

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/simpleiot/modemctl/mm"
)

// ErrNoPIN is returned when a modem is locked and no PIN is configured
var ErrNoPIN = errors.New("SIM is locked and no PIN is configured")

// StepError is the error of a failed step. It records the state the modem
// was in and the operation that failed. The underlying fault is available
// through errors.Is/As.
type StepError struct {
	Modem dbus.ObjectPath
	State mm.ModemState
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("modem %v (%v): %v: %v", e.Modem, e.State, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
