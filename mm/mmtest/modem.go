package mmtest

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/simpleiot/modemctl/mm"
)

const bearerRoot = "/org/freedesktop/ModemManager1/Bearer/"

// ModemPath returns the object path ModemManager uses for modem n
func ModemPath(n int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/ModemManager1/Modem/%d", n))
}

// SimPath returns the object path ModemManager uses for SIM n
func SimPath(n int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/ModemManager1/SIM/%d", n))
}

// BearerPath returns the object path ModemManager uses for bearer n
func BearerPath(n int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%v%d", bearerRoot, n))
}

// AddModem adds a modem in the given state with no SIM and no bearers
func (b *Bus) AddModem(path dbus.ObjectPath, state mm.ModemState) {
	b.AddObject(path, mm.ModemInterface, map[string]any{
		mm.ModemPropertyManufacturer:         "QUALCOMM INCORPORATED",
		mm.ModemPropertyModel:                "QUECTEL Mobile Broadband Module",
		mm.ModemPropertyRevision:             "EG25GGBR07A08M2G",
		mm.ModemPropertyState:                int32(state),
		mm.ModemPropertySignalQuality:        []any{uint32(0), false},
		mm.ModemPropertyAccessTechnologies:   uint32(0),
		mm.ModemPropertyCarrierConfiguration: "",
		mm.ModemPropertyEquipmentIdentifier:  "867698040000000",
		mm.ModemPropertyDrivers:              []string{"qmi_wwan", "option"},
		mm.ModemPropertySim:                  mm.EmptyPath,
		mm.ModemPropertyBearers:              []dbus.ObjectPath{},
	})
	b.AddObject(path, mm.SimpleInterface, map[string]any{})
}

// SetState changes the State property of a modem
func (b *Bus) SetState(modem dbus.ObjectPath, state mm.ModemState) {
	b.SetProperty(modem, mm.ModemInterface, mm.ModemPropertyState, int32(state))
}

// AddSim adds a SIM and attaches it to modem
func (b *Bus) AddSim(modem, sim dbus.ObjectPath) {
	b.AddObject(sim, mm.SimInterface, map[string]any{
		mm.SimPropertySimIdentifier:      "8934071100000000000",
		mm.SimPropertyImsi:               "214070000000000",
		mm.SimPropertyOperatorIdentifier: "21407",
		mm.SimPropertyOperatorName:       "Movistar",
	})
	b.SetProperty(modem, mm.ModemInterface, mm.ModemPropertySim, sim)
}

// AddBearer adds a bearer with the given connection status to the end of
// the modem's bearer list
func (b *Bus) AddBearer(modem, bearer dbus.ObjectPath, connected bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.addBearerLocked(modem, bearer, connected)
}

func (b *Bus) addBearerLocked(modem, bearer dbus.ObjectPath, connected bool) {
	props := map[string]any{
		mm.BearerPropertyConnected: connected,
		mm.BearerPropertyInterface: "",
		mm.BearerPropertyIp4Config: map[string]dbus.Variant{},
	}
	if connected {
		props[mm.BearerPropertyInterface] = "wwan0"
		props[mm.BearerPropertyIp4Config] = connectedIP4
	}
	b.addObjectLocked(bearer, mm.BearerInterface, props)

	cur, _ := b.PropertyLocked(modem, mm.ModemInterface, mm.ModemPropertyBearers)
	paths, _ := cur.([]dbus.ObjectPath)
	paths = append(append([]dbus.ObjectPath(nil), paths...), bearer)
	b.SetPropertyLocked(modem, mm.ModemInterface, mm.ModemPropertyBearers, paths)
}

var connectedIP4 = map[string]dbus.Variant{
	"method":  dbus.MakeVariant(uint32(mm.BearerIPMethodStatic)),
	"address": dbus.MakeVariant("10.64.12.7"),
	"prefix":  dbus.MakeVariant(uint32(29)),
	"gateway": dbus.MakeVariant("10.64.12.1"),
	"dns1":    dbus.MakeVariant("80.58.61.250"),
	"dns2":    dbus.MakeVariant("80.58.61.254"),
	"mtu":     dbus.MakeVariant(uint32(1500)),
}

func createBearer(b *Bus, modem dbus.ObjectPath, _ []any) ([]any, error) {
	b.bearerID++
	p := BearerPath(b.bearerID - 1)
	b.addBearerLocked(modem, p, false)
	return []any{p}, nil
}

func createBearerConnected(b *Bus, modem dbus.ObjectPath, _ []any) ([]any, error) {
	b.bearerID++
	p := BearerPath(b.bearerID - 1)
	b.addBearerLocked(modem, p, true)
	return []any{p}, nil
}

func setConnected(connected bool) Handler {
	return func(b *Bus, bearer dbus.ObjectPath, _ []any) ([]any, error) {
		b.SetPropertyLocked(bearer, mm.BearerInterface, mm.BearerPropertyConnected, connected)
		if connected {
			b.SetPropertyLocked(bearer, mm.BearerInterface, mm.BearerPropertyInterface, "wwan0")
			b.SetPropertyLocked(bearer, mm.BearerInterface, mm.BearerPropertyIp4Config, connectedIP4)
		} else {
			b.SetPropertyLocked(bearer, mm.BearerInterface, mm.BearerPropertyInterface, "")
			b.SetPropertyLocked(bearer, mm.BearerInterface, mm.BearerPropertyIp4Config,
				map[string]dbus.Variant{})
		}
		return nil, nil
	}
}
