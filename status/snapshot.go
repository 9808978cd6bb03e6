package status

import (
	"context"
	"errors"
	"time"

	"github.com/simpleiot/modemctl/mm"
)

// Sim describes the SIM of a modem
type Sim struct {
	Path               string `json:"path"`
	SimIdentifier      string `json:"simIdentifier"`
	Imsi               string `json:"imsi"`
	OperatorIdentifier string `json:"operatorIdentifier"`
	OperatorName       string `json:"operatorName"`
}

// Bearer describes one bearer of a modem
type Bearer struct {
	Path      string        `json:"path"`
	Connected bool          `json:"connected"`
	Interface string        `json:"interface,omitempty"`
	IP4       *mm.IP4Config `json:"ip4,omitempty"`
	NetDevice *NetDevice    `json:"netDevice,omitempty"`
}

// Snapshot is a read-only picture of a modem at one point in time. It is
// what the UI renders and what publishers send.
type Snapshot struct {
	Time                 time.Time         `json:"time"`
	Path                 string            `json:"path"`
	Manufacturer         string            `json:"manufacturer"`
	Model                string            `json:"model"`
	Revision             string            `json:"revision,omitempty"`
	EquipmentIdentifier  string            `json:"equipmentIdentifier,omitempty"`
	State                string            `json:"state"`
	StateCode            mm.ModemState     `json:"stateCode"`
	SignalQuality        *mm.SignalQuality `json:"signalQuality,omitempty"`
	AccessTechnologies   string            `json:"accessTechnologies,omitempty"`
	CarrierConfiguration string            `json:"carrierConfiguration,omitempty"`
	Sim                  *Sim              `json:"sim,omitempty"`
	Bearers              []Bearer          `json:"bearers,omitempty"`
}

// Options controls what Take reads
type Options struct {
	// LookupNetDevice, if set, is used to find the NetworkManager device of
	// each connected bearer interface. Lookup errors are ignored.
	LookupNetDevice NetDeviceLookup
}

// Take reads a snapshot of modem. Radio and SIM details are only read once
// the modem is past Initializing, since ModemManager does not have them
// earlier.
func Take(ctx context.Context, modem *mm.Modem, opts Options) (Snapshot, error) {
	s := Snapshot{
		Time: time.Now(),
		Path: string(modem.Path()),
	}

	var err error
	s.Manufacturer, err = modem.Manufacturer(ctx)
	if err != nil {
		return s, err
	}

	s.Model, err = modem.Model(ctx)
	if err != nil {
		return s, err
	}

	s.StateCode, err = modem.State(ctx)
	if err != nil {
		return s, err
	}
	s.State = s.StateCode.String()

	if !s.StateCode.After(mm.ModemStateInitializing) {
		return s, nil
	}

	// the remaining properties are informational, a missing one is not an
	// error
	s.Revision, err = optional(modem.Revision(ctx))
	if err != nil {
		return s, err
	}
	s.EquipmentIdentifier, err = optional(modem.EquipmentIdentifier(ctx))
	if err != nil {
		return s, err
	}
	s.CarrierConfiguration, err = optional(modem.CarrierConfiguration(ctx))
	if err != nil {
		return s, err
	}

	sq, err := modem.SignalQuality(ctx)
	if err == nil {
		s.SignalQuality = &sq
	} else if !ignorable(err) {
		return s, err
	}

	at, err := modem.AccessTechnologies(ctx)
	if err == nil {
		s.AccessTechnologies = at.String()
	} else if !ignorable(err) {
		return s, err
	}

	sim, err := modem.Sim(ctx)
	if err != nil {
		return s, err
	}
	if sim.Present() {
		s.Sim, err = takeSim(ctx, sim)
		if err != nil {
			return s, err
		}
	}

	bearers, err := modem.Bearers(ctx)
	if err != nil {
		return s, err
	}
	for _, b := range bearers {
		bs, err := takeBearer(ctx, b, opts)
		if err != nil {
			return s, err
		}
		s.Bearers = append(s.Bearers, bs)
	}

	return s, nil
}

func takeSim(ctx context.Context, sim *mm.Sim) (*Sim, error) {
	ret := &Sim{Path: string(sim.Path())}
	var err error

	if ret.SimIdentifier, err = optional(sim.SimIdentifier(ctx)); err != nil {
		return nil, err
	}
	if ret.Imsi, err = optional(sim.Imsi(ctx)); err != nil {
		return nil, err
	}
	if ret.OperatorIdentifier, err = optional(sim.OperatorIdentifier(ctx)); err != nil {
		return nil, err
	}
	if ret.OperatorName, err = optional(sim.OperatorName(ctx)); err != nil {
		return nil, err
	}

	return ret, nil
}

func takeBearer(ctx context.Context, b *mm.Bearer, opts Options) (Bearer, error) {
	ret := Bearer{Path: string(b.Path())}
	var err error

	ret.Connected, err = b.Connected(ctx)
	if err != nil {
		return ret, err
	}
	if !ret.Connected {
		return ret, nil
	}

	ret.Interface, err = b.Interface(ctx)
	if err != nil {
		return ret, err
	}

	ip4, err := b.Ip4Config(ctx)
	if err != nil {
		return ret, err
	}
	ret.IP4 = &ip4

	if opts.LookupNetDevice != nil && ret.Interface != "" {
		dev, err := opts.LookupNetDevice(ret.Interface)
		if err == nil {
			ret.NetDevice = &dev
		}
	}

	return ret, nil
}

// ignorable is true for faults that mean the value is just not available
func ignorable(err error) bool {
	var f *mm.RemoteFault
	if errors.As(err, &f) {
		return f.NoSuchProperty()
	}
	return errors.Is(err, mm.ErrUnexpectedType)
}

func optional(v string, err error) (string, error) {
	if err != nil && ignorable(err) {
		return "", nil
	}
	return v, err
}
