package ui

import (
	"fmt"
	"strings"

	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/status"
)

func signalString(sq *mm.SignalQuality) string {
	if sq == nil {
		return "unknown"
	}
	if sq.Recent {
		return fmt.Sprintf("%v%%", sq.Percent)
	}
	return fmt.Sprintf("%v%% (cached)", sq.Percent)
}

func bearerString(b status.Bearer) string {
	if !b.Connected {
		return fmt.Sprintf("Bearer %v: disconnected", b.Path)
	}

	parts := []string{fmt.Sprintf("Bearer %v: connected", b.Path)}
	if b.Interface != "" {
		parts = append(parts, b.Interface)
	}
	if b.IP4 != nil && b.IP4.Valid() {
		parts = append(parts, b.IP4.CIDR(), "gw "+b.IP4.Gateway)
	}
	if b.NetDevice != nil {
		parts = append(parts, "NetworkManager "+b.NetDevice.State)
	}
	return strings.Join(parts, " ")
}

// StatusLines renders a snapshot as text lines
func StatusLines(s status.Snapshot) []string {
	ret := []string{
		"Manufacturer: " + s.Manufacturer,
		"Model: " + s.Model,
		"State: " + s.State,
	}

	if !s.StateCode.After(mm.ModemStateInitializing) {
		return ret
	}

	ret = append(ret,
		"Signal quality: "+signalString(s.SignalQuality),
		"Carrier configuration: "+s.CarrierConfiguration,
	)

	if s.AccessTechnologies != "" {
		ret = append(ret, "Access technologies: "+s.AccessTechnologies)
	}

	if s.Sim != nil {
		ret = append(ret, fmt.Sprintf("SIM identifier: %v, SIM IMSI: %v",
			s.Sim.SimIdentifier, s.Sim.Imsi))
		if s.Sim.OperatorName != "" {
			ret = append(ret, "Operator: "+s.Sim.OperatorName)
		}
	} else {
		ret = append(ret, "SIM: none")
	}

	for _, b := range s.Bearers {
		ret = append(ret, bearerString(b))
	}

	return ret
}
