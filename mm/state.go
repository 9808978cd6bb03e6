package mm

import (
	"fmt"
	"strings"
)

// ModemState is the initialization state of a modem as reported by the
// Modem.State property. The numeric values are defined by ModemManager
// (MMModemState) and must not be renumbered.
type ModemState int32

// Modem states
const (
	ModemStateFailed        ModemState = -1 // The modem is unusable.
	ModemStateUnknown       ModemState = 0  // State unknown or not reportable.
	ModemStateInitializing  ModemState = 1  // The modem is currently being initialized.
	ModemStateLocked        ModemState = 2  // The modem needs to be unlocked.
	ModemStateDisabled      ModemState = 3  // The modem is not enabled and is powered down.
	ModemStateDisabling     ModemState = 4  // The modem is transitioning to disabled.
	ModemStateEnabling      ModemState = 5  // The modem is transitioning to enabled.
	ModemStateEnabled       ModemState = 6  // Powered on but not registered with a network.
	ModemStateSearching     ModemState = 7  // Searching for a network provider.
	ModemStateRegistered    ModemState = 8  // Registered, data connections may be available.
	ModemStateDisconnecting ModemState = 9  // Deactivating the last active packet data bearer.
	ModemStateConnecting    ModemState = 10 // Activating the first packet data bearer.
	ModemStateConnected     ModemState = 11 // One or more packet data bearers is connected.
)

var modemStateNames = map[ModemState]string{
	ModemStateFailed:        "Failed",
	ModemStateUnknown:       "Unknown",
	ModemStateInitializing:  "Initializing",
	ModemStateLocked:        "Locked",
	ModemStateDisabled:      "Disabled",
	ModemStateDisabling:     "Disabling",
	ModemStateEnabling:      "Enabling",
	ModemStateEnabled:       "Enabled",
	ModemStateSearching:     "Searching",
	ModemStateRegistered:    "Registered",
	ModemStateDisconnecting: "Disconnecting",
	ModemStateConnecting:    "Connecting",
	ModemStateConnected:     "Connected",
}

// Known returns true if the state is part of the published vocabulary.
// Newer ModemManager releases may report values this package does not know.
func (s ModemState) Known() bool {
	_, ok := modemStateNames[s]
	return ok
}

// After returns true if s is further along the lifecycle than o
func (s ModemState) After(o ModemState) bool {
	return s > o
}

func (s ModemState) String() string {
	if n, ok := modemStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Unrecognized(%d)", int32(s))
}

// ParseModemState converts a state name (case insensitive) back to a
// ModemState.
func ParseModemState(name string) (ModemState, error) {
	for s, n := range modemStateNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return ModemStateUnknown, fmt.Errorf("unknown modem state %q", name)
}

// AccessTechnology is a bit field of the radio access technologies in use
// (MMModemAccessTechnology).
type AccessTechnology uint32

// Access technologies
const (
	AccessTechnologyUnknown    AccessTechnology = 0
	AccessTechnologyPOTS       AccessTechnology = 1 << 0
	AccessTechnologyGSM        AccessTechnology = 1 << 1
	AccessTechnologyGSMCompact AccessTechnology = 1 << 2
	AccessTechnologyGPRS       AccessTechnology = 1 << 3
	AccessTechnologyEDGE       AccessTechnology = 1 << 4
	AccessTechnologyUMTS       AccessTechnology = 1 << 5
	AccessTechnologyHSDPA      AccessTechnology = 1 << 6
	AccessTechnologyHSUPA      AccessTechnology = 1 << 7
	AccessTechnologyHSPA       AccessTechnology = 1 << 8
	AccessTechnologyHSPAPlus   AccessTechnology = 1 << 9
	AccessTechnology1xRTT      AccessTechnology = 1 << 10
	AccessTechnologyEVDO0      AccessTechnology = 1 << 11
	AccessTechnologyEVDOA      AccessTechnology = 1 << 12
	AccessTechnologyEVDOB      AccessTechnology = 1 << 13
	AccessTechnologyLTE        AccessTechnology = 1 << 14
	AccessTechnology5GNR       AccessTechnology = 1 << 15
	AccessTechnologyLTECatM    AccessTechnology = 1 << 16
	AccessTechnologyLTENBIoT   AccessTechnology = 1 << 17
	AccessTechnologyAny        AccessTechnology = 0xFFFFFFFF
)

var accessTechnologyNames = []struct {
	flag AccessTechnology
	name string
}{
	{AccessTechnologyPOTS, "pots"},
	{AccessTechnologyGSM, "gsm"},
	{AccessTechnologyGSMCompact, "gsm-compact"},
	{AccessTechnologyGPRS, "gprs"},
	{AccessTechnologyEDGE, "edge"},
	{AccessTechnologyUMTS, "umts"},
	{AccessTechnologyHSDPA, "hsdpa"},
	{AccessTechnologyHSUPA, "hsupa"},
	{AccessTechnologyHSPA, "hspa"},
	{AccessTechnologyHSPAPlus, "hspa-plus"},
	{AccessTechnology1xRTT, "1xrtt"},
	{AccessTechnologyEVDO0, "evdo0"},
	{AccessTechnologyEVDOA, "evdoa"},
	{AccessTechnologyEVDOB, "evdob"},
	{AccessTechnologyLTE, "lte"},
	{AccessTechnology5GNR, "5gnr"},
	{AccessTechnologyLTECatM, "lte-cat-m"},
	{AccessTechnologyLTENBIoT, "lte-nb-iot"},
}

func (a AccessTechnology) String() string {
	switch a {
	case AccessTechnologyUnknown:
		return "unknown"
	case AccessTechnologyAny:
		return "any"
	}

	var names []string
	rest := a
	for _, n := range accessTechnologyNames {
		if a&n.flag != 0 {
			names = append(names, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}
