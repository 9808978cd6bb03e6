package status

import "errors"

// NetDevice is what NetworkManager knows about the network interface of a
// bearer
type NetDevice struct {
	Path          string   `json:"path"`
	Interface     string   `json:"interface"`
	State         string   `json:"state"`
	Managed       bool     `json:"managed"`
	IPv4Addresses []string `json:"ipv4Addresses,omitempty"`
	IPv4Gateway   string   `json:"ipv4Gateway,omitempty"`
}

// NetDeviceLookup finds the NetworkManager device for a network interface
type NetDeviceLookup func(iface string) (NetDevice, error)

// ErrNetDeviceUnsupported is returned by LookupNetDevice on platforms
// without NetworkManager
var ErrNetDeviceUnsupported = errors.New("NetworkManager not supported on this platform")
