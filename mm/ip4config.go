package mm

import (
	"encoding/binary"
	"net"

	"github.com/godbus/dbus/v5"
)

// BearerIPMethod is how the IP configuration of a bearer is obtained
// (MMBearerIpMethod)
type BearerIPMethod uint32

// IP methods
const (
	BearerIPMethodUnknown BearerIPMethod = 0
	BearerIPMethodPPP     BearerIPMethod = 1
	BearerIPMethodStatic  BearerIPMethod = 2
	BearerIPMethodDHCP    BearerIPMethod = 3
)

func (m BearerIPMethod) String() string {
	switch m {
	case BearerIPMethodPPP:
		return "ppp"
	case BearerIPMethodStatic:
		return "static"
	case BearerIPMethodDHCP:
		return "dhcp"
	default:
		return "unknown"
	}
}

// MarshalText lets the method appear by name in JSON status messages
func (m BearerIPMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// IP4Config is the IPv4 configuration of a connected bearer
type IP4Config struct {
	Method  BearerIPMethod `json:"method"`
	Address string         `json:"address,omitempty"`
	Prefix  uint32         `json:"prefix,omitempty"`
	Gateway string         `json:"gateway,omitempty"`
	DNS     []string       `json:"dns,omitempty"`
	MTU     uint32         `json:"mtu,omitempty"`
}

// ResolveIP4Config creates an IP4Config from the Ip4Config dictionary of a
// bearer. Missing keys are left at their zero value.
func ResolveIP4Config(settings map[string]dbus.Variant) IP4Config {
	var c IP4Config

	// Note: dbus.Variant is a struct, and its zero value is valid
	if m, ok := settings["method"].Value().(uint32); ok {
		c.Method = BearerIPMethod(m)
	}
	c.Address, _ = settings["address"].Value().(string)
	if prefix, ok := settings["prefix"].Value().(uint32); ok && prefix <= 32 {
		c.Prefix = prefix
	}
	c.Gateway, _ = settings["gateway"].Value().(string)
	for _, k := range []string{"dns1", "dns2", "dns3"} {
		if dns, ok := settings[k].Value().(string); ok && dns != "" {
			c.DNS = append(c.DNS, dns)
		}
	}
	c.MTU, _ = settings["mtu"].Value().(uint32)

	return c
}

// Valid returns true if the configuration has a usable address
func (c IP4Config) Valid() bool {
	ip := net.ParseIP(c.Address)
	return ip != nil && ip.To4() != nil
}

// Netmask converts the prefix to dotted notation
func (c IP4Config) Netmask() string {
	if c.Prefix == 0 {
		return ""
	}
	var mask uint32 = 0xFFFFFFFF << (32 - c.Prefix)
	buf := []byte{0, 0, 0, 0}
	binary.BigEndian.PutUint32(buf, mask)
	return net.IP(buf).String()
}

// CIDR returns address/prefix, or the bare address without a prefix
func (c IP4Config) CIDR() string {
	if c.Prefix == 0 || !c.Valid() {
		return c.Address
	}
	return (&net.IPNet{
		IP:   net.ParseIP(c.Address).To4(),
		Mask: net.CIDRMask(int(c.Prefix), 32),
	}).String()
}
