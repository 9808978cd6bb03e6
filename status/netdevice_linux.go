//go:build linux

package status

import (
	"fmt"

	nm "github.com/Wifx/gonetworkmanager/v2"
)

// LookupNetDevice asks NetworkManager about a network interface, i.e. the
// wwan0 interface of a connected bearer. It is a NetDeviceLookup.
func LookupNetDevice(iface string) (NetDevice, error) {
	nmObj, err := nm.NewNetworkManager()
	if err != nil {
		return NetDevice{}, fmt.Errorf("error getting NetworkManager: %w", err)
	}

	device, err := nmObj.GetDeviceByIpIface(iface)
	if err != nil {
		return NetDevice{}, fmt.Errorf("error getting device %v: %w", iface, err)
	}

	return ResolveNetDevice(device)
}

// ResolveNetDevice reads a NetDevice from a NetworkManager device
func ResolveNetDevice(device nm.Device) (dev NetDevice, err error) {
	dev.Path = string(device.GetPath())

	dev.Interface, err = device.GetPropertyIpInterface()
	if err != nil {
		return dev, err
	}

	state, err := device.GetPropertyState()
	if err != nil {
		return dev, err
	}
	dev.State = state.String()

	dev.Managed, err = device.GetPropertyManaged()
	if err != nil {
		return dev, err
	}

	ipv4, err := device.GetPropertyIP4Config()
	if err != nil {
		return dev, err
	}
	if ipv4 != nil {
		addrs, err := ipv4.GetPropertyAddressData()
		if err != nil {
			return dev, err
		}
		for _, addr := range addrs {
			dev.IPv4Addresses = append(dev.IPv4Addresses,
				fmt.Sprintf("%v/%v", addr.Address, addr.Prefix))
		}

		dev.IPv4Gateway, err = ipv4.GetPropertyGateway()
		if err != nil {
			return dev, err
		}
	}

	return dev, nil
}
