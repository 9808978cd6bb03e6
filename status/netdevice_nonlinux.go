//go:build !linux

package status

// LookupNetDevice is not supported on this platform
func LookupNetDevice(_ string) (NetDevice, error) {
	return NetDevice{}, ErrNetDeviceUnsupported
}
