package mm

import "github.com/godbus/dbus/v5"

// BearerConfig holds the connection parameters used to create a bearer
type BearerConfig struct {
	APN      string `json:"apn" yaml:"apn"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// Properties returns the a{sv} dictionary passed to CreateBearer and
// Simple.Connect. Empty credentials are left out.
func (c BearerConfig) Properties() map[string]dbus.Variant {
	props := map[string]dbus.Variant{
		"apn": dbus.MakeVariant(c.APN),
	}
	if c.User != "" {
		props["user"] = dbus.MakeVariant(c.User)
	}
	if c.Password != "" {
		props["password"] = dbus.MakeVariant(c.Password)
	}
	return props
}

// String hides the password
func (c BearerConfig) String() string {
	pw := ""
	if c.Password != "" {
		pw = "***"
	}
	return "apn=" + c.APN + " user=" + c.User + " password=" + pw
}
