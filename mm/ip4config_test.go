package mm

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
)

func TestResolveIP4Config(t *testing.T) {
	c := ResolveIP4Config(map[string]dbus.Variant{
		"method":  dbus.MakeVariant(uint32(BearerIPMethodStatic)),
		"address": dbus.MakeVariant("10.64.12.7"),
		"prefix":  dbus.MakeVariant(uint32(29)),
		"gateway": dbus.MakeVariant("10.64.12.1"),
		"dns1":    dbus.MakeVariant("80.58.61.250"),
		"dns2":    dbus.MakeVariant(""),
		"dns3":    dbus.MakeVariant("80.58.61.254"),
		"mtu":     dbus.MakeVariant(uint32(1430)),
	})

	exp := IP4Config{
		Method:  BearerIPMethodStatic,
		Address: "10.64.12.7",
		Prefix:  29,
		Gateway: "10.64.12.1",
		DNS:     []string{"80.58.61.250", "80.58.61.254"},
		MTU:     1430,
	}

	if diff := cmp.Diff(exp, c); diff != "" {
		t.Error("config mismatch (-exp +got):\n", diff)
	}

	if !c.Valid() {
		t.Error("config should be valid")
	}

	if c.Netmask() != "255.255.255.248" {
		t.Error("wrong netmask: ", c.Netmask())
	}

	if c.CIDR() != "10.64.12.7/29" {
		t.Error("wrong CIDR: ", c.CIDR())
	}
}

func TestResolveIP4ConfigEmpty(t *testing.T) {
	c := ResolveIP4Config(map[string]dbus.Variant{})
	if c.Valid() {
		t.Error("empty config should not be valid")
	}
	if c.Method != BearerIPMethodUnknown {
		t.Error("expected unknown method")
	}
	if c.Netmask() != "" || c.CIDR() != "" {
		t.Error("expected empty netmask and CIDR")
	}
}

func TestBearerConfigProperties(t *testing.T) {
	p := BearerConfig{APN: "internet"}.Properties()
	if len(p) != 1 || p["apn"].Value() != "internet" {
		t.Error("unexpected properties: ", p)
	}

	c := BearerConfig{APN: "telefonica.es", User: "telefonica", Password: "telefonica"}
	p = c.Properties()
	if p["user"].Value() != "telefonica" || p["password"].Value() != "telefonica" {
		t.Error("credentials missing: ", p)
	}

	if c.String() != "apn=telefonica.es user=telefonica password=***" {
		t.Error("password not hidden: ", c.String())
	}
}
