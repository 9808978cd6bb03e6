package daemon

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/simpleiot/modemctl/lifecycle"
	"github.com/simpleiot/modemctl/mm"
	"github.com/simpleiot/modemctl/status"
)

// Options used to run the modem daemon
type Options struct {
	ConfigFile string
	// Modem is the object path of the modem to drive. Empty selects the
	// first modem.
	Modem    string
	PIN      string
	Bearer   mm.BearerConfig
	Interval time.Duration
	NATS     status.NATSConfig
	MQTT     status.MQTTConfig
	// NetworkManager enables looking up bearer interfaces in NetworkManager
	NetworkManager bool
}

// fileConfig is the YAML config file format
type fileConfig struct {
	Modem          string            `yaml:"modem"`
	PIN            string            `yaml:"pin"`
	Bearer         mm.BearerConfig   `yaml:"bearer"`
	Interval       string            `yaml:"interval"`
	NATS           status.NATSConfig `yaml:"nats"`
	MQTT           status.MQTTConfig `yaml:"mqtt"`
	NetworkManager bool              `yaml:"networkManager"`
}

const defaultInterval = 10 * time.Second

// Lifecycle returns the lifecycle driver configuration
func (o Options) Lifecycle() lifecycle.Config {
	return lifecycle.Config{PIN: o.PIN, Bearer: o.Bearer}
}

// Status returns the options used when reading status snapshots
func (o Options) Status() status.Options {
	var ret status.Options
	if o.NetworkManager {
		ret.LookupNetDevice = status.LookupNetDevice
	}
	return ret
}

// LoadConfig applies a YAML config file to o
func LoadConfig(data []byte, o *Options) error {
	var c fileConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			return fmt.Errorf("error parsing config interval: %w", err)
		}
		o.Interval = d
	}

	merge(&o.Modem, c.Modem)
	merge(&o.PIN, c.PIN)
	merge(&o.Bearer.APN, c.Bearer.APN)
	merge(&o.Bearer.User, c.Bearer.User)
	merge(&o.Bearer.Password, c.Bearer.Password)
	merge(&o.NATS.Server, c.NATS.Server)
	merge(&o.NATS.Subject, c.NATS.Subject)
	merge(&o.NATS.Token, c.NATS.Token)
	merge(&o.MQTT.Broker, c.MQTT.Broker)
	merge(&o.MQTT.Topic, c.MQTT.Topic)
	merge(&o.MQTT.ClientID, c.MQTT.ClientID)
	merge(&o.MQTT.Username, c.MQTT.Username)
	merge(&o.MQTT.Password, c.MQTT.Password)
	o.NetworkManager = o.NetworkManager || c.NetworkManager

	return nil
}

// merge sets *dst to v unless v is empty
func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Args parses modemctl command line options. Settings are applied in this
// order, later ones win: config file, environment, command line.
func Args(args []string, flags *flag.FlagSet) (Options, error) {
	return parseArgs(args, flags, os.Getenv)
}

func parseArgs(args []string, flags *flag.FlagSet, getenv func(string) string) (Options, error) {
	if flags == nil {
		flags = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	}

	flagConfig := flags.String("config", "", "YAML config file")
	flagModem := flags.String("modem", "", "modem object path (default first modem)")
	flagPIN := flags.String("pin", "", "SIM PIN")
	flagAPN := flags.String("apn", "", "bearer APN")
	flagUser := flags.String("user", "", "bearer user")
	flagPassword := flags.String("password", "", "bearer password")
	flagInterval := flags.Duration("interval", defaultInterval, "poll interval")
	flagNatsServer := flags.String("natsServer", "", "publish status to this NATS server")
	flagNatsSubject := flags.String("natsSubject", "modem.status", "NATS status subject")
	flagToken := flags.String("token", "", "NATS auth token")
	flagMqttBroker := flags.String("mqttBroker", "", "publish status to this MQTT broker")
	flagMqttTopic := flags.String("mqttTopic", "modem/status", "MQTT status topic")
	flagNM := flags.Bool("networkManager", false, "look up bearer interfaces in NetworkManager")

	if err := flags.Parse(args); err != nil {
		return Options{}, err
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	o := Options{
		ConfigFile: *flagConfig,
		Interval:   defaultInterval,
		NATS:       status.NATSConfig{Subject: *flagNatsSubject},
		MQTT:       status.MQTTConfig{Topic: *flagMqttTopic},
	}

	if o.ConfigFile == "" {
		o.ConfigFile = getenv("MODEMCTL_CONFIG")
	}

	if o.ConfigFile != "" {
		data, err := os.ReadFile(o.ConfigFile)
		if err != nil {
			return o, fmt.Errorf("error reading config file: %w", err)
		}
		if err := LoadConfig(data, &o); err != nil {
			return o, err
		}
	}

	// environment
	if v := getenv("MODEMCTL_PIN"); v != "" {
		o.PIN = v
	}
	if v := getenv("MODEMCTL_APN"); v != "" {
		o.Bearer.APN = v
	}
	if v := getenv("MODEMCTL_NATS_SERVER"); v != "" {
		o.NATS.Server = v
	}
	if v := getenv("MODEMCTL_MQTT_BROKER"); v != "" {
		o.MQTT.Broker = v
	}

	// only flags given on the command line override the above
	if set["modem"] {
		o.Modem = *flagModem
	}
	if set["pin"] {
		o.PIN = *flagPIN
	}
	if set["apn"] {
		o.Bearer.APN = *flagAPN
	}
	if set["user"] {
		o.Bearer.User = *flagUser
	}
	if set["password"] {
		o.Bearer.Password = *flagPassword
	}
	if set["interval"] {
		o.Interval = *flagInterval
	}
	if set["natsServer"] {
		o.NATS.Server = *flagNatsServer
	}
	if set["natsSubject"] {
		o.NATS.Subject = *flagNatsSubject
	}
	if set["token"] {
		o.NATS.Token = *flagToken
	}
	if set["mqttBroker"] {
		o.MQTT.Broker = *flagMqttBroker
	}
	if set["mqttTopic"] {
		o.MQTT.Topic = *flagMqttTopic
	}
	if set["networkManager"] {
		o.NetworkManager = *flagNM
	}

	if o.Interval <= 0 {
		return o, fmt.Errorf("invalid interval: %v", o.Interval)
	}

	return o, nil
}
