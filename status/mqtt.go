package status

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTConfig describes the MQTT broker to publish to
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientID"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTPublisher publishes snapshots as retained messages on an MQTT topic
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

// NewMQTTPublisher connects to an MQTT broker
func NewMQTTPublisher(config MQTTConfig) (*MQTTPublisher, error) {
	topic := config.Topic
	if topic == "" {
		topic = "modem/status"
	}

	clientID := config.ClientID
	if clientID == "" {
		clientID = "modemctl-" + uuid.New().String()
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	if err := connectMQTT(client, 10*time.Second); err != nil {
		return nil, fmt.Errorf("error connecting to MQTT broker %v: %w", config.Broker, err)
	}

	return &MQTTPublisher{client: client, topic: topic}, nil
}

// connectMQTT waits for the first connection. With connect retry enabled the
// client keeps trying in the background, so it is disconnected on failure.
func connectMQTT(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("timeout after %v", timeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return err
	}
	return nil
}

// Publish a snapshot
func (p *MQTTPublisher) Publish(s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 0, true, data)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timeout publishing to %v", p.topic)
	}
	return token.Error()
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
