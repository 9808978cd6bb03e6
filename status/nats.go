package status

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes snapshots on a NATS subject
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NATSConfig describes the NATS server to publish to
type NATSConfig struct {
	Server  string `yaml:"server"`
	Subject string `yaml:"subject"`
	Token   string `yaml:"token"`
}

// NewNATSPublisher connects to a NATS server. The connection reconnects
// forever, so a server that goes away later does not stop the publisher.
func NewNATSPublisher(config NATSConfig) (*NATSPublisher, error) {
	subject := config.Subject
	if subject == "" {
		subject = "modem.status"
	}

	opts := []nats.Option{
		nats.Name("modemctl"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(5 * time.Second),
	}
	if config.Token != "" {
		opts = append(opts, nats.Token(config.Token))
	}

	nc, err := nats.Connect(config.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS server %v: %w", config.Server, err)
	}

	return NewNATSPublisherConn(nc, subject), nil
}

// NewNATSPublisherConn publishes on an existing connection
func NewNATSPublisherConn(nc *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{nc: nc, subject: subject}
}

// Publish a snapshot
func (p *NATSPublisher) Publish(s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close flushes and closes the connection
func (p *NATSPublisher) Close() {
	_ = p.nc.Flush()
	p.nc.Close()
}
