package status

import (
	"encoding/json"
	"fmt"
)

// Publisher sends snapshots somewhere
type Publisher interface {
	Publish(Snapshot) error
	Close()
}

// Encode returns the JSON message publishers send
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("error encoding status: %w", err)
	}
	return data, nil
}

// Publishers sends a snapshot to several publishers
type Publishers []Publisher

// Publish to all publishers. All are tried, the first error is returned.
func (ps Publishers) Publish(s Snapshot) error {
	var first error
	for _, p := range ps {
		if err := p.Publish(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close all publishers
func (ps Publishers) Close() {
	for _, p := range ps {
		p.Close()
	}
}
