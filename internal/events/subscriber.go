package events

import (
	"encoding/json"
	"strings"

	"github.com/alfredjeanlab/flock/internal/model"
)

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}

// Message is one event received from the bus.
type Message struct {
	Topic string
	Data  []byte
}

// Collection reports the collection an item event touched. Non-item topics
// and undecodable payloads report false.
func (m Message) Collection() (model.Collection, bool) {
	if !strings.HasPrefix(m.Topic, "flock.item.") {
		return "", false
	}
	var payload struct {
		Item *struct {
			Collection model.Collection `json:"collection"`
		} `json:"item"`
		Collection model.Collection `json:"collection"`
	}
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		return "", false
	}
	if payload.Item != nil && payload.Item.Collection != "" {
		return payload.Item.Collection, true
	}
	return payload.Collection, payload.Collection != ""
}
