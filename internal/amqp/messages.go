package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

// MutationMessage is the wire form of one record mutation. The payload
// holds the full record for add/update and is empty for remove; the
// mirror worker replays it against its own backend.
type MutationMessage struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	RecordID   string          `json:"recordId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewMutationMessage converts a realtime event into its wire form.
func NewMutationMessage(ev remote.Event) (*MutationMessage, error) {
	msg := &MutationMessage{
		Collection: string(ev.Collection),
		Op:         string(ev.Op),
		RecordID:   ev.RecordID,
		Timestamp:  time.Now().UTC(),
	}
	if ev.Op == remote.OpRemove {
		return msg, nil
	}

	var (
		payload any
		err     error
	)
	switch ev.Collection {
	case remote.CollectionGoals:
		payload = ev.Goal
	case remote.CollectionTransactions:
		payload = ev.Transaction
	case remote.CollectionCategories:
		payload = ev.Category
	default:
		return nil, fmt.Errorf("unknown collection: %s", ev.Collection)
	}
	if payload == nil {
		return nil, fmt.Errorf("missing payload for %s/%s", ev.Collection, ev.Op)
	}
	msg.Payload, err = json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return msg, nil
}

// Event decodes the message back into a realtime event.
func (m *MutationMessage) Event() (remote.Event, error) {
	ev := remote.Event{
		Collection: remote.Collection(m.Collection),
		Op:         remote.Op(m.Op),
		RecordID:   m.RecordID,
	}
	if !ev.Collection.IsValid() {
		return remote.Event{}, fmt.Errorf("unknown collection: %s", m.Collection)
	}
	if !ev.Op.IsValid() {
		return remote.Event{}, fmt.Errorf("unknown op: %s", m.Op)
	}
	if ev.Op == remote.OpRemove {
		return ev, nil
	}
	if len(m.Payload) == 0 {
		return remote.Event{}, fmt.Errorf("missing payload for %s/%s", m.Collection, m.Op)
	}

	switch ev.Collection {
	case remote.CollectionGoals:
		var g core.Goal
		if err := json.Unmarshal(m.Payload, &g); err != nil {
			return remote.Event{}, fmt.Errorf("unmarshal goal: %w", err)
		}
		ev.Goal = &g
	case remote.CollectionTransactions:
		var t core.Transaction
		if err := json.Unmarshal(m.Payload, &t); err != nil {
			return remote.Event{}, fmt.Errorf("unmarshal transaction: %w", err)
		}
		ev.Transaction = &t
	case remote.CollectionCategories:
		var c core.Category
		if err := json.Unmarshal(m.Payload, &c); err != nil {
			return remote.Event{}, fmt.Errorf("unmarshal category: %w", err)
		}
		ev.Category = &c
	}
	return ev, nil
}

// ToJSON converts the message to JSON bytes.
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON parses a message from JSON bytes.
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
