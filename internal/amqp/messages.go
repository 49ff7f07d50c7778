package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities and operations a sync message can carry. The message itself is
// lightweight: the worker re-reads the current row from the local store, so
// a stale payload can never overwrite fresher data.
const (
	EntityTransaction = "transaction"
	EntityGoal        = "goal"
	EntityProfile     = "profile"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// SyncMessage asks the mirror worker to replay one local change.
type SyncMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncMessage(entity, op, id string) *SyncMessage {
	return &SyncMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages whose entity or operation is not one this
// worker knows how to replay.
func (m *SyncMessage) Validate() error {
	switch m.Entity {
	case EntityTransaction, EntityGoal, EntityProfile:
	default:
		return fmt.Errorf("unknown entity %q", m.Entity)
	}
	switch m.Op {
	case OpUpsert, OpDelete:
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	if m.Entity != EntityProfile && m.ID == "" {
		return fmt.Errorf("missing id for entity %q", m.Entity)
	}
	return nil
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
